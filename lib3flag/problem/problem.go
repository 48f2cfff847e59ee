// Package problem assembles flag algebra density problems into semidefinite
// programs: graph and flag enumeration, basis management, product density
// matrices, SDP emission, and the solver round trip.
package problem

import (
	"context"
	"math/big"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"

	"github.com/flag3systems/go3flag/go3flag"
	"github.com/flag3systems/go3flag/lib3flag"
	"github.com/flag3systems/go3flag/lib3flag/ratmat"
)

// Problem is a Turán-type density problem on 3-graphs of a fixed order n:
// maximize the density of a target graph subject to the constraints, bounded
// from above via sums of squares of flag sums.
//
// All combinatorial data stays in exact rationals; floats appear only in the
// solver round trip.
type Problem struct {
	n    int
	cons lib3flag.Constraints

	densityGraph *lib3flag.Graph
	graphs       []*lib3flag.Graph
	densities    []*big.Rat

	types []*lib3flag.Graph
	flags [][]*lib3flag.Graph
	bases []*ratmat.Matrix

	construction Construction
	zeroEV       [][]*ratmat.Matrix // per type, per basis row block
	sharps       []int

	products [][]*ratmat.Matrix // [graph][type], in the current bases
	qmats    [][][]float64      // per type, from the solver
}

// New enumerates the admissible graphs, types, and flags for order n under
// the given constraints.  Types are the admissible graphs of every order s
// with s < n-1 and s congruent to n mod 2; each type's flags have order
// m = (n+s)/2 so that two flags on a shared type span at most n vertices.
//
// The objective density defaults to the edge density; see SetDensityGraph.
func New(n int, cons lib3flag.Constraints) (*Problem, error) {
	if n < 1 || n > go3flag.MaxNotationOrder {
		return nil, errors.Wrapf(go3flag.ErrBadVtxID, "problem order %d out of range [1,%d]", n, go3flag.MaxNotationOrder)
	}

	p := &Problem{n: n, cons: cons}

	klog.Infof("Generating graphs...")
	p.graphs = lib3flag.GenerateGraphs(n, cons)
	klog.Infof("Generated %d graphs.", len(p.graphs))

	p.densities = make([]*big.Rat, len(p.graphs))
	for i, g := range p.graphs {
		p.densities[i] = g.EdgeDensity()
	}

	klog.Infof("Generating types and flags...")
	for s := n % 2; s < n-1; s += 2 {
		theseTypes := lib3flag.GenerateGraphs(s, cons)
		m := (n + s) / 2

		flagCounts := make([]int, 0, len(theseTypes))
		for _, tg := range theseTypes {
			fl := lib3flag.GenerateFlags(m, tg, cons)
			p.flags = append(p.flags, fl)
			flagCounts = append(flagCounts, len(fl))
		}
		p.types = append(p.types, theseTypes...)

		klog.Infof("Generated %d types of order %d, with %v flags of order %d.",
			len(theseTypes), s, flagCounts, m)
	}

	p.bases = make([]*ratmat.Matrix, len(p.types))
	for ti := range p.types {
		p.bases[ti] = ratmat.Identity(len(p.flags[ti]))
	}
	return p, nil
}

func (p *Problem) N() int                      { return p.n }
func (p *Problem) Graphs() []*lib3flag.Graph   { return p.graphs }
func (p *Problem) Types() []*lib3flag.Graph    { return p.types }
func (p *Problem) Flags(ti int) []*lib3flag.Graph { return p.flags[ti] }
func (p *Problem) Basis(ti int) *ratmat.Matrix { return p.bases[ti] }

// Densities returns the objective density of each admissible graph.
func (p *Problem) Densities() []*big.Rat { return p.densities }

// SharpGraphs returns the indices of the admissible graphs the construction
// realizes with positive density.
func (p *Problem) SharpGraphs() []int { return p.sharps }

// QMatrix returns the solver's matrix for type ti (valid after ReadSolution).
func (p *Problem) QMatrix(ti int) [][]float64 { return p.qmats[ti] }

// SetDensityGraph switches the objective from the edge density to the induced
// density of dg (which must be in canonical form).
func (p *Problem) SetDensityGraph(dg *lib3flag.Graph) {
	p.densityGraph = dg
	for i, g := range p.graphs {
		p.densities[i] = g.SubgraphDensity(dg)
	}
}

// UseInvariantBases replaces each type's standard flag basis with its
// invariant/anti-invariant basis, block-diagonalizing the SDP.
func (p *Problem) UseInvariantBases(orthogonalize bool) {
	for ti := range p.types {
		p.bases[ti] = lib3flag.FlagBasis(p.types[ti], p.flags[ti], orthogonalize)
	}
	p.products = nil
}

// SetConstruction registers an extremal candidate: its induced subgraphs
// become the expected sharp graphs, and its zero eigenvectors are computed per
// type and basis block for the basis reduction in ReduceBases.
func (p *Problem) SetConstruction(c Construction) {
	p.construction = c

	sharpIndex := make(map[string]int, len(p.graphs))
	for i, g := range p.graphs {
		sharpIndex[string(g.Key())] = i
	}
	p.sharps = p.sharps[:0]
	for _, sg := range c.InducedSubgraphs(p.n) {
		if gi, ok := sharpIndex[string(sg.Key())]; ok {
			p.sharps = append(p.sharps, gi)
		}
	}
	sort.Ints(p.sharps)

	p.zeroEV = make([][]*ratmat.Matrix, len(p.types))
	for ti := range p.types {
		for _, block := range p.bases[ti].RowBlocks() {
			z := c.ZeroEigenvectors(p.types[ti], p.flags[ti], block)
			p.zeroEV[ti] = append(p.zeroEV[ti], z)
		}
	}
}

// ReduceBases shrinks each basis block by its zero-eigenvector space: the
// rows annihilated by the construction are rotated out, so the SDP blocks
// lose one dimension per zero eigenvector.  Requires SetConstruction.
func (p *Problem) ReduceBases() error {
	if p.zeroEV == nil {
		return errors.New("ReduceBases requires a construction")
	}

	for ti := range p.types {
		blocks := p.bases[ti].RowBlocks()
		newBlocks := make([]*ratmat.Matrix, len(blocks))
		for i, block := range blocks {
			z := p.zeroEV[ti][i]
			nzev := z.Rows()
			if nzev == 0 {
				newBlocks[i] = ratmat.Identity(block.Rows())
				continue
			}
			// The right kernel of z is the orthogonal complement of its row
			// space, so stacking the two gives a full basis.  After exact
			// Gram-Schmidt the first nzev rows span the zero-eigenvector
			// space and are dropped.
			bb := z.Stack(z.RightKernel()).GramSchmidtRows()
			newBlocks[i] = bb.RowSlice(nzev, bb.Rows())
		}
		p.bases[ti] = ratmat.BlockDiag(newBlocks...).Mul(p.bases[ti])
	}
	p.products = nil
	return nil
}

// CalculateProductDensities computes, for every admissible graph and type,
// the flag-pair density matrix conjugated into the current basis.  Graphs are
// processed in parallel.  A non-nil catalog caches the raw (pre-basis)
// density matrices across runs.
func (p *Problem) CalculateProductDensities(ctx context.Context, cat lib3flag.Catalog) error {
	klog.Infof("Calculating product densities...")

	for ti, tg := range p.types {
		s := tg.Order()
		klog.Infof("Doing type %d (order %d; flags %d).", ti+1, s, (p.n+s)/2)
	}

	p.products = make([][]*ratmat.Matrix, len(p.graphs))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.NumCPU())

	for gi := range p.graphs {
		gi := gi
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g := p.graphs[gi]
			p.products[gi] = make([]*ratmat.Matrix, len(p.types))

			for ti, tg := range p.types {
				m := (p.n + tg.Order()) / 2

				D, err := p.rawDensity(cat, gi, ti, g, tg, m)
				if err != nil {
					return err
				}

				B := p.bases[ti]
				ND := B.Mul(D).Mul(B.Transpose())
				ND.SubdivideRows(B.RowDivisions()...)
				p.products[gi][ti] = ND
			}
			return nil
		})
	}
	return grp.Wait()
}

func (p *Problem) rawDensity(cat lib3flag.Catalog, gi, ti int, g, tg *lib3flag.Graph, m int) (*ratmat.Matrix, error) {
	if cat != nil {
		buf, found, err := cat.LoadDensity(gi, ti)
		if err != nil {
			return nil, err
		}
		if found {
			cs, err := ratmat.UnmarshalCompact(buf)
			if err != nil {
				return nil, err
			}
			return ratmat.FromCompact(cs)
		}
	}

	D := lib3flag.FlagProductDensities(g, tg, p.flags[ti], m)

	if cat != nil && !cat.IsReadOnly() {
		buf, err := ratmat.ToCompact(D).Marshal()
		if err != nil {
			return nil, err
		}
		if err := cat.StoreDensity(gi, ti, buf); err != nil {
			return nil, err
		}
	}
	return D, nil
}

// FindSharps evaluates the bound certificate numerically: for each graph the
// objective density plus the traced products against the solver's matrices.
// Graphs within tolerance of the maximum are sharp.  Requires products and a
// parsed solution.
func (p *Problem) FindSharps(tolerance float64) ([]int, float64) {
	fbounds := make([]float64, len(p.graphs))
	for gi := range p.graphs {
		fbounds[gi] = ratToFloat(p.densities[gi])
	}

	for ti := range p.types {
		Q := p.qmats[ti]
		for gi := range p.graphs {
			D := p.products[gi][ti]
			for j := 0; j < D.Rows(); j++ {
				for k := j; k < D.Rows(); k++ {
					d := D.At(j, k)
					if d.Sign() == 0 {
						continue
					}
					value := Q[j][k]
					if j != k {
						value *= 2
					}
					fbounds[gi] += ratToFloat(d) * value
				}
			}
		}
	}

	bound := fbounds[0]
	for _, fb := range fbounds[1:] {
		if fb > bound {
			bound = fb
		}
	}

	var sharpIndices []int
	for gi, fb := range fbounds {
		if bound-fb < tolerance && fb-bound < tolerance {
			sharpIndices = append(sharpIndices, gi)
		}
	}

	klog.Infof("The following %d graphs are sharp:", len(sharpIndices))
	for _, gi := range sharpIndices {
		klog.Infof("%g : graph %d (%s)", fbounds[gi], gi+1, p.graphs[gi])
	}
	return sharpIndices, bound
}
