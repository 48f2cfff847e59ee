package problem

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/flag3systems/go3flag/go3flag"
)

/***

The SDP is written in sparse SDPA format (dat-s).  With G graphs and T types
there are G+1 variables (one slack per graph plus the bound) and 2T+3 blocks:

	block 1            1x1, ties the slacks to the bound
	blocks 2j+2, 2j+3  invariant and anti-invariant blocks of type j
	block 2T+2         diagonal, size G (slack positivity)
	block 2T+3         diagonal, size 1 (the objective densities)

A type whose basis has no anti-invariant part gets a 1x1 dummy anti block so
the block count stays uniform; solution entries landing in a dummy block are
ignored on the way back in.

***/

// blockSizes returns the invariant and anti-invariant block size per type.
func (p *Problem) blockSizes() (inv, anti []int) {
	inv = make([]int, len(p.types))
	anti = make([]int, len(p.types))
	for ti, B := range p.bases {
		if div := B.RowDivisions(); len(div) > 0 {
			inv[ti] = div[0]
			anti[ti] = B.Rows() - div[0]
		} else {
			inv[ti] = B.Rows()
			anti[ti] = 1 // dummy
		}
	}
	return
}

// WriteSDPInput emits the assembled problem in sparse SDPA format.  Rational
// values are printed as 64-digit decimals; only nonzero lower-triangle
// entries of each product matrix are written.  Requires
// CalculateProductDensities.
func (p *Problem) WriteSDPInput(w io.Writer) error {
	if p.products == nil {
		return errors.New("WriteSDPInput requires product densities")
	}

	numGraphs := len(p.graphs)
	numTypes := len(p.types)
	inv, anti := p.blockSizes()

	bw := bufio.NewWriter(w)

	bw.WriteString(strconv.Itoa(numGraphs+1) + "\n")
	bw.WriteString(strconv.Itoa(2*numTypes+3) + "\n")
	bw.WriteString("1 ")
	for ti := 0; ti < numTypes; ti++ {
		bw.WriteString(strconv.Itoa(inv[ti]) + " ")
		bw.WriteString(strconv.Itoa(anti[ti]) + " ")
	}
	bw.WriteString("-" + strconv.Itoa(numGraphs) + " -1\n")

	bw.WriteString(strings.Repeat("0.0 ", numGraphs) + "1.0\n")
	bw.WriteString("0 1 1 1 -1.0\n")

	for i := 0; i < numGraphs; i++ {
		bw.WriteString(strconv.Itoa(i+1) + " 1 1 1 -1.0\n")
		gs := strconv.Itoa(i + 1)
		bw.WriteString(gs + " " + strconv.Itoa(2*numTypes+2) + " " + gs + " " + gs + " 1.0\n")
	}

	for i := 0; i < numGraphs; i++ {
		if d := p.densities[i]; d.Sign() != 0 {
			bw.WriteString(strconv.Itoa(i+1) + " " + strconv.Itoa(2*numTypes+3) + " 1 1 " + d.FloatString(64) + "\n")
		}
	}
	bw.WriteString(strconv.Itoa(numGraphs+1) + " " + strconv.Itoa(2*numTypes+3) + " 1 1 1.0\n")

	for i := 0; i < numGraphs; i++ {
		for j := 0; j < numTypes; j++ {
			D := p.products[i][j]
			for row := 0; row < D.Rows(); row++ {
				for col := 0; col <= row; col++ {
					v := D.At(row, col)
					if v.Sign() == 0 {
						continue
					}
					r, c, block := row, col, 2*j+2
					if r >= inv[j] {
						block = 2*j + 3
						r -= inv[j]
						c -= inv[j]
					}
					bw.WriteString(strconv.Itoa(i+1) + " " + strconv.Itoa(block) + " " +
						strconv.Itoa(r+1) + " " + strconv.Itoa(c+1) + " " + v.FloatString(64) + "\n")
				}
			}
		}
	}

	return errors.Wrap(bw.Flush(), "write sdp input")
}

// CSDPSolver runs the csdp binary as a subprocess.
type CSDPSolver struct {
	Cmd     string        // path to the csdp binary; "csdp" when empty
	Timeout time.Duration // 0 means no limit beyond ctx
}

// Run solves the SDP in inputPath, writing the solver's solution file to
// outputPath, and returns the bound (the negated primal objective value
// scraped from the solver's stdout).  ErrSolverFailed is returned when the
// solver never reports an objective.
func (solver *CSDPSolver) Run(ctx context.Context, inputPath, outputPath string) (float64, error) {
	cmdPath := solver.Cmd
	if cmdPath == "" {
		cmdPath = "csdp"
	}
	if solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, solver.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cmdPath, inputPath, outputPath)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, errors.Wrap(err, "csdp stdout")
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return 0, errors.Wrapf(err, "starting %s", cmdPath)
	}

	objVal := 0.0
	objSet := false

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		klog.V(1).Infof("csdp: %s", line)
		if !strings.Contains(line, "Primal objective value:") {
			continue
		}
		fields := strings.Fields(line)
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}
		objVal = -v
		objSet = true
	}

	waitErr := cmd.Wait()
	if !objSet {
		if waitErr != nil {
			return 0, errors.Wrap(go3flag.ErrSolverFailed, waitErr.Error())
		}
		return 0, errors.Wrap(go3flag.ErrSolverFailed, "no objective value reported")
	}

	klog.Infof("Objective value is %g.", objVal)
	return objVal, nil
}

// ReadSolution parses a CSDP solution file into per-type matrices.  Only the
// dual matrix entries (first token "2") in the type blocks are kept;
// anti-invariant entries are shifted past the invariant block, and entries in
// a dummy anti block are dropped.
func (p *Problem) ReadSolution(r io.Reader) error {
	numTypes := len(p.types)
	inv, _ := p.blockSizes()

	p.qmats = make([][][]float64, numTypes)
	for ti, B := range p.bases {
		n := B.Rows()
		p.qmats[ti] = make([][]float64, n)
		for i := range p.qmats[ti] {
			p.qmats[ti][i] = make([]float64, n)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] != "2" {
			continue
		}
		bi, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrap(go3flag.ErrUnmarshal, "bad solution line")
		}
		ti := bi - 2
		if ti < 0 || ti >= 2*numTypes {
			continue
		}
		j, err1 := strconv.Atoi(fields[2])
		k, err2 := strconv.Atoi(fields[3])
		v, err3 := strconv.ParseFloat(fields[4], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return errors.Wrap(go3flag.ErrUnmarshal, "bad solution line")
		}
		j--
		k--
		if ti%2 == 1 {
			ti = (ti - 1) / 2
			j += inv[ti]
			k += inv[ti]
			if j >= p.bases[ti].Rows() || k >= p.bases[ti].Rows() {
				continue // dummy anti block
			}
		} else {
			ti /= 2
		}
		p.qmats[ti][j][k] = v
		p.qmats[ti][k][j] = v
	}
	return errors.Wrap(scanner.Err(), "read solution")
}

// SolveSDP writes the SDP into workDir, runs the solver, and parses the
// solution back into the problem.  Returns the proven upper bound.
func (p *Problem) SolveSDP(ctx context.Context, solver *CSDPSolver, workDir string) (float64, error) {
	inputPath := filepath.Join(workDir, "sdp.dat-s")
	outputPath := filepath.Join(workDir, "sdp.out")

	in, err := os.Create(inputPath)
	if err != nil {
		return 0, errors.Wrap(err, "create sdp input")
	}
	if err := p.WriteSDPInput(in); err != nil {
		in.Close()
		return 0, err
	}
	if err := in.Close(); err != nil {
		return 0, errors.Wrap(err, "close sdp input")
	}

	bound, err := solver.Run(ctx, inputPath, outputPath)
	if err != nil {
		return 0, err
	}

	out, err := os.Open(outputPath)
	if err != nil {
		return 0, errors.Wrap(err, "open sdp solution")
	}
	defer out.Close()

	if err := p.ReadSolution(out); err != nil {
		return 0, err
	}
	return bound, nil
}
