package main

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flag3systems/go3flag/go3flag"
	"github.com/flag3systems/go3flag/lib3flag"
	"github.com/flag3systems/go3flag/lib3flag/catalog"
	"github.com/flag3systems/go3flag/lib3flag/problem"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "go3flag",
	Short:         "flag algebra engine for Turán-type problems on 3-graphs",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "enumerate admissible graphs or flags of a given order",
	RunE:  runGen,
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "assemble the SDP, run csdp, and report the bound and sharp graphs",
	RunE:  runSolve,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./go3flag.yaml)")

	genCmd.Flags().IntP("order", "n", 0, "number of vertices to enumerate")
	genCmd.Flags().String("type", "", "type graph; when set, flags on this type are enumerated")
	genCmd.Flags().Bool("degrees", false, "print degree sequences")
	genCmd.Flags().Bool("density", false, "print edge densities")
	genCmd.Flags().String("db", "", "catalog path; generated graphs are added to it")

	solveCmd.Flags().String("workdir", ".", "directory for the sdp.dat-s / sdp.out files")

	rootCmd.AddCommand(genCmd, solveCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("go3flag")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("GO3FLAG")
	viper.AutomaticEnv()

	viper.SetDefault("tolerance", 0.00001)

	if err := viper.ReadInConfig(); err == nil {
		klog.V(1).Infof("using config file %s", viper.ConfigFileUsed())
	}
}

// loadConstraints reads the forbidden configurations from the config.
// Forbidden graphs are accepted in either notation and canonicalized.
func loadConstraints() (lib3flag.Constraints, error) {
	cons := lib3flag.Constraints{}

	fen := viper.GetStringMapString("forbidden_edge_numbers")
	if len(fen) > 0 {
		cons.EdgeNumbers = make(map[int]int, len(fen))
		for ks, vs := range fen {
			k, err1 := strconv.Atoi(ks)
			v, err2 := strconv.Atoi(vs)
			if err1 != nil || err2 != nil {
				return cons, errors.Wrapf(go3flag.ErrBadGraphNotation, "bad forbidden_edge_numbers entry %q: %q", ks, vs)
			}
			cons.EdgeNumbers[k] = v
		}
	}

	parseList := func(key string) ([]*lib3flag.Graph, error) {
		var out []*lib3flag.Graph
		for _, s := range viper.GetStringSlice(key) {
			g, err := lib3flag.ParseAny(s)
			if err != nil {
				return nil, errors.Wrapf(err, "%s entry %q", key, s)
			}
			out = append(out, g.MinimalIsomorph())
		}
		return out, nil
	}

	var err error
	if cons.Graphs, err = parseList("forbidden_graphs"); err != nil {
		return cons, err
	}
	cons.InducedGraphs, err = parseList("forbidden_induced_graphs")
	return cons, err
}

func runGen(cmd *cobra.Command, args []string) error {
	cons, err := loadConstraints()
	if err != nil {
		return err
	}

	order, _ := cmd.Flags().GetInt("order")
	typeExpr, _ := cmd.Flags().GetString("type")
	degrees, _ := cmd.Flags().GetBool("degrees")
	density, _ := cmd.Flags().GetBool("density")
	dbPath, _ := cmd.Flags().GetString("db")

	var tg *lib3flag.Graph
	if typeExpr != "" {
		if tg, err = lib3flag.ParseAny(typeExpr); err != nil {
			return err
		}
		tg = tg.MinimalIsomorph()
	}

	graphs := lib3flag.GenerateFlags(order, tg, cons)
	klog.Infof("Generated %d graphs of order %d.", len(graphs), order)

	stream := lib3flag.StreamGraphs(graphs)
	if dbPath != "" {
		cat, err := catalog.Open(go3flag.CatalogOpts{DbPathName: dbPath})
		if err != nil {
			return err
		}
		stream = stream.AddTo(cat, true)
	}
	stream = stream.Print(os.Stdout, lib3flag.PrintOpts{
		Degrees: degrees,
		Density: density,
	})
	stream.PullAll()
	return nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cons, err := loadConstraints()
	if err != nil {
		return err
	}

	p, err := problem.New(viper.GetInt("n"), cons)
	if err != nil {
		return err
	}

	if dg := viper.GetString("density_graph"); dg != "" {
		g, err := lib3flag.ParseAny(dg)
		if err != nil {
			return err
		}
		p.SetDensityGraph(g.MinimalIsomorph())
	}

	p.UseInvariantBases(true)

	haveConstruction := false
	if blowup := viper.GetString("construction.blowup"); blowup != "" {
		g, err := lib3flag.ParseAny(blowup)
		if err != nil {
			return err
		}
		p.SetConstruction(problem.NewBlowupConstruction(g))
		haveConstruction = true

		if viper.GetBool("reduce_bases") {
			if err := p.ReduceBases(); err != nil {
				return err
			}
		}
	}

	var cat lib3flag.Catalog
	if dbPath := viper.GetString("db_path"); dbPath != "" {
		if cat, err = catalog.Open(go3flag.CatalogOpts{DbPathName: dbPath}); err != nil {
			return err
		}
		defer cat.Close()
	}

	if err := p.CalculateProductDensities(ctx, cat); err != nil {
		return err
	}

	workDir, _ := cmd.Flags().GetString("workdir")
	solver := &problem.CSDPSolver{
		Cmd:     viper.GetString("csdp.cmd"),
		Timeout: viper.GetDuration("csdp.timeout"),
	}

	bound, err := p.SolveSDP(ctx, solver, workDir)
	if err != nil {
		return err
	}
	klog.Infof("Upper bound: %g", bound)

	if haveConstruction {
		p.FindSharps(viper.GetFloat64("tolerance"))
	}
	return nil
}
