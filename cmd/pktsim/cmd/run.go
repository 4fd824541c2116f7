package cmd

import (
	"fmt"

	"github.com/iti/pktsim"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var runFlags struct {
	horizon   float64
	seed      uint64
	dropProb  float64
	engine    string
	rng       string
	autoRoute bool
	db        string
	trace     string
	from      []string
	to        []string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation and print its report.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}

		nc, err := loadCfg()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &nc.Params)

		var traceMgr *pktsim.TraceManager
		if runFlags.trace != "" {
			if _, err := pktsim.CheckOutputFiles([]string{runFlags.trace}); err != nil {
				return err
			}
			traceMgr = pktsim.CreateTraceManager(nc.Name, true)
		}

		exp, err := pktsim.BuildExperiment(nc, logger, traceMgr)
		if err != nil {
			return err
		}
		if err := exp.Run(); err != nil {
			return err
		}
		logResources(logger)

		rep := exp.Report()
		out := cmd.OutOrStdout()
		if err := pktsim.WriteReport(out, rep); err != nil {
			return err
		}

		fmt.Fprintln(out)
		if err := pktsim.WritePathListing(out, exp, runFlags.from, runFlags.to); err != nil {
			return err
		}

		if traceMgr != nil {
			if err := traceMgr.WriteToFile(runFlags.trace); err != nil {
				return err
			}
			logger.Infof("wrote %d trace records to %s", traceMgr.Len(), runFlags.trace)
		}

		if runFlags.db != "" {
			recorder, err := pktsim.NewResultRecorder(runFlags.db)
			if err != nil {
				return err
			}
			atexit.Register(func() { recorder.Close() })

			runID, err := recorder.Record(rep)
			if err != nil {
				return err
			}
			logger.Infof("recorded run %s in %s", runID, recorder.Filename())
		}
		return nil
	},
}

// applyRunFlags overrides the parameters whose flags were given
func applyRunFlags(cmd *cobra.Command, params *pktsim.ExpParams) {
	flags := cmd.Flags()
	if flags.Changed("horizon") {
		params.Horizon = runFlags.horizon
	}
	if flags.Changed("seed") {
		params.Seed = runFlags.seed
	}
	if flags.Changed("dropprob") {
		params.DropProb = runFlags.dropProb
	}
	if flags.Changed("engine") {
		params.Engine = runFlags.engine
	}
	if flags.Changed("rng") {
		params.Rng = runFlags.rng
	}
	if flags.Changed("autoroute") {
		params.AutoRoute = runFlags.autoRoute
	}
}

func init() {
	flags := runCmd.Flags()
	flags.Float64Var(&runFlags.horizon, "horizon", 0, "simulated seconds, overrides params.horizon")
	flags.Uint64Var(&runFlags.seed, "seed", 0, "random seed, overrides params.seed")
	flags.Float64Var(&runFlags.dropProb, "dropprob", 0, "per-hop drop probability, overrides params.dropprob")
	flags.StringVar(&runFlags.engine, "engine", "", "heap or evtm, overrides params.engine")
	flags.StringVar(&runFlags.rng, "rng", "", "pcg or rngstream, overrides params.rng")
	flags.BoolVar(&runFlags.autoRoute, "autoroute", false, "fill missing routes from shortest paths")
	flags.StringVar(&runFlags.db, "db", "", "record the report in <db>.sqlite3")
	flags.StringVar(&runFlags.trace, "trace", "", "write packet traces to this .yaml or .json file")
	flags.StringSliceVar(&runFlags.from, "from", nil, "path listing sources (default every endpoint)")
	flags.StringSliceVar(&runFlags.to, "to", nil, "path listing destinations (default every endpoint)")

	rootCmd.AddCommand(runCmd)
}
