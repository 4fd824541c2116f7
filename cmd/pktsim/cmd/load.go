package cmd

import (
	"fmt"

	"github.com/iti/pktsim"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Print the offered load and M/D/1 estimates of every hop in use.",
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
		exp, err := pktsim.BuildExperiment(nc, logger, nil)
		if err != nil {
			return err
		}
		loads, err := exp.LinkLoads()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-6s %-6s %10s %8s %10s %12s\n", "from", "to", "pkts/s", "rho", "in-flight", "md1 latency")
		for _, ll := range loads {
			fmt.Fprintf(out, "%-6s %-6s %10.2f %8.4f %10.4f %12.6g\n",
				ll.From, ll.To, ll.Rate, ll.Rho, ll.InFlight, ll.MD1Latency)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
