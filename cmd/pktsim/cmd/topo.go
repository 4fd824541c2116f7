package cmd

import (
	"fmt"

	"github.com/iti/pktsim"
	"github.com/spf13/cobra"
)

var topoCmd = &cobra.Command{
	Use:   "topo",
	Short: "Print the topology in graphviz DOT form.",
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
		topo, err := pktsim.CreateTopology(nc, logger)
		if err != nil {
			return err
		}
		dot, err := topo.DOT()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(dot))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topoCmd)
}
