package cmd

import (
	"fmt"

	"github.com/iti/pktsim"
	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path SRC DST",
	Short: "Print the path the routing table gives from SRC to DST.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := buildResolver()
		if err != nil {
			return err
		}

		route, err := resolver.Resolve(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pktsim.ShowPath(route))
		return nil
	},
}

// buildResolver loads the model and builds only what path resolution needs
func buildResolver() (*pktsim.PathResolver, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	nc, err := loadCfg()
	if err != nil {
		return nil, err
	}
	topo, err := pktsim.CreateTopology(nc, logger)
	if err != nil {
		return nil, err
	}
	table, err := pktsim.BuildRoutingTable(nc, topo)
	if err != nil {
		return nil, err
	}
	return pktsim.CreatePathResolver(topo, table), nil
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
