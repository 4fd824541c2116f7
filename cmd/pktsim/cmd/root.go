// Package cmd provides the command-line interface for pktsim.
package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/iti/pktsim"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// configEnv names the environment variable consulted when --config is not given
const configEnv = "PKTSIM_CONFIG"

var (
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pktsim",
	Short: "pktsim simulates packet delivery over a static internetwork.",
	Long: `pktsim simulates packet delivery over a small internetwork of endpoints ` +
		`and routers joined by capacity-limited links, and reports per-flow delay ` +
		`and drop statistics and per-link queue lengths.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a .env file is optional
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if configFile == "" {
			configFile = os.Getenv(configEnv)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"model description, .yaml or .json (default $"+configEnv+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"one of error, warn, info, debug")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		reportFailure(failureLogger(), err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// failureLogger returns the --log-level logger, or an error-level one if the level is bad
func failureLogger() *pktsim.Logger {
	logger, err := newLogger()
	if err != nil {
		return pktsim.NewLogger(pktsim.LogLevelError, "pktsim ")
	}
	return logger
}

// reportFailure logs the error that ended a command
func reportFailure(logger *pktsim.Logger, err error) {
	logger.Errorf("%v", err)
}

// loadCfg reads the model description named by --config
func loadCfg() (*pktsim.NetCfg, error) {
	if configFile == "" {
		return nil, errors.New("no model description given, use --config or $" + configEnv)
	}
	return pktsim.LoadNetCfg(configFile)
}

// newLogger builds the logger selected by --log-level
func newLogger() (*pktsim.Logger, error) {
	level, err := pktsim.ParseLogLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return pktsim.NewLogger(level, "pktsim "), nil
}
