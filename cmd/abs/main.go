// Command abs runs the automatic block-signalling simulation, either as a
// batch job that reads a SessionInput JSON and writes the SimulationLog JSON,
// or as a server that ticks a live session for a browser view.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cxd309/abs-engine/internal/config"
)

func main() {
	err := newRootCmd().Execute()
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. envFiles are handed to config.Load;
// none means .env in the working directory.
func newRootCmd(envFiles ...string) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "abs",
		Short:         "Automatic block-signalling simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = cfg.LogLevel
			}
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd(envFiles...))
	rootCmd.AddCommand(scenarioCmd())
	return rootCmd
}

// newLogger builds a production logger writing to stderr, so batch output on
// stdout stays clean.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
