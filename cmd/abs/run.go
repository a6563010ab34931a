package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxd309/abs-engine/internal/engine"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [input.json]",
		Short: "Run a scenario to completion and print the simulation log",
		Long:  "Reads a SessionInput JSON from the file argument (or stdin), runs it until every train arrives, and writes the SimulationLog JSON to stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) > 0 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			result, err := engine.RunJSON(string(data))
			if err != nil {
				return fmt.Errorf("simulation: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func scenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Print the built-in demonstration scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(engine.DefaultInput())
		},
	}
}

// loadScenario reads a SessionInput from path, or returns the built-in
// layout when path is empty.
func loadScenario(path string) (engine.SessionInput, error) {
	if path == "" {
		return engine.DefaultInput(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.SessionInput{}, fmt.Errorf("reading scenario: %w", err)
	}
	var input engine.SessionInput
	if err := json.Unmarshal(data, &input); err != nil {
		return engine.SessionInput{}, fmt.Errorf("scenario %q: %w", path, err)
	}
	return input, nil
}
