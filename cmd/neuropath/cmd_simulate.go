package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/logging"
	"github.com/nvandessel/neuropath/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [scenario.yaml]",
		Short: "Run a scripted decision scenario",
		Long: `Run a scenario on a fresh in-memory network and print how each step
changes the synapse weights. Without a file the built-in decision demo runs:
five neurons from Sensory Input to Decision Output, searched twice.

With --persist the final network replaces the stored one and every search
is added to history.

Examples:
  neuropath simulate
  neuropath simulate scenario.yaml --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			persist, _ := cmd.Flags().GetBool("persist")
			ctx := context.Background()

			sc := simulation.DemoScenario()
			if len(args) == 1 {
				var err error
				sc, err = simulation.LoadScenario(args[0])
				if err != nil {
					return err
				}
			}

			var runner *simulation.Runner
			if persist {
				ws, err := openWorkspace(ctx, cmd)
				if err != nil {
					return err
				}
				defer ws.Close()
				runner = simulation.NewRunner(ws.cfg.Network.ToNetwork())
				runner.SetLogger(ws.logger, ws.decisions)
				runner.SetHistory(ws.store)
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				runner = simulation.NewRunner(cfg.Network.ToNetwork())
				runner.SetLogger(logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()), nil)
			}

			res, err := runner.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printSimulation(cmd, res)
			return nil
		},
	}

	cmd.Flags().Bool("persist", false, "Save the final network and search history to the store")

	return cmd
}

func printSimulation(cmd *cobra.Command, res simulation.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario: %s\n", res.Name)
	for _, st := range res.Steps {
		label := st.Action
		if st.Label != "" {
			label = st.Label
		}
		fmt.Fprintf(out, "\n[%d] %s\n", st.Index, label)

		switch {
		case st.Search != nil && st.Search.Found:
			fmt.Fprintf(out, "  Path: %s\n", strings.Join(st.Search.Path, " -> "))
		case st.Search != nil:
			fmt.Fprintf(out, "  No path from %s to %s\n", st.Search.Start, st.Search.End)
		case st.Action == simulation.ActionStrengthen && !st.Strengthened:
			fmt.Fprintln(out, "  No synapse; nothing changed")
		}

		keys := make([]string, 0, len(st.Weights))
		for k := range st.Weights {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s  %.4f\n", k, st.Weights[k])
		}
	}
}
