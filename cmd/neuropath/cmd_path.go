package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/store"
)

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <start> <end>",
		Short: "Find a decision path and reinforce it",
		Long: `Find the path from start to end with the smallest summed synapse
weight, then strengthen every synapse on it.

When no path exists nothing is reinforced and the command still succeeds.

Examples:
  neuropath path "Sensory Input" "Decision Output"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end := args[0], args[1]
			jsonOut, _ := cmd.Flags().GetBool("json")
			ctx := context.Background()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			res, err := ws.graph.Search(ctx, start, end)
			if err != nil {
				return fmt.Errorf("path search: %w", err)
			}

			if res.Found {
				if err := ws.save(ctx); err != nil {
					return err
				}
			}
			if ws.cfg.Store.RecordSearches {
				if err := ws.store.RecordSearch(ctx, store.NewSearchRecord(res, time.Now())); err != nil {
					ws.logger.Warn("failed to record search", "error", err)
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			if !res.Found {
				fmt.Fprintf(cmd.OutOrStdout(), "No path from %s to %s\n", start, end)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Path: %s\n", strings.Join(res.Path, " -> "))
			fmt.Fprintf(cmd.OutOrStdout(), "Cost: %.4f\n", res.Cost)
			for _, c := range res.Reinforced {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s -- %s: %.4f -> %.4f\n", c.A, c.B, c.Before, c.After)
			}
			return nil
		},
	}
}
