package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStrengthenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strengthen <a> <b>",
		Short: "Apply one Hebbian reinforcement to a synapse",
		Long: `Move a synapse's weight toward 1.0 by the learning rate:

  w' = min(1, w + (1 - w) * learning_rate)

Strengthening a pair with no synapse changes nothing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b := args[0], args[1]
			jsonOut, _ := cmd.Flags().GetBool("json")
			ctx := context.Background()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			before, _ := ws.graph.Weight(a, b)
			changed := ws.graph.StrengthenConnection(a, b)
			if changed {
				if err := ws.save(ctx); err != nil {
					return err
				}
			}
			after, _ := ws.graph.Weight(a, b)

			if jsonOut {
				out := map[string]any{"a": a, "b": b, "strengthened": changed}
				if changed {
					out["before"] = before
					out["after"] = after
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "No synapse between %s and %s; nothing changed\n", a, b)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Strengthened %s -- %s: %.4f -> %.4f\n", a, b, before, after)
			return nil
		},
	}
}
