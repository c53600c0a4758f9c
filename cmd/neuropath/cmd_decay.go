package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDecayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Weaken every synapse",
		Long: `Subtract the decay rate from every synapse weight, flooring at zero.
Synapses that reach zero stay in the network.

Examples:
  neuropath decay
  neuropath decay --rate 0.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ctx := context.Background()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			rate := ws.graph.Config().DecayRate
			if cmd.Flags().Changed("rate") {
				rate, _ = cmd.Flags().GetFloat64("rate")
				if err := ws.graph.DecayConnectionsBy(rate); err != nil {
					return fmt.Errorf("decay: %w", err)
				}
			} else {
				ws.graph.DecayConnections()
			}

			if err := ws.save(ctx); err != nil {
				return err
			}

			edges := ws.graph.Edges()
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"rate":  rate,
					"edges": edges,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Decayed %d synapses by %.4f\n", len(edges), rate)
			for _, e := range edges {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s -- %s  %.4f\n", e.A, e.B, e.Weight)
			}
			return nil
		},
	}

	cmd.Flags().Float64("rate", 0, "Decay rate for this run (default: network.decay_rate)")

	return cmd
}
