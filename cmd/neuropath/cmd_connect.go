package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/network"
)

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <a> <b>",
		Short: "Create or overwrite a synapse between two neurons",
		Long: `Create an undirected synapse between two existing neurons.

Without --weight the configured default strength is used. Connecting a
pair that is already connected overwrites its weight.

Examples:
  neuropath connect "Sensory Input" Attention --weight 0.3
  neuropath connect Attention "Memory Recall"`,
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

			var opts []network.ConnectionOption
			if cmd.Flags().Changed("weight") {
				weight, _ := cmd.Flags().GetFloat64("weight")
				opts = append(opts, network.WithWeight(weight))
			}

			_, existed := ws.graph.Weight(a, b)
			if err := ws.graph.AddConnection(a, b, opts...); err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err := ws.save(ctx); err != nil {
				return err
			}

			weight, _ := ws.graph.Weight(a, b)
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"a":           a,
					"b":           b,
					"weight":      weight,
					"overwritten": existed,
				})
			}
			verb := "Connected"
			if existed {
				verb = "Updated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -- %s (weight: %.4f)\n", verb, a, b, weight)
			return nil
		},
	}

	cmd.Flags().Float64("weight", 0, "Synapse weight (default: network.default_strength)")

	return cmd
}
