package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newNeuronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neuron",
		Short: "Manage neurons",
	}

	cmd.AddCommand(
		newNeuronAddCmd(),
		newNeuronListCmd(),
	)

	return cmd
}

func newNeuronAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <key>...",
		Short: "Add one or more neurons",
		Long: `Add neurons to the network. Adding a key that already exists is a no-op.

Examples:
  neuropath neuron add "Sensory Input" Attention "Memory Recall"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ctx := context.Background()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			added := make([]string, 0, len(args))
			for _, key := range args {
				existed := ws.graph.HasNode(key)
				if err := ws.graph.AddNode(key); err != nil {
					return fmt.Errorf("add neuron: %w", err)
				}
				if !existed {
					added = append(added, key)
				}
			}

			if err := ws.save(ctx); err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"added":   added,
					"neurons": ws.graph.NodeCount(),
				})
			}
			for _, key := range added {
				fmt.Fprintf(cmd.OutOrStdout(), "Added neuron %q\n", key)
			}
			if skipped := len(args) - len(added); skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d already present\n", skipped)
			}
			return nil
		},
	}
}

func newNeuronListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List neurons and their synapses",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ctx := context.Background()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			snap := ws.graph.Snapshot()
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(snap)
			}

			if len(snap.Nodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No neurons. Add some with 'neuropath neuron add <key>'.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Neurons (%d):\n", len(snap.Nodes))
			for _, n := range snap.Nodes {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", n.Key)
			}
			if len(snap.Edges) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSynapses (%d):\n", len(snap.Edges))
				for _, e := range snap.Edges {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s -- %s  %.4f\n", e.A, e.B, e.Weight)
				}
			}
			return nil
		},
	}
}
