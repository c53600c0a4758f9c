package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/network"
	"github.com/nvandessel/neuropath/internal/visualization"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize the decision network",
		Long: `Output the network in DOT (Graphviz), JSON, or HTML format.

Line width scales with synapse weight. HTML is written to a file and
opened in the browser unless --no-open is given.

Examples:
  neuropath graph | dot -Tpng > network.png
  neuropath graph --format json
  neuropath graph --format html -o network.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			noOpen, _ := cmd.Flags().GetBool("no-open")

			format, err := visualization.ParseFormat(formatName)
			if err != nil {
				return err
			}

			ctx := context.Background()
			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			snap := ws.graph.Snapshot()

			switch format {
			case visualization.FormatDOT:
				fmt.Fprint(cmd.OutOrStdout(), visualization.RenderDOT(snap))

			case visualization.FormatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(visualization.RenderJSON(snap)); err != nil {
					return fmt.Errorf("encode JSON: %w", err)
				}

			case visualization.FormatHTML:
				return writeStaticHTML(cmd, snap, output, noOpen)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "dot", "Output format: dot, json, or html")
	cmd.Flags().StringP("output", "o", "", "Output file path (html format only)")
	cmd.Flags().Bool("no-open", false, "Don't open browser after generating HTML")

	return cmd
}

// writeStaticHTML renders the network to a self-contained HTML file.
func writeStaticHTML(cmd *cobra.Command, snap network.Snapshot, output string, noOpen bool) error {
	htmlBytes, err := visualization.RenderHTML(snap)
	if err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}

	outPath := output
	if outPath == "" {
		outPath = filepath.Join(os.TempDir(), "neuropath-graph.html")
	}

	if err := os.WriteFile(outPath, htmlBytes, 0644); err != nil {
		return fmt.Errorf("write HTML file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Graph written to %s\n", outPath)

	if !noOpen {
		if err := visualization.OpenBrowser(outPath); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, outPath)
		}
	}
	return nil
}
