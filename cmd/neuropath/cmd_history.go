package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent decision path searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ctx := context.Background()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			limit := ws.cfg.Store.HistoryLimit
			if cmd.Flags().Changed("limit") {
				limit, _ = cmd.Flags().GetInt("limit")
			}

			records, err := ws.store.ListSearches(ctx, limit)
			if err != nil {
				return err
			}
			if records == nil {
				records = []store.SearchRecord{}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"searches": records,
					"count":    len(records),
				})
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No searches recorded.")
				return nil
			}
			for _, rec := range records {
				when := rec.At.Local().Format("2006-01-02 15:04:05")
				if rec.Found {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (cost %.4f)\n", when, strings.Join(rec.Path, " -> "), rec.Cost)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s -> %s  no path\n", when, rec.Start, rec.End)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum number of searches to show (default: store.history_limit, 0 for all)")

	return cmd
}
