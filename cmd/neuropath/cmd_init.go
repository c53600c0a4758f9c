package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/constants"
	"github.com/nvandessel/neuropath/internal/store"
)

const manifestTemplate = `# neuropath manifest
version: "1.0"
created: %s
schema_version: %d

# The decision network lives in %s in this directory.
# Run 'neuropath neuron add <key>' and 'neuropath connect <a> <b>' to build it,
# then 'neuropath path <start> <end>' to search and reinforce it.
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a decision network in the current directory",
		Long: `Create the .neuropath directory, its SQLite database, and a manifest.

With --global the network is created under ~/.neuropath instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			scope := scopeFromFlags(cmd)

			dir, err := dataDir(cmd)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s directory: %w", constants.DirName, err)
			}

			manifestPath := filepath.Join(dir, constants.ManifestFile)
			if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
				content := fmt.Sprintf(manifestTemplate, time.Now().Format(time.RFC3339), store.SchemaVersion, constants.DatabaseFile)
				if err := os.WriteFile(manifestPath, []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to create %s: %w", constants.ManifestFile, err)
				}
			}

			// Opening the store creates and migrates the database.
			gs, err := store.NewSQLiteGraphStore(dir)
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			defer gs.Close()

			if err := store.ValidateIntegrity(context.Background(), gs.DB()); err != nil {
				return fmt.Errorf("database integrity check failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "initialized",
					"path":   dir,
					"scope":  scope.String(),
				})
			}
			if scope == constants.ScopeGlobal {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized global %s/ at %s\n", constants.DirName, dir)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s/ in %s\n", constants.DirName, filepath.Dir(dir))
			}
			return nil
		},
	}
}
