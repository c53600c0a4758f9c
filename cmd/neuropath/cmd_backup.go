package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/backup"
	"github.com/nvandessel/neuropath/internal/pathutil"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the decision network to a backup file",
		Long: `Write every neuron and synapse to a compressed, checksummed file.

Default location: .neuropath/backups/neuropath-backup-<timestamp>.json.gz
Older backups are pruned according to backup.max_count and backup.max_age.

Examples:
  neuropath backup
  neuropath backup --output .neuropath/backups/before-decay.json.gz
  neuropath backup list
  neuropath backup verify <file>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")
			ctx := context.Background()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			if outputPath == "" {
				outputPath = backup.GeneratePath(backup.DefaultDir(ws.dir))
			} else if outputPath, err = confineBackupPath(ws.dir, outputPath); err != nil {
				return fmt.Errorf("backup path rejected: %w", err)
			}

			header, err := backup.Backup(ctx, ws.store, outputPath)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			policy, err := backup.NewPolicy(ws.cfg.Backup.MaxCount, ws.cfg.Backup.MaxAge)
			if err != nil {
				ws.logger.Warn("invalid backup retention settings", "error", err)
			} else if deleted, err := backup.ApplyRetention(filepath.Dir(outputPath), policy); err != nil {
				ws.logger.Warn("failed to apply retention", "error", err)
			} else if len(deleted) > 0 {
				ws.logger.Debug("pruned old backups", "count", len(deleted))
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"path":     outputPath,
					"neurons":  header.Neurons,
					"synapses": header.Synapses,
					"checksum": header.Checksum,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %d neurons, %d synapses\n", header.Neurons, header.Synapses)
			fmt.Fprintf(cmd.OutOrStdout(), "  Path: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: auto-generated in .neuropath/backups/)")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
	)

	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			dir, err := dataDir(cmd)
			if err != nil {
				return err
			}
			backups, err := backup.ListBackups(backup.DefaultDir(dir))
			if err != nil {
				return err
			}
			if backups == nil {
				backups = []backup.Info{}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"backups": backups,
					"count":   len(backups),
				})
			}
			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups found.")
				return nil
			}
			for _, b := range backups {
				if !b.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  (unreadable)\n", filepath.Base(b.Path))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d neurons, %d synapses, %d bytes\n",
					filepath.Base(b.Path), b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.Neurons, b.Synapses, b.Size)
			}
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a backup's checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			path := args[0]

			verr := backup.VerifyChecksum(path)
			if jsonOut {
				out := map[string]any{"path": path, "valid": verr == nil}
				if verr != nil {
					out["error"] = verr.Error()
				}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return err
				}
				return verr
			}
			if verr != nil {
				return fmt.Errorf("backup is invalid: %w", verr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup OK: %s\n", path)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the decision network from a backup",
		Long: `Load a backup into the store.

Modes:
  merge   - add neurons and synapses that are missing, keep existing weights (default)
  replace - discard the stored network in favor of the backup

Examples:
  neuropath restore .neuropath/backups/neuropath-backup-20260301-120000.000000.json.gz
  neuropath restore backup.json.gz --mode replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			jsonOut, _ := cmd.Flags().GetBool("json")
			modeName, _ := cmd.Flags().GetString("mode")
			ctx := context.Background()

			mode, err := backup.ParseRestoreMode(modeName)
			if err != nil {
				return err
			}

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			inputPath, err = confineBackupPath(ws.dir, inputPath)
			if err != nil {
				return fmt.Errorf("restore path rejected: %w", err)
			}

			result, err := backup.Restore(ctx, ws.store, inputPath, mode, ws.cfg.Network.ToNetwork())
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"mode":   mode,
					"result": result,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restore complete (mode: %s)\n", mode)
			fmt.Fprintf(cmd.OutOrStdout(), "  Neurons:  %d restored, %d skipped\n", result.NeuronsRestored, result.NeuronsSkipped)
			fmt.Fprintf(cmd.OutOrStdout(), "  Synapses: %d restored, %d skipped\n", result.SynapsesRestored, result.SynapsesSkipped)
			return nil
		},
	}

	cmd.Flags().String("mode", string(backup.RestoreMerge), "Restore mode: merge or replace")

	return cmd
}

// confineBackupPath resolves a user-supplied backup path, rejecting it when
// it falls outside the backup directories.
func confineBackupPath(dataDir, path string) (string, error) {
	sb, err := pathutil.BackupSandbox(dataDir)
	if err != nil {
		return "", err
	}
	return sb.Resolve(path)
}
