package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neuropath",
		Short: "Adaptive decision networks with Hebbian reinforcement",
		Long: `neuropath maintains a weighted network of named neurons.

Every decision path search reinforces the synapses it travels, unused
synapses fade with decay, and the network can be rendered, simulated,
or served over HTTP.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().Bool("global", false, "Use the network in ~/.neuropath instead of the project")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newNeuronCmd(),
		newConnectCmd(),
		newStrengthenCmd(),
		newDecayCmd(),
		newPathCmd(),
		newGraphCmd(),
		newSimulateCmd(),
		newHistoryCmd(),
		newServeCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newConfigCmd(),
	)

	return rootCmd
}
