// Package constants provides named constants used throughout the neuropath codebase.
// This centralizes the numeric defaults of the network model so they are
// documented once and overridden through configuration, never at call sites.
package constants

// Synapse weight constants
const (
	// DefaultInitialStrength is the weight given to a new connection when the
	// caller does not supply one.
	DefaultInitialStrength = 0.5

	// DefaultLearningRate is the fraction of the remaining distance to 1.0 that
	// a single reinforcement closes.
	DefaultLearningRate = 0.2

	// DefaultDecayRate is the amount subtracted from every weight by one decay pass.
	DefaultDecayRate = 0.05

	// MaxWeight is the ceiling applied after reinforcement.
	MaxWeight = 1.0

	// MinWeight is the floor applied after decay.
	MinWeight = 0.0
)

// Rendering constants
const (
	// EdgeWidthScale multiplies a synapse weight to get its drawn width.
	EdgeWidthScale = 3.0

	// MinEdgeWidth keeps near-zero synapses visible.
	MinEdgeWidth = 0.5
)

// On-disk layout
const (
	// DirName is the per-project (and per-user) data directory.
	DirName = ".neuropath"

	// DatabaseFile is the SQLite database holding the persisted network.
	DatabaseFile = "neuropath.db"

	// ConfigFile is the YAML configuration file inside the global DirName.
	ConfigFile = "config.yaml"

	// ManifestFile marks an initialized DirName.
	ManifestFile = "manifest.yaml"

	// BackupDir holds network backups inside a DirName.
	BackupDir = "backups"

	// DefaultHistoryLimit bounds how many path searches `neuropath history` lists.
	DefaultHistoryLimit = 20
)
