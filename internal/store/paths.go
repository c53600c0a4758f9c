package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/neuropath/internal/constants"
)

// GlobalPath returns the path to the global .neuropath directory.
// On Unix: ~/.neuropath
// On Windows: %USERPROFILE%\.neuropath
func GlobalPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.DirName), nil
}

// LocalPath returns the path to the local .neuropath directory
// for the given project root.
func LocalPath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DirName)
}

// ScopePath resolves the data directory for a scope.
func ScopePath(scope constants.Scope, projectRoot string) (string, error) {
	switch scope {
	case constants.ScopeLocal:
		return LocalPath(projectRoot), nil
	case constants.ScopeGlobal:
		return GlobalPath()
	default:
		return "", fmt.Errorf("invalid scope %q (valid: local, global)", scope)
	}
}
