// Package pathutil confines user-supplied file paths to a set of directories.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/neuropath/internal/constants"
)

var (
	// ErrInvalidPath is returned for paths that cannot name a file at all.
	ErrInvalidPath = errors.New("invalid path")
	// ErrOutsideSandbox is returned for paths that resolve outside every root.
	ErrOutsideSandbox = errors.New("path is outside the allowed directories")
)

// Sandbox is a set of root directories. Roots are resolved through symlinks
// when the sandbox is built; they need not exist yet.
type Sandbox struct {
	roots []string
}

// NewSandbox builds a sandbox over dirs. At least one directory is required.
func NewSandbox(dirs ...string) (*Sandbox, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: sandbox needs at least one directory", ErrInvalidPath)
	}
	sb := &Sandbox{}
	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		root, err := resolve(dir)
		if err != nil {
			return nil, err
		}
		if !seen[root] {
			seen[root] = true
			sb.roots = append(sb.roots, root)
		}
	}
	return sb, nil
}

// BackupSandbox is the sandbox for backup files: the backups directory of
// dataDir and of the global ~/.neuropath directory.
func BackupSandbox(dataDir string) (*Sandbox, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewSandbox(
		filepath.Join(dataDir, constants.BackupDir),
		filepath.Join(home, constants.DirName, constants.BackupDir),
	)
}

// Roots returns the resolved root directories.
func (sb *Sandbox) Roots() []string {
	return append([]string(nil), sb.roots...)
}

// Resolve returns path made absolute with every existing symlink followed,
// or ErrOutsideSandbox if that lands outside all roots. Use the returned
// path for the file operation so a later symlink swap cannot redirect it.
func (sb *Sandbox) Resolve(path string) (string, error) {
	resolved, err := resolve(path)
	if err != nil {
		return "", err
	}
	for _, root := range sb.roots {
		if within(root, resolved) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrOutsideSandbox, Redact(resolved))
}

// resolve makes path absolute and follows symlinks through its deepest
// existing ancestor. Components that do not exist yet are appended as is;
// a dangling symlink is rejected since writing through it escapes.
func resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: path contains a null byte", ErrInvalidPath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	var missing []string
	for p := abs; ; {
		if target, err := filepath.EvalSymlinks(p); err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				target = filepath.Join(target, missing[i])
			}
			return target, nil
		}
		if fi, err := os.Lstat(p); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("%w: dangling symlink %s", ErrInvalidPath, Redact(p))
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", fmt.Errorf("%w: no existing ancestor of %s", ErrInvalidPath, Redact(abs))
		}
		missing = append(missing, filepath.Base(p))
		p = parent
	}
}

// within reports whether path is root or below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Redact shortens a path to its last two elements for error messages:
// "/home/user/.neuropath/backups/x.json.gz" becomes ".../backups/x.json.gz".
func Redact(path string) string {
	if path == "" {
		return ""
	}
	parts := strings.FieldsFunc(filepath.ToSlash(filepath.Clean(path)), func(r rune) bool { return r == '/' })
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return ".../" + strings.Join(parts[len(parts)-2:], "/")
	}
}
