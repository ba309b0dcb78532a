package tools

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~/" or a bare "~" with the user's home directory.
// Returns path unchanged if it does not start with "~".
//
// Expectations:
//   - Expands "~/foo" to "<home>/foo"
//   - Expands bare "~" to "<home>"
//   - Returns path unchanged when it does not start with "~"
//   - Returns path unchanged for "/absolute/path"
func ExpandHome(path string) string {
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// ResolveDataPath places bare filenames under dataDir. Paths that carry a
// directory component or are absolute are returned unchanged (after "~" expansion).
//
// Expectations:
//   - Bare filename ("memory.db") → joined onto dataDir
//   - "./" prefix ("./metrics.csv") → joined onto dataDir
//   - Path with dir component ("examples/sales.csv") → unchanged
//   - Absolute path → unchanged
//   - Empty dataDir leaves bare filenames relative to CWD
func ResolveDataPath(dataDir, path string) string {
	path = ExpandHome(path)
	clean := filepath.Clean(path)
	if filepath.Dir(clean) == "." && dataDir != "" {
		return filepath.Join(ExpandHome(dataDir), clean)
	}
	return path
}

// EnsureParentDir creates the parent directory of path if it does not exist.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
