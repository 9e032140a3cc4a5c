// Package security guards file outputs requested through the API.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveOutputPath returns the path a recording or export should be
// written to. With an empty baseDir the path is returned cleaned. Otherwise
// relative paths are taken relative to baseDir, and any path that resolves
// outside baseDir, following symlinks of existing parents, is rejected.
func ResolveOutputPath(path, baseDir string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty output path")
	}
	if baseDir == "" {
		return filepath.Clean(path), nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	base, err := canonical(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	target, err := canonical(abs)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s escapes %s", path, baseDir)
	}
	return abs, nil
}

// canonical resolves symlinks of the deepest existing ancestor of path and
// re-appends the components that do not exist yet.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var rest []string
	for p := abs; ; p = filepath.Dir(p) {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved, nil
		}
		if parent := filepath.Dir(p); parent == p {
			return abs, nil
		}
		rest = append(rest, filepath.Base(p))
	}
}
