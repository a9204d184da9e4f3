// Package paths maps path-like strings stored in the catalog to files on
// disk. Catalog rows are hand-edited, so stored paths arrive with
// backslashes, stray "./" prefixes, a recurring "assets." typo, or just a
// bare file name.
package paths

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is the sentinel for a stored path that resolves to no
// existing file. Resolution failures are never fatal; callers substitute
// a placeholder or disable the action.
var ErrInvalidPath = errors.New("catalog path does not resolve to a file")

type Resolver struct {
	BaseDir   string // anchor for relative paths
	AssetsDir string // fallback directory for bare file names
}

// Resolve normalizes raw and returns the absolute path of an existing
// regular file, or ErrInvalidPath.
//
// Steps: backslashes become slashes; the known "assets." separator typo
// is repaired; a leading "./" is stripped; relative paths anchor at
// BaseDir. If the result is not a file, a second attempt joins AssetsDir
// with the base name of the original string, tolerating rows where only
// the file name was recorded correctly.
func (r Resolver) Resolve(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidPath
	}
	s = strings.ReplaceAll(s, `\`, "/")
	if strings.HasPrefix(s, "assets.") {
		s = "assets/" + strings.TrimPrefix(s, "assets.")
	}
	s = strings.TrimPrefix(s, "./")

	p := filepath.FromSlash(s)
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.BaseDir, p)
	}
	if isRegularFile(p) {
		return p, nil
	}

	alt := filepath.Join(r.AssetsDir, path.Base(s))
	if isRegularFile(alt) {
		return alt, nil
	}
	return "", ErrInvalidPath
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
