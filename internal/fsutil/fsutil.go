// Package fsutil walks repository trees, applying exclusion globs so
// dependency and build directories never reach the extraction engine.
package fsutil

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchesExclude returns true if the path matches any exclusion glob.
func MatchesExclude(path string, excludes []string) bool {
	normalized := filepath.ToSlash(path)
	for _, g := range excludes {
		if g == "" {
			continue
		}
		ok, err := doublestar.Match(g, normalized)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// ListFiles walks root and returns the relative paths of all regular
// files not matched by the exclusion globs. Excluded directories are
// not descended into. Permission errors skip the subtree instead of
// failing the walk; symlinked directories are never followed.
func ListFiles(root string, excludes []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if MatchesExclude(rel, excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				// Broken symlink.
				return nil
			}
			if target.IsDir() {
				// WalkDir never descends into symlinked
				// directories; SkipDir here would drop the
				// remaining siblings of this entry.
				return nil
			}
			files = append(files, rel)
			return nil
		}

		if d.IsDir() {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
