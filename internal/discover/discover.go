// internal/discover/discover.go
// Package: discover

// Package discover finds result files below an input root.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoFiles is returned when no file with a wanted extension exists.
var ErrNoFiles = errors.New("no result files found")

// Files walks root and returns every regular file whose extension is one
// of exts (case-insensitive, with or without the leading dot), sorted by
// path. Hidden directories are skipped. root may also name a single file.
func Files(root string, exts ...string) ([]string, error) {
	want := make([]string, len(exts))
	for i, e := range exts {
		want[i] = "." + strings.TrimPrefix(strings.ToLower(e), ".")
	}
	match := func(path string) bool {
		return len(want) == 0 || slices.Contains(want, strings.ToLower(filepath.Ext(path)))
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", root, err)
	}
	if !info.IsDir() {
		if !match(root) {
			return nil, fmt.Errorf("%w: %s does not have extension %v", ErrNoFiles, root, exts)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && match(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w below %s", ErrNoFiles, root)
	}
	slices.Sort(paths)
	return paths, nil
}

// ByStem groups paths by a derived name, keeping the sorted order of both
// the names and the paths within each group.
func ByStem(paths []string, stem func(string) string) (names []string, groups map[string][]string) {
	groups = make(map[string][]string)
	for _, p := range paths {
		name := stem(p)
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], p)
	}
	slices.Sort(names)
	return names, groups
}
