// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover lists the candidate images of a run.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Pattern is the filename filter applied to directory entries.
const Pattern = "*.png"

// Images returns the paths of the *.png files directly inside dir, sorted
// lexicographically. Subdirectories are not searched. A missing directory or
// one without matches yields an empty slice and a nil error; callers treat
// that as "nothing to do".
func Images(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading image directory %s: %w", dir, err)
	}

	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(Pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", e.Name(), err)
		}
		if ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
