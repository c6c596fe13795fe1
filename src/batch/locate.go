package batch

import (
	"fmt"
	"path/filepath"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Locate expands every glob pattern relative to dir and returns the matches,
// deduplicated and sorted. A pattern with no match contributes nothing.
func Locate(dir string, patterns []string) ([]string, error) {
	found := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if rel, err := filepath.Rel(dir, m); err == nil {
				m = rel
			}
			found[m] = struct{}{}
		}
	}

	paths := maps.Keys(found)
	slices.Sort(paths)
	return paths, nil
}
