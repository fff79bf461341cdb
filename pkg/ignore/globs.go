package ignore

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Globs filters paths with include and exclude patterns. A path is kept when
// it matches at least one include pattern (or there are none) and no exclude
// pattern.
type Globs struct {
	include []string
	exclude []string
}

// NewGlobs validates the patterns and returns a filter.
func NewGlobs(include, exclude []string) (*Globs, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &Globs{include: include, exclude: exclude}, nil
}

// Empty reports whether the filter has no patterns at all.
func (g *Globs) Empty() bool {
	return len(g.include) == 0 && len(g.exclude) == 0
}

// Skip implements changeset.Filter.
func (g *Globs) Skip(path string) bool {
	path = strings.TrimPrefix(strings.ReplaceAll(path, `\`, "/"), "/")
	if len(g.include) > 0 && !matchAny(g.include, path) {
		return true
	}
	return matchAny(g.exclude, path)
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}
