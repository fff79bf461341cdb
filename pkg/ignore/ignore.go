// Package ignore decides which changed paths are left out of a manifest.
//
// Matcher applies the project's .forceignore (gitignore syntax, read through
// go-git's gitignore package); Globs applies include/exclude patterns from
// configuration using doublestar.
package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the ignore file looked up at the repository root.
const FileName = ".forceignore"

// Matcher matches repository-relative paths against ignore patterns.
type Matcher struct {
	matcher  gitignore.Matcher
	patterns int
}

// NewMatcher loads the .forceignore at repoRoot. Without one the matcher
// has no patterns and ignores nothing.
func NewMatcher(repoRoot string) (*Matcher, error) {
	return NewMatcherFS(osfs.New(repoRoot))
}

// NewMatcherFS is NewMatcher over an arbitrary billy filesystem.
func NewMatcherFS(fsys billy.Filesystem) (*Matcher, error) {
	var lines []string
	data, err := util.ReadFile(fsys, FileName)
	switch {
	case err == nil:
		lines = append(lines, parseLines(string(data))...)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	return FromPatterns(lines), nil
}

// FromPatterns builds a matcher from gitignore-style lines.
func FromPatterns(lines []string) *Matcher {
	patterns := make([]gitignore.Pattern, 0, len(lines))
	for _, line := range lines {
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &Matcher{matcher: gitignore.NewMatcher(patterns), patterns: len(patterns)}
}

// Len returns the number of loaded patterns.
func (m *Matcher) Len() int {
	return m.patterns
}

// IsIgnored reports whether a repository-relative file path is ignored.
func (m *Matcher) IsIgnored(path string) bool {
	parts := splitPath(path)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, false)
}

// Skip implements changeset.Filter.
func (m *Matcher) Skip(path string) bool {
	return m.IsIgnored(path)
}

func parseLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// splitPath converts a slash-separated path into components for go-git matching.
func splitPath(path string) []string {
	path = strings.ReplaceAll(path, `\`, "/")
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
