// Package changeset turns change records into component sets.
package changeset

import (
	"fmt"
	"strings"
)

// Kind is the kind of change a record describes.
type Kind int

const (
	Added Kind = iota + 1
	Modified
	Deleted
	Renamed
)

// String returns the human-readable kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "Added"
	case Modified:
		return "Modified"
	case Deleted:
		return "Deleted"
	case Renamed:
		return "Renamed"
	default:
		return "Unknown"
	}
}

// Letter returns the git name-status letter for the kind.
func (k Kind) Letter() string {
	switch k {
	case Added:
		return "A"
	case Modified:
		return "M"
	case Deleted:
		return "D"
	case Renamed:
		return "R"
	default:
		return "?"
	}
}

// ParseKind parses a git name-status letter (A, M, D, R, R100, ...) or a kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty change kind")
	}
	switch strings.ToLower(s) {
	case "added":
		return Added, nil
	case "modified":
		return Modified, nil
	case "deleted":
		return Deleted, nil
	case "renamed":
		return Renamed, nil
	}
	switch s[0] {
	case 'A':
		return Added, nil
	case 'M':
		return Modified, nil
	case 'D':
		return Deleted, nil
	case 'R':
		return Renamed, nil
	}
	return 0, fmt.Errorf("unsupported change kind %q", s)
}

// Record is one entry of a revision-to-revision diff. OldPath is empty for
// additions and NewPath is empty for deletions.
type Record struct {
	OldPath string `json:"old_path,omitempty"`
	NewPath string `json:"new_path,omitempty"`
	Kind    Kind   `json:"kind"`
}

// String renders the record the way change listings print it.
func (r Record) String() string {
	switch r.Kind {
	case Deleted:
		return fmt.Sprintf("%s: %s", r.Kind, r.OldPath)
	case Renamed:
		return fmt.Sprintf("%s: %s -> %s", r.Kind, r.OldPath, r.NewPath)
	default:
		return fmt.Sprintf("%s: %s", r.Kind, r.NewPath)
	}
}

func (r Record) path() string {
	if r.NewPath != "" {
		return r.NewPath
	}
	return r.OldPath
}
