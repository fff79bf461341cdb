package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/fulmenhq/sfdelta/pkg/changeset"
	"github.com/fulmenhq/sfdelta/pkg/safeio"
)

// WriteOptions controls a single manifest write.
type WriteOptions struct {
	// Version is used when a fresh manifest has to be created.
	Version string
	// DryRun computes the result and a diff without touching the file.
	DryRun bool
}

// WriteResult describes what happened to one manifest file.
type WriteResult struct {
	Path      string `json:"path"`
	Skipped   bool   `json:"skipped,omitempty"`
	Created   bool   `json:"created,omitempty"`
	Recovered bool   `json:"recovered,omitempty"`
	Added     int    `json:"added"`
	Changed   bool   `json:"changed"`
	Written   bool   `json:"written"`
	Diff      string `json:"diff,omitempty"`
	// Malformed holds the parse failure of a replaced document.
	Malformed error `json:"-"`
}

// Build merges set into existing, or into a fresh manifest when existing is
// nil, and sorts the members of every group. It returns the number of members
// that were not present before.
func Build(set *changeset.Set, existing *Manifest, version string) (*Manifest, int) {
	m := existing
	if m == nil {
		m = New(version)
	}
	added := m.Merge(set)
	m.Sort()
	return m, added
}

// Write performs the read-modify-write cycle for the manifest at path. An
// empty set writes nothing. A missing or malformed file is replaced by a fresh
// manifest; any other read failure is returned.
func Write(path string, set *changeset.Set, opts WriteOptions) (*WriteResult, error) {
	res := &WriteResult{Path: path}
	if set == nil || set.Empty() {
		res.Skipped = true
		return res, nil
	}

	var before []byte
	m, err := Load(path)
	switch {
	case err == nil:
		if before, err = m.Bytes(); err != nil {
			return nil, fmt.Errorf("failed to serialize %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		m = New(opts.Version)
		res.Created = true
	case IsMalformed(err):
		m = New(opts.Version)
		res.Recovered = true
		res.Malformed = err
	default:
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	m, res.Added = Build(set, m, opts.Version)
	after, err := m.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", path, err)
	}
	res.Changed = !bytes.Equal(before, after)

	if opts.DryRun {
		res.Diff = UnifiedDiff(path, before, after)
		return res, nil
	}
	if !res.Changed {
		return res, nil
	}
	if err := safeio.WriteFilePreservePerms(path, after); err != nil {
		return nil, fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	res.Written = true
	return res, nil
}
