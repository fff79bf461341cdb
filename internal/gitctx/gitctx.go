/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package gitctx supplies change records from git history.
package gitctx

import (
	"context"
	"errors"
	"fmt"

	"github.com/fulmenhq/sfdelta/pkg/changeset"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

var (
	// ErrNotRepository is returned when no repository is found at the path.
	ErrNotRepository = errors.New("not a git repository")
	// ErrRevisionNotFound is returned when a revision does not resolve to a commit.
	ErrRevisionNotFound = errors.New("revision not found")
	// ErrNotLinear is returned when the commit does not have exactly one parent.
	ErrNotLinear = errors.New("commit does not have exactly one parent")
)

// Comparison is the change set between a commit and its single parent.
type Comparison struct {
	Revision string             `json:"revision"`
	Commit   string             `json:"commit"`
	Parent   string             `json:"parent"`
	Records  []changeset.Record `json:"records"`
}

// ShortCommit returns the abbreviated commit hash.
func (c *Comparison) ShortCommit() string { return short(c.Commit) }

// ShortParent returns the abbreviated parent hash.
func (c *Comparison) ShortParent() string { return short(c.Parent) }

// Open opens the repository containing path.
func Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotRepository, path, err)
	}
	return repo, nil
}

// CommitChanges opens the repository at repoPath and compares revision to its parent.
func CommitChanges(ctx context.Context, repoPath, revision string) (*Comparison, error) {
	repo, err := Open(repoPath)
	if err != nil {
		return nil, err
	}
	return Changes(ctx, repo, revision)
}

// Changes compares revision to its parent. Root commits and merge commits are
// rejected with ErrNotLinear before any tree is read.
func Changes(ctx context.Context, repo *git.Repository, revision string) (*Comparison, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, revision, err)
	}
	if n := commit.NumParents(); n != 1 {
		return nil, fmt.Errorf("%w: %s has %d", ErrNotLinear, short(commit.Hash.String()), n)
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent of %s: %w", short(commit.Hash.String()), err)
	}

	from, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", short(parent.Hash.String()), err)
	}
	to, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", short(commit.Hash.String()), err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", short(parent.Hash.String()), short(commit.Hash.String()), err)
	}

	records := make([]changeset.Record, 0, len(changes))
	for _, ch := range changes {
		rec, err := toRecord(ch)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return &Comparison{
		Revision: revision,
		Commit:   commit.Hash.String(),
		Parent:   parent.Hash.String(),
		Records:  records,
	}, nil
}

func toRecord(ch *object.Change) (changeset.Record, error) {
	action, err := ch.Action()
	if err != nil {
		return changeset.Record{}, fmt.Errorf("failed to classify change: %w", err)
	}
	switch action {
	case merkletrie.Insert:
		return changeset.Record{NewPath: ch.To.Name, Kind: changeset.Added}, nil
	case merkletrie.Delete:
		return changeset.Record{OldPath: ch.From.Name, Kind: changeset.Deleted}, nil
	default:
		kind := changeset.Modified
		if ch.From.Name != ch.To.Name {
			kind = changeset.Renamed
		}
		return changeset.Record{OldPath: ch.From.Name, NewPath: ch.To.Name, Kind: kind}, nil
	}
}

func short(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
