package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/sfdelta/internal/gitctx"
	"github.com/fulmenhq/sfdelta/pkg/changeset"
	"github.com/fulmenhq/sfdelta/pkg/safeio"
	git "github.com/go-git/go-git/v5"
)

// Provider yields the change records for one revision.
type Provider interface {
	Changes(ctx context.Context, revision string) (*gitctx.Comparison, error)
}

// GitProvider diffs revisions of an opened repository against their parent.
type GitProvider struct {
	repo *git.Repository
}

// NewGitProvider opens the repository containing path.
func NewGitProvider(path string) (*GitProvider, error) {
	repo, err := gitctx.Open(path)
	if err != nil {
		return nil, err
	}
	return &GitProvider{repo: repo}, nil
}

// Changes implements Provider.
func (p *GitProvider) Changes(ctx context.Context, revision string) (*gitctx.Comparison, error) {
	return gitctx.Changes(ctx, p.repo, revision)
}

// StaticProvider serves a fixed record list regardless of the revision asked
// for. It backs patch-file input and tests.
type StaticProvider struct {
	Records []changeset.Record
}

// Changes implements Provider.
func (p StaticProvider) Changes(_ context.Context, revision string) (*gitctx.Comparison, error) {
	return &gitctx.Comparison{Revision: revision, Records: p.Records}, nil
}

// NewPatchProvider parses a git patch file into a StaticProvider.
func NewPatchProvider(path string) (StaticProvider, error) {
	return fileProvider(path, "patch", gitctx.PatchChanges)
}

// NewNameStatusProvider parses saved `git diff --name-status` output into a
// StaticProvider.
func NewNameStatusProvider(path string) (StaticProvider, error) {
	return fileProvider(path, "name-status file", gitctx.NameStatusChanges)
}

func fileProvider(path, what string, parse func(io.Reader) ([]changeset.Record, error)) (StaticProvider, error) {
	clean, err := safeio.CleanUserPath(path)
	if err != nil {
		return StaticProvider{}, fmt.Errorf("invalid %s path %q: %w", what, path, err)
	}
	// #nosec G304 -- operator-supplied input path, traversal rejected above
	f, err := os.Open(clean)
	if err != nil {
		return StaticProvider{}, fmt.Errorf("failed to open %s: %w", what, err)
	}
	defer func() { _ = f.Close() }()

	records, err := parse(f)
	if err != nil {
		return StaticProvider{}, err
	}
	return StaticProvider{Records: records}, nil
}
