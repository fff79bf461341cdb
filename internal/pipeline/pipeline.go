/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package pipeline runs the per-revision flow: collect change records,
// aggregate them into component sets and merge those into the deploy and
// destructive manifests.
package pipeline

import (
	"context"
	"fmt"

	"github.com/fulmenhq/sfdelta/pkg/changeset"
	"github.com/fulmenhq/sfdelta/pkg/logger"
	"github.com/fulmenhq/sfdelta/pkg/manifest"
	"github.com/fulmenhq/sfdelta/pkg/metadata"
)

// Status is the outcome of one revision.
type Status string

const (
	StatusNoChanges Status = "no-changes"
	StatusWritten   Status = "written"
	StatusPlanned   Status = "planned"
	StatusFailed    Status = "failed"
)

// Stage names the step a revision failed in.
type Stage string

const (
	StageChanges Stage = "changes"
	StageWrite   Stage = "write"
)

// RevisionError wraps the failure of one revision.
type RevisionError struct {
	Revision string
	Stage    Stage
	Err      error
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("revision %s: %v", e.Revision, e.Err)
}

func (e *RevisionError) Unwrap() error { return e.Err }

// Result reports one processed revision.
type Result struct {
	Revision    string                `json:"revision"`
	Commit      string                `json:"commit,omitempty"`
	Parent      string                `json:"parent,omitempty"`
	Status      Status                `json:"status"`
	Stats       changeset.Stats       `json:"stats"`
	Skips       []changeset.Skip      `json:"skips,omitempty"`
	Present     map[string][]string   `json:"present"`
	Absent      map[string][]string   `json:"absent"`
	Deploy      *manifest.WriteResult `json:"deploy,omitempty"`
	Destructive *manifest.WriteResult `json:"destructive,omitempty"`
	// Recovered is set when a malformed manifest was replaced.
	Recovered bool   `json:"recovered,omitempty"`
	Error     string `json:"error,omitempty"`

	Err *RevisionError `json:"-"`
}

// Runner processes revisions with fixed options.
type Runner struct {
	opts       Options
	provider   Provider
	aggregator *changeset.Aggregator
}

// New returns a runner reading changes from provider.
func New(provider Provider, opts Options) *Runner {
	opts = opts.withDefaults()
	classifier := metadata.NewClassifier(opts.SourceRoot, opts.Registry)
	return &Runner{
		opts:       opts,
		provider:   provider,
		aggregator: changeset.NewAggregator(classifier, opts.Filters...),
	}
}

// Options returns the effective options.
func (r *Runner) Options() Options { return r.opts }

// Run processes revisions in order. A failed revision does not stop the
// ones after it; only context cancellation does.
func (r *Runner) Run(ctx context.Context, revisions []string) ([]*Result, error) {
	results := make([]*Result, 0, len(revisions))
	for _, rev := range revisions {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.RunRevision(ctx, rev))
	}
	return results, nil
}

// RunRevision processes a single revision. Failures are reported on the
// result, never as a panic or a partially written pair without a status.
func (r *Runner) RunRevision(ctx context.Context, revision string) *Result {
	res := &Result{Revision: revision}

	cmp, err := r.provider.Changes(ctx, revision)
	if err != nil {
		return r.fail(res, StageChanges, err)
	}
	res.Commit, res.Parent = cmp.Commit, cmp.Parent

	logger.Debug(fmt.Sprintf("Processing %d change records for %s", len(cmp.Records), revision),
		logger.String("commit", cmp.ShortCommit()), logger.String("parent", cmp.ShortParent()))
	if logger.Enabled(logger.DebugLevel) {
		for _, rec := range cmp.Records {
			logger.Debug(rec.String(), logger.String("status", rec.Kind.Letter()))
		}
	}

	agg := r.aggregator.Aggregate(cmp.Records)
	res.Stats, res.Skips = agg.Stats, agg.Skips
	res.Present, res.Absent = agg.Present.Map(), agg.Absent.Map()
	for _, s := range agg.Skips {
		logger.Debug("Skipped path", logger.String("path", s.Path), logger.String("reason", s.Reason))
	}

	if agg.Present.Empty() && agg.Absent.Empty() {
		res.Status = StatusNoChanges
		logger.Info(fmt.Sprintf("No metadata changes in %s", revision))
		return res
	}

	wopts := manifest.WriteOptions{Version: r.opts.Version, DryRun: r.opts.DryRun}
	if res.Deploy, err = r.write(r.opts.DeployPath, agg.Present, wopts); err != nil {
		return r.fail(res, StageWrite, err)
	}
	if res.Destructive, err = r.write(r.opts.DestructivePath, agg.Absent, wopts); err != nil {
		return r.fail(res, StageWrite, err)
	}
	res.Recovered = res.Deploy.Recovered || res.Destructive.Recovered

	res.Status = StatusWritten
	if r.opts.DryRun {
		res.Status = StatusPlanned
	}
	return res
}

func (r *Runner) write(path string, set *changeset.Set, opts manifest.WriteOptions) (*manifest.WriteResult, error) {
	wr, err := manifest.Write(path, set, opts)
	if err != nil {
		return nil, err
	}
	if wr.Recovered {
		logger.Warn("Replaced malformed manifest", logger.String("path", path), logger.Err(wr.Malformed))
	}
	switch {
	case wr.Skipped:
		logger.Debug("No components for manifest", logger.String("path", path))
	case wr.Written:
		logger.Info(fmt.Sprintf("Wrote %s", path), logger.Int("added", wr.Added), logger.Strings("types", set.Types()))
	case opts.DryRun && wr.Changed:
		logger.Info(fmt.Sprintf("Would write %s", path), logger.Int("added", wr.Added))
	default:
		logger.Debug("Manifest already up to date", logger.String("path", path))
	}
	return wr, nil
}

func (r *Runner) fail(res *Result, stage Stage, err error) *Result {
	res.Status = StatusFailed
	res.Err = &RevisionError{Revision: res.Revision, Stage: stage, Err: err}
	res.Error = err.Error()
	logger.Error("Revision failed", logger.String("revision", res.Revision), logger.String("stage", string(stage)), logger.Err(err))
	return res
}
