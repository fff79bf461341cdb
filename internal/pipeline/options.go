package pipeline

import (
	"fmt"

	"github.com/fulmenhq/sfdelta/pkg/changeset"
	"github.com/fulmenhq/sfdelta/pkg/config"
	"github.com/fulmenhq/sfdelta/pkg/ignore"
	"github.com/fulmenhq/sfdelta/pkg/manifest"
	"github.com/fulmenhq/sfdelta/pkg/metadata"
)

// Options carries everything a run needs; nothing is read from globals.
type Options struct {
	SourceRoot      string
	Registry        metadata.Registry
	Filters         []changeset.Filter
	DeployPath      string
	DestructivePath string
	Version         string
	DryRun          bool
}

// OptionsFromConfig builds run options from loaded configuration: the
// extended registry, the .forceignore matcher and include/exclude globs.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		SourceRoot:      cfg.Source.Root,
		Registry:        cfg.Registry(),
		DeployPath:      cfg.DeployPath(),
		DestructivePath: cfg.DestructivePath(),
		Version:         cfg.Package.Version,
	}

	if cfg.Filters.ForceIgnore {
		m, err := ignore.NewMatcher(cfg.Repo.Path)
		if err != nil {
			return Options{}, err
		}
		if m.Len() > 0 {
			opts.Filters = append(opts.Filters, m)
		}
	}

	globs, err := ignore.NewGlobs(cfg.Filters.Include, cfg.Filters.Exclude)
	if err != nil {
		return Options{}, fmt.Errorf("invalid filter: %w", err)
	}
	if !globs.Empty() {
		opts.Filters = append(opts.Filters, globs)
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	if o.SourceRoot == "" {
		o.SourceRoot = metadata.DefaultRoot
	}
	if o.Version == "" {
		o.Version = manifest.DefaultVersion
	}
	if o.Registry.Len() == 0 {
		o.Registry = metadata.DefaultRegistry()
	}
	return o
}
