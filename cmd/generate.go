/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fulmenhq/sfdelta/internal/pipeline"
	"github.com/fulmenhq/sfdelta/internal/report"
	"github.com/fulmenhq/sfdelta/pkg/config"
	"github.com/fulmenhq/sfdelta/pkg/exitcode"
	"github.com/fulmenhq/sfdelta/pkg/logger"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [REVISION...]",
		Short: "Merge changed components into the deploy and destructive manifests",
		Long: `Generate compares each revision with its single parent, classifies every
changed path and merges the resulting components into the deploy manifest
(additions, modifications, rename targets) and the destructive manifest
(deletions, rename sources). Revisions are processed in the order given and
accumulate into the same files.

Without arguments the revisions come from repo.revisions in the config file,
or HEAD when none are configured. With --patch or --name-status the changes
are read from a saved git patch or "git diff --name-status" listing instead
of repository history.`,
		RunE: runGenerate,
	}

	f := cmd.Flags()
	addConfigFlags(f)
	f.String("api-version", "", "API version for newly created manifests (default 64.0)")
	f.String("package", "", "Deploy manifest path, relative to the repository (default package.xml)")
	f.String("destructive", "", "Destructive manifest path, relative to the repository (default deletePackage.xml)")
	f.StringSlice("include", nil, "Only process paths matching these globs")
	f.StringSlice("exclude", nil, "Skip paths matching these globs")
	f.String("patch", "", "Read changes from a git patch file instead of history")
	f.String("name-status", "", "Read changes from saved git diff --name-status output")
	f.Bool("dry-run", false, "Show the manifest diff without writing files")
	f.String("format", string(report.FormatText), "Report format (text|markdown|json)")
	f.Bool("strict", false, "Exit non-zero when a malformed manifest had to be replaced")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return exitcode.Wrap(exitcode.UnsupportedFormat, err)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	strict, _ := cmd.Flags().GetBool("strict")

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	opts.DryRun = dryRun

	var provider pipeline.Provider
	revisions := args
	inputPath, newProvider, err := fileInput(cmd)
	if err != nil {
		return err
	}
	if inputPath != "" {
		if len(args) > 0 {
			return exitcode.Wrap(exitcode.ValidationError, errors.New("--patch and --name-status cannot be combined with revision arguments"))
		}
		p, err := newProvider(inputPath)
		if err != nil {
			return exitcode.Wrap(exitcode.ValidationError, err)
		}
		provider = p
		revisions = []string{filepath.Base(inputPath)}
	} else {
		if len(revisions) == 0 {
			revisions = cfg.Repo.Revisions
		}
		if len(revisions) == 0 {
			revisions = []string{"HEAD"}
		}
		gp, err := pipeline.NewGitProvider(cfg.Repo.Path)
		if err != nil {
			return exitcode.Wrap(exitcode.GitError, err)
		}
		provider = gp
	}

	logger.Debug("Generating manifests",
		logger.Strings("revisions", revisions),
		logger.String("deploy", opts.DeployPath),
		logger.String("destructive", opts.DestructivePath),
		logger.String("source_root", opts.SourceRoot))

	results, runErr := pipeline.New(provider, opts).Run(cmd.Context(), revisions)
	if err := report.Render(cmd.OutOrStdout(), format, results); err != nil {
		return exitcode.Wrap(exitcode.GeneralError, fmt.Errorf("failed to render report: %w", err))
	}
	if runErr != nil {
		return exitcode.Wrap(exitcode.GeneralError, runErr)
	}
	return resultError(results, strict)
}

// fileInput returns the change file named by --patch or --name-status and the
// provider constructor for it. An empty path means revisions come from history.
func fileInput(cmd *cobra.Command) (string, func(string) (pipeline.StaticProvider, error), error) {
	patchPath, _ := cmd.Flags().GetString("patch")
	nameStatusPath, _ := cmd.Flags().GetString("name-status")
	switch {
	case patchPath != "" && nameStatusPath != "":
		return "", nil, exitcode.Wrap(exitcode.ValidationError, errors.New("--patch and --name-status are mutually exclusive"))
	case patchPath != "":
		return patchPath, pipeline.NewPatchProvider, nil
	case nameStatusPath != "":
		return nameStatusPath, pipeline.NewNameStatusProvider, nil
	}
	return "", nil, nil
}

// resultError maps the first failed revision to an exit code. Recovered
// manifests only fail the run in strict mode.
func resultError(results []*pipeline.Result, strict bool) error {
	recovered := 0
	for _, r := range results {
		if r.Err != nil {
			code := exitcode.GitError
			if r.Err.Stage == pipeline.StageWrite {
				code = exitcode.FileSystemError
			}
			return exitcode.Wrap(code, r.Err)
		}
		if r.Recovered {
			recovered++
		}
	}
	if strict && recovered > 0 {
		return exitcode.Wrap(exitcode.PartialSuccess, fmt.Errorf("%d revision(s) replaced a malformed manifest", recovered))
	}
	return nil
}

// loadConfig assembles configuration for cmd from flags, env and the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, exitcode.Wrap(exitcode.GeneralError, err)
	}
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	if cfg.File != "" {
		logger.Debug("Loaded configuration", logger.String("file", cfg.File))
	}
	return cfg, nil
}
