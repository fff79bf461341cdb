package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/sfdelta/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	v := NewViper()
	v.Set("repo.path", dir)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, metadata.DefaultRoot, cfg.Source.Root)
	assert.Equal(t, "64.0", cfg.Package.Version)
	assert.Equal(t, "package.xml", cfg.Package.Deploy)
	assert.Equal(t, "deletePackage.xml", cfg.Package.Destructive)
	assert.True(t, cfg.Filters.ForceIgnore)
	assert.Empty(t, cfg.Filters.Include)
	assert.Empty(t, cfg.Metadata.Types)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DiscoversProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sfdelta.yaml", `
source:
  root: src/main
package:
  version: 61.0
  destructive: destructiveChanges.xml
filters:
  exclude:
    - "**/*.md"
  forceignore: false
metadata:
  types:
    customThings: CustomThing
  object_types:
    sharingReasons: SharingReason
repo:
  revisions: [HEAD, HEAD~1]
`)
	v := NewViper()
	v.Set("repo.path", dir)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".sfdelta.yaml"), cfg.File)
	assert.Equal(t, "src/main", cfg.Source.Root)
	assert.Equal(t, "61.0", cfg.Package.Version)
	assert.Equal(t, "package.xml", cfg.Package.Deploy)
	assert.Equal(t, "destructiveChanges.xml", cfg.Package.Destructive)
	assert.Equal(t, []string{"**/*.md"}, cfg.Filters.Exclude)
	assert.False(t, cfg.Filters.ForceIgnore)
	assert.Equal(t, []string{"HEAD", "HEAD~1"}, cfg.Repo.Revisions)
	assert.Equal(t, map[string]string{"customThings": "CustomThing"}, cfg.Metadata.Types)
	assert.Equal(t, map[string]string{"sharingReasons": "SharingReason"}, cfg.Metadata.ObjectTypes)

	typ, rule, ok := cfg.Registry().Lookup("customThings")
	require.True(t, ok)
	assert.Equal(t, "CustomThing", typ)
	assert.Equal(t, metadata.RuleDefault, rule)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", "package:\n  version: \"62.0\"\n")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "62.0", cfg.Package.Version)
	assert.Equal(t, filepath.ToSlash(filepath.Clean(path)), cfg.File)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ExplicitFileTraversal(t *testing.T) {
	_, err := Load(NewViper(), "../outside.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sfdelta.yaml", "package:\n  version: \"60.0\"\n")
	t.Setenv("SFDELTA_PACKAGE_VERSION", "63.0")

	v := NewViper()
	v.Set("repo.path", dir)
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "63.0", cfg.Package.Version)
}

func TestLoad_ExplicitSetOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sfdelta.yaml", "package:\n  deploy: from-file.xml\n")

	v := NewViper()
	v.Set("repo.path", dir)
	v.Set("package.deploy", "from-flag.xml")
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "from-flag.xml", cfg.Package.Deploy)
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown top-level key", "unknown: true\n"},
		{"unknown nested key", "package:\n  flavour: vanilla\n"},
		{"wrong type", "filters:\n  forceignore: \"yes\"\n"},
		{"bad version", "package:\n  version: \"v64\"\n"},
		{"empty root", "source:\n  root: \"\"\n"},
		{"non-string type name", "metadata:\n  types:\n    things: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ".sfdelta.yaml", tt.content)
			v := NewViper()
			v.Set("repo.path", dir)

			_, err := Load(v, "")
			require.Error(t, err)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sfdelta.yaml", "package: [unclosed\n")
	v := NewViper()
	v.Set("repo.path", dir)

	_, err := Load(v, "")
	require.Error(t, err)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".sfdelta.yaml", "")
	v := NewViper()
	v.Set("repo.path", dir)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "64.0", cfg.Package.Version)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty root", func(c *Config) { c.Source.Root = "/" }, false},
		{"empty version", func(c *Config) { c.Package.Version = " " }, false},
		{"malformed version", func(c *Config) { c.Package.Version = "64" }, false},
		{"empty deploy", func(c *Config) { c.Package.Deploy = "" }, false},
		{"same outputs", func(c *Config) { c.Package.Destructive = "./package.xml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestOutputPaths(t *testing.T) {
	cfg := Default()
	cfg.Repo.Path = "/work/repo"
	assert.Equal(t, filepath.Join("/work/repo", "package.xml"), cfg.DeployPath())

	abs := filepath.Join(t.TempDir(), "out.xml")
	cfg.Package.Destructive = abs
	assert.Equal(t, abs, cfg.DestructivePath())
}

func TestDefaultIsACopy(t *testing.T) {
	a := Default()
	a.Metadata.Types["x"] = "X"
	a.Filters.Include = append(a.Filters.Include, "**")
	b := Default()
	assert.Empty(t, b.Metadata.Types)
	assert.Empty(t, b.Filters.Include)
}
