// Package config assembles sfdelta settings from defaults, a YAML config
// file, SFDELTA_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fulmenhq/sfdelta/pkg/metadata"
	"github.com/fulmenhq/sfdelta/pkg/safeio"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (SFDELTA_PACKAGE_VERSION).
const EnvPrefix = "SFDELTA"

// ProjectFiles are looked up, in order, in the repository root.
var ProjectFiles = []string{".sfdelta.yaml", ".sfdelta.yml", "sfdelta.yaml", "sfdelta.yml"}

// Config holds all configuration for sfdelta
type Config struct {
	Repo     RepoConfig     `mapstructure:"repo" json:"repo"`
	Source   SourceConfig   `mapstructure:"source" json:"source"`
	Package  PackageConfig  `mapstructure:"package" json:"package"`
	Filters  FiltersConfig  `mapstructure:"filters" json:"filters"`
	Metadata MetadataConfig `mapstructure:"metadata" json:"metadata"`

	// File is the config file that was read; empty when none was found.
	File string `mapstructure:"-" json:"file,omitempty"`
}

// RepoConfig locates the repository and the revisions to process.
type RepoConfig struct {
	Path      string   `mapstructure:"path" json:"path"`
	Revisions []string `mapstructure:"revisions" json:"revisions"`
}

// SourceConfig holds the project-root marker.
type SourceConfig struct {
	Root string `mapstructure:"root" json:"root"`
}

// PackageConfig holds manifest output settings.
type PackageConfig struct {
	Version     string `mapstructure:"version" json:"version"`
	Deploy      string `mapstructure:"deploy" json:"deploy"`
	Destructive string `mapstructure:"destructive" json:"destructive"`
}

// FiltersConfig holds path filters applied before classification.
type FiltersConfig struct {
	Include     []string `mapstructure:"include" json:"include"`
	Exclude     []string `mapstructure:"exclude" json:"exclude"`
	ForceIgnore bool     `mapstructure:"forceignore" json:"forceignore"`
}

// MetadataConfig extends the built-in folder registries.
type MetadataConfig struct {
	Types       map[string]string `mapstructure:"types" json:"types"`
	ObjectTypes map[string]string `mapstructure:"object_types" json:"object_types"`
}

var defaultConfig = Config{
	Repo:    RepoConfig{Path: ".", Revisions: []string{}},
	Source:  SourceConfig{Root: metadata.DefaultRoot},
	Package: PackageConfig{Version: "64.0", Deploy: "package.xml", Destructive: "deletePackage.xml"},
	Filters: FiltersConfig{Include: []string{}, Exclude: []string{}, ForceIgnore: true},
	Metadata: MetadataConfig{
		Types:       map[string]string{},
		ObjectTypes: map[string]string{},
	},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	c.Repo.Revisions = []string{}
	c.Filters.Include = []string{}
	c.Filters.Exclude = []string{}
	c.Metadata.Types = map[string]string{}
	c.Metadata.ObjectTypes = map[string]string{}
	return &c
}

// NewViper returns a viper instance carrying defaults and environment binding.
// Callers bind flags onto it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("repo.path", defaultConfig.Repo.Path)
	v.SetDefault("repo.revisions", defaultConfig.Repo.Revisions)
	v.SetDefault("source.root", defaultConfig.Source.Root)
	v.SetDefault("package.version", defaultConfig.Package.Version)
	v.SetDefault("package.deploy", defaultConfig.Package.Deploy)
	v.SetDefault("package.destructive", defaultConfig.Package.Destructive)
	v.SetDefault("filters.include", defaultConfig.Filters.Include)
	v.SetDefault("filters.exclude", defaultConfig.Filters.Exclude)
	v.SetDefault("filters.forceignore", defaultConfig.Filters.ForceIgnore)
	v.SetDefault("metadata.types", defaultConfig.Metadata.Types)
	v.SetDefault("metadata.object_types", defaultConfig.Metadata.ObjectTypes)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (explicit, or discovered in the repository root),
// validates it and merges it under v's flag and env values.
func Load(v *viper.Viper, explicitFile string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	path, data, err := readConfigFile(explicitFile, v.GetString("repo.path"))
	if err != nil {
		return nil, err
	}

	// MergeConfigMap lowercases map keys in place and folder names are
	// case-sensitive, so the registry extensions are taken out first.
	extensions := MetadataConfig{Types: map[string]string{}, ObjectTypes: map[string]string{}}
	if path != "" {
		doc, err := decodeDocument(path, data)
		if err != nil {
			return nil, err
		}
		extensions = metadataFromDocument(doc)
		if err := v.MergeConfigMap(doc); err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}
	cfg.File = path
	cfg.Metadata = extensions

	return &cfg, nil
}

func readConfigFile(explicit, repoPath string) (string, []byte, error) {
	if explicit != "" {
		clean, err := safeio.CleanUserPath(explicit)
		if err != nil {
			return "", nil, fmt.Errorf("invalid config path %q: %w", explicit, err)
		}
		// #nosec G304 -- operator-supplied config path, traversal rejected above
		data, err := os.ReadFile(clean)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read config %s: %w", clean, err)
		}
		return clean, data, nil
	}

	if repoPath == "" {
		repoPath = "."
	}
	for _, name := range ProjectFiles {
		candidate := filepath.Join(repoPath, name)
		data, err := safeio.ReadFileContained(repoPath, candidate)
		if err == nil {
			return candidate, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("failed to read config %s: %w", candidate, err)
		}
	}
	return "", nil, nil
}

func metadataFromDocument(doc map[string]interface{}) MetadataConfig {
	mc := MetadataConfig{Types: map[string]string{}, ObjectTypes: map[string]string{}}
	section, ok := doc["metadata"].(map[string]interface{})
	if !ok {
		return mc
	}
	copyStrings(mc.Types, section["types"])
	copyStrings(mc.ObjectTypes, section["object_types"])
	return mc
}

func copyStrings(dst map[string]string, src interface{}) {
	m, ok := src.(map[string]interface{})
	if !ok {
		return
	}
	for k, v := range m {
		if s, ok := v.(string); ok {
			dst[k] = s
		}
	}
}

var versionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// Validate checks settings that flags and env can still get wrong after the
// file passed schema validation.
func (c *Config) Validate() error {
	var problems []string
	if strings.Trim(c.Source.Root, "/ ") == "" {
		problems = append(problems, "source.root must not be empty")
	}
	switch {
	case strings.TrimSpace(c.Package.Version) == "":
		problems = append(problems, "package.version must not be empty")
	case !versionPattern.MatchString(c.Package.Version):
		problems = append(problems, fmt.Sprintf("package.version %q is not of the form NN.N", c.Package.Version))
	}
	if strings.TrimSpace(c.Package.Deploy) == "" {
		problems = append(problems, "package.deploy must not be empty")
	}
	if strings.TrimSpace(c.Package.Destructive) == "" {
		problems = append(problems, "package.destructive must not be empty")
	}
	if c.Package.Deploy != "" && filepath.Clean(c.Package.Deploy) == filepath.Clean(c.Package.Destructive) {
		problems = append(problems, "package.deploy and package.destructive must be different files")
	}
	if len(problems) > 0 {
		return &ValidationError{Source: "settings", Problems: problems}
	}
	return nil
}

// DeployPath returns the deploy manifest path. Relative paths are taken from
// the repository root.
func (c *Config) DeployPath() string { return c.resolve(c.Package.Deploy) }

// DestructivePath returns the destructive manifest path, resolved like DeployPath.
func (c *Config) DestructivePath() string { return c.resolve(c.Package.Destructive) }

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Repo.Path, p)
}

// Registry returns the default registry extended with the configured types.
func (c *Config) Registry() metadata.Registry {
	reg := metadata.DefaultRegistry()
	if len(c.Metadata.Types) == 0 && len(c.Metadata.ObjectTypes) == 0 {
		return reg
	}
	return reg.Extend(c.Metadata.Types, c.Metadata.ObjectTypes)
}
