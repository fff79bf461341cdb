package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configFlags maps command-line flags onto configuration keys.
var configFlags = map[string]string{
	"repo":        "repo.path",
	"source-root": "source.root",
	"api-version": "package.version",
	"package":     "package.deploy",
	"destructive": "package.destructive",
	"include":     "filters.include",
	"exclude":     "filters.exclude",
}

// bindFlags binds every flag of fs that has a config key. Only flags the user
// set override file and env values; defaults stay with viper.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := configFlags[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

// addConfigFlags registers the flags shared by commands that load configuration.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("repo", ".", "Repository path")
	fs.String("source-root", "", "Project-root marker (default force-app/main/default)")
	fs.String("config", "", "Config file (default .sfdelta.yaml in the repository)")
}
