package cmd

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/sfdelta/pkg/config"
	"github.com/fulmenhq/sfdelta/pkg/exitcode"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate sfdelta configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for config files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.SchemaJSON())
			return err
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Validate loads the config file (--config, or the project file in the
repository), applies environment and flag overrides and checks the result.
Schema violations are listed one per line.`,
		Args: cobra.NoArgs,
		RunE: runConfigValidate,
	}
	addConfigFlags(validateCmd.Flags())

	cmd.AddCommand(schemaCmd, validateCmd)
	return cmd
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		var ve *config.ValidationError
		if errors.As(err, &ve) {
			_, _ = fmt.Fprintf(out, "%s: invalid\n", ve.Source)
			for _, p := range ve.Problems {
				_, _ = fmt.Fprintf(out, "  - %s\n", p)
			}
		}
		return err
	}

	source := cfg.File
	if source == "" {
		source = "defaults"
	}
	_, err = fmt.Fprintf(out, "%s: valid (deploy %s, destructive %s)\n", source, cfg.DeployPath(), cfg.DestructivePath())
	if err != nil {
		return exitcode.Wrap(exitcode.GeneralError, err)
	}
	return nil
}
