/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/sfdelta/internal/ops"
	"github.com/fulmenhq/sfdelta/pkg/buildinfo"
	"github.com/fulmenhq/sfdelta/pkg/exitcode"
	"github.com/fulmenhq/sfdelta/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sfdelta",
		Short: "Incremental deployment manifests from git history",
		Long: `sfdelta turns the files changed by a commit into Salesforce deployment
manifests. Changed source paths are classified into (type, name) components;
additions and modifications are merged into package.xml, deletions into
deletePackage.xml.

Examples:
   sfdelta generate                  # Manifests for HEAD
   sfdelta generate HEAD~2 HEAD~1    # Accumulate several commits
   sfdelta generate --dry-run        # Show the manifest diff only
   sfdelta classify force-app/main/default/lwc/card/card.js
   sfdelta types --objects`,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json-logs", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("sfdelta {{.Version}}\n")

	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if cmd.HasParent() {
			cmd.Println(cmd.UsageString())
			return
		}
		reg := ops.GetRegistry()
		cmd.Println(cmd.Long)
		for _, group := range ops.Groups {
			cmds := reg.GetCommandsByGroup(group)
			if len(cmds) == 0 {
				continue
			}
			cmd.Println()
			cmd.Println(group.Title() + ":")
			for _, c := range cmds {
				cmd.Printf("  %-12s %s\n", c.Name, c.Description)
			}
		}
		cmd.Println()
		cmd.Println("Flags:")
		cmd.Print(cmd.UsageString())
	})

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) []*cobra.Command {
	subs := []*cobra.Command{
		newGenerateCommand(),
		newClassifyCommand(),
		newTypesCommand(),
		newConfigCommand(),
		newVersionCommand(),
	}
	cmd.AddCommand(subs...)
	return subs
}

var commandGroups = map[string]ops.CommandGroup{
	"generate": ops.GroupManifest,
	"classify": ops.GroupInspect,
	"types":    ops.GroupInspect,
	"config":   ops.GroupSupport,
	"version":  ops.GroupSupport,
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func init() {
	for _, sub := range registerSubcommands(rootCmd) {
		group, ok := commandGroups[sub.Name()]
		if !ok {
			group = ops.GroupSupport
		}
		if err := ops.RegisterCommand(sub.Name(), group, sub, sub.Short); err != nil {
			panic(fmt.Sprintf("failed to register command %s: %v", sub.Name(), err))
		}
	}
}

// Execute runs the root command and exits with the code attached to the
// returned error. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitcode.Code(err)
		logger.Error("Command execution failed", logger.Err(err), logger.String("exit", exitcode.String(code)))
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(code)
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	noColor, _ := cmd.Flags().GetBool("no-color")
	dryRun := false
	if cmd.Flags().Lookup("dry-run") != nil {
		dryRun, _ = cmd.Flags().GetBool("dry-run")
	}

	// Unknown levels fall back to info
	logLevel, levelErr := logger.ParseLevel(logLevelStr)

	config := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor && os.Getenv("NO_COLOR") == "",
		JSON:      jsonLogs,
		Component: "sfdelta",
		DryRun:    dryRun,
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
	if levelErr != nil {
		logger.Warn("Using info log level", logger.Err(levelErr))
	}
}
