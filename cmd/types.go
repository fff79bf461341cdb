package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/sfdelta/pkg/ascii"
	"github.com/fulmenhq/sfdelta/pkg/metadata"
	"github.com/spf13/cobra"
)

func newTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the folder to metadata type registry",
		Long: `Types lists every folder name under the project root that maps to a
metadata type, with the naming rule applied to paths inside it. --objects lists
the sub-folders recognised inside an object folder instead. Entries added
through metadata.types and metadata.object_types in the config are included.`,
		Args: cobra.NoArgs,
		RunE: runTypes,
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().Bool("objects", false, "List object sub-folder entries")
	cmd.Flags().Bool("json", false, "Output entries as JSON")
	return cmd
}

func runTypes(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg := cfg.Registry()

	var entries []metadata.Entry
	if objects, _ := cmd.Flags().GetBool("objects"); objects {
		entries = reg.ObjectFolders()
	} else {
		entries = reg.Folders()
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Folder, e.Type, e.Rule.String()})
	}
	_, err = fmt.Fprint(w, ascii.Table([]string{"FOLDER", "TYPE", "RULE"}, rows))
	return err
}
