package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/sfdelta/pkg/metadata"
	"github.com/spf13/cobra"
)

type classification struct {
	Path   string `json:"path"`
	Type   string `json:"type,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func newClassifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify PATH...",
		Short: "Show the component each path belongs to",
		Long: `Classify prints one line per path: the metadata type and component name
separated by a tab, or "-" and the reason the path does not map to a component.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().Bool("json", false, "Output classifications as JSON")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	classifier := metadata.NewClassifier(cfg.Source.Root, cfg.Registry())

	out := make([]classification, 0, len(args))
	for _, p := range args {
		comp, miss := classifier.Explain(p)
		c := classification{Path: p}
		if miss == metadata.Matched {
			c.Type, c.Name = comp.Type, comp.Name
		} else {
			c.Reason = miss.String()
		}
		out = append(out, c)
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	for _, c := range out {
		if c.Reason != "" {
			_, _ = fmt.Fprintf(w, "-\t%s\n", c.Reason)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", c.Type, c.Name)
	}
	return nil
}
