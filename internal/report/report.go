// Package report renders pipeline results for the terminal, for markdown
// summaries (CI job pages, pull request comments) and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/fulmenhq/sfdelta/internal/pipeline"
	"github.com/fulmenhq/sfdelta/pkg/ascii"
	"github.com/fulmenhq/sfdelta/pkg/manifest"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON}

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want text, markdown or json)", s)
	}
}

// Render writes results to w in the given format.
func Render(w io.Writer, format Format, results []*pipeline.Result) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Text(results))
		return err
	case FormatMarkdown:
		out, err := Markdown(results)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonReport{Results: results, Summary: Summarize(results)})
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Summary totals a run.
type Summary struct {
	Revisions int `json:"revisions"`
	Written   int `json:"written"`
	Planned   int `json:"planned"`
	NoChanges int `json:"no_changes"`
	Failed    int `json:"failed"`
	Recovered int `json:"recovered"`
	Present   int `json:"present_components"`
	Absent    int `json:"absent_components"`
}

type jsonReport struct {
	Summary Summary            `json:"summary"`
	Results []*pipeline.Result `json:"results"`
}

// Summarize counts outcomes across results.
func Summarize(results []*pipeline.Result) Summary {
	var s Summary
	for _, r := range results {
		s.Revisions++
		switch r.Status {
		case pipeline.StatusWritten:
			s.Written++
		case pipeline.StatusPlanned:
			s.Planned++
		case pipeline.StatusNoChanges:
			s.NoChanges++
		case pipeline.StatusFailed:
			s.Failed++
		}
		if r.Recovered {
			s.Recovered++
		}
		s.Present += countMembers(r.Present)
		s.Absent += countMembers(r.Absent)
	}
	return s
}

// Text renders one table row per revision and component type, followed by
// dry-run diffs and failures.
func Text(results []*pipeline.Result) string {
	var sb strings.Builder
	var rows [][]string
	for _, r := range results {
		rev := displayRevision(r)
		types := componentRows(r)
		if len(types) == 0 {
			rows = append(rows, []string{rev, string(r.Status), "-", "-", ""})
			continue
		}
		for _, t := range types {
			rows = append(rows, []string{rev, string(r.Status), t.Change, t.Type, ascii.Truncate(strings.Join(t.Members, ", "), 60)})
		}
	}
	sb.WriteString(ascii.Table([]string{"REVISION", "STATUS", "CHANGE", "TYPE", "MEMBERS"}, rows))

	for _, r := range results {
		for _, wr := range []*manifest.WriteResult{r.Deploy, r.Destructive} {
			if wr != nil && wr.Diff != "" {
				sb.WriteString("\n")
				sb.WriteString(wr.Diff)
			}
		}
	}

	s := Summarize(results)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d revision(s): %d written, %d planned, %d without changes, %d failed",
		s.Revisions, s.Written, s.Planned, s.NoChanges, s.Failed))
	if s.Recovered > 0 {
		sb.WriteString(fmt.Sprintf(", %d recovered from a malformed manifest", s.Recovered))
	}
	sb.WriteString("\n")
	for _, r := range results {
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("error: %s: %s\n", r.Revision, r.Error))
		}
	}
	return sb.String()
}

const markdownTemplate = `# sfdelta report

| Revision | Status | Deploy | Destructive |
|---|---|---|---|
{{#each results}}| {{revision}} | {{status}} | {{present}} | {{absent}} |
{{/each}}
{{#each results}}{{#if hasComponents}}
## {{revision}}
{{#if commit}}
Commit ` + "`{{commit}}`" + ` (parent ` + "`{{parent}}`" + `)
{{/if}}{{#each types}}
- **{{change}}** {{type}}: {{{members}}}{{/each}}
{{#if recovered}}
> A malformed manifest was replaced.
{{/if}}{{/if}}{{#if error}}
## {{revision}}

Error: {{{error}}}
{{/if}}{{/each}}
{{#if (gt summary.failed 0)}}**{{summary.failed}} revision(s) failed.**
{{/if}}`

// Markdown renders results with a Handlebars template.
func Markdown(results []*pipeline.Result) (string, error) {
	rows := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		types := componentRows(r)
		typeMaps := make([]map[string]interface{}, 0, len(types))
		for _, t := range types {
			typeMaps = append(typeMaps, map[string]interface{}{
				"change":  t.Change,
				"type":    t.Type,
				"members": strings.Join(t.Members, ", "),
			})
		}
		rows = append(rows, map[string]interface{}{
			"revision":      displayRevision(r),
			"status":        string(r.Status),
			"commit":        shortHash(r.Commit),
			"parent":        shortHash(r.Parent),
			"present":       countMembers(r.Present),
			"absent":        countMembers(r.Absent),
			"hasComponents": len(types) > 0,
			"types":         typeMaps,
			"recovered":     r.Recovered,
			"error":         r.Error,
		})
	}
	s := Summarize(results)
	ctx := map[string]interface{}{
		"results": rows,
		"summary": map[string]interface{}{"failed": s.Failed, "revisions": s.Revisions},
	}

	tpl, err := raymond.Parse(markdownTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}
	tpl.RegisterHelper("gt", func(a, b interface{}) bool {
		aVal, _ := strconv.Atoi(fmt.Sprintf("%v", a))
		bVal, _ := strconv.Atoi(fmt.Sprintf("%v", b))
		return aVal > bVal
	})
	out, err := tpl.Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}

type componentRow struct {
	Change  string
	Type    string
	Members []string
}

func componentRows(r *pipeline.Result) []componentRow {
	var rows []componentRow
	add := func(change string, m map[string][]string) {
		types := make([]string, 0, len(m))
		for t := range m {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			rows = append(rows, componentRow{Change: change, Type: t, Members: m[t]})
		}
	}
	add("deploy", r.Present)
	add("destroy", r.Absent)
	return rows
}

func countMembers(m map[string][]string) int {
	n := 0
	for _, names := range m {
		n += len(names)
	}
	return n
}

func displayRevision(r *pipeline.Result) string {
	if r.Commit != "" && r.Revision != r.Commit && !strings.HasPrefix(r.Commit, r.Revision) {
		return fmt.Sprintf("%s (%s)", r.Revision, shortHash(r.Commit))
	}
	return r.Revision
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
