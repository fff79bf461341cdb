package gitctx

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fulmenhq/sfdelta/pkg/changeset"
)

// NameStatusChanges parses `git diff --name-status` output. Copies count as
// additions of the destination path; type changes as modifications.
func NameStatusChanges(r io.Reader) ([]changeset.Record, error) {
	var records []changeset.Record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Format: <status>\t<path>[\t<path>]
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: expected tab separated status and path", lineNo)
		}
		status := parts[0]
		switch {
		case strings.HasPrefix(status, "C"):
			if len(parts) < 3 {
				return nil, fmt.Errorf("line %d: copy without destination", lineNo)
			}
			records = append(records, changeset.Record{NewPath: parts[2], Kind: changeset.Added})
			continue
		case status == "T":
			records = append(records, changeset.Record{OldPath: parts[1], NewPath: parts[1], Kind: changeset.Modified})
			continue
		}

		kind, err := changeset.ParseKind(status)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rec := changeset.Record{Kind: kind}
		switch kind {
		case changeset.Added:
			rec.NewPath = parts[1]
		case changeset.Deleted:
			rec.OldPath = parts[1]
		case changeset.Modified:
			rec.OldPath, rec.NewPath = parts[1], parts[1]
		case changeset.Renamed:
			if len(parts) < 3 {
				return nil, fmt.Errorf("line %d: rename without destination", lineNo)
			}
			rec.OldPath, rec.NewPath = parts[1], parts[2]
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
