package gitctx

import (
	"fmt"
	"io"
	"strings"

	"github.com/fulmenhq/sfdelta/pkg/changeset"
	godiff "github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// PatchChanges reads a multi-file git patch and derives one record per file.
func PatchChanges(r io.Reader) ([]changeset.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	fileDiffs, err := godiff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}

	records := make([]changeset.Record, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		rec, ok := patchRecord(fd)
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func patchRecord(fd *godiff.FileDiff) (changeset.Record, bool) {
	var renameFrom, renameTo, copyTo string
	var created, deleted bool
	for _, h := range fd.Extended {
		switch {
		case strings.HasPrefix(h, "rename from "):
			renameFrom = strings.TrimPrefix(h, "rename from ")
		case strings.HasPrefix(h, "rename to "):
			renameTo = strings.TrimPrefix(h, "rename to ")
		case strings.HasPrefix(h, "copy to "):
			copyTo = strings.TrimPrefix(h, "copy to ")
		case strings.HasPrefix(h, "new file mode"):
			created = true
		case strings.HasPrefix(h, "deleted file mode"):
			deleted = true
		}
	}

	oldPath := cleanName(fd.OrigName, "a/")
	newPath := cleanName(fd.NewName, "b/")

	switch {
	case renameFrom != "" && renameTo != "":
		return changeset.Record{OldPath: renameFrom, NewPath: renameTo, Kind: changeset.Renamed}, true
	case copyTo != "":
		return changeset.Record{NewPath: copyTo, Kind: changeset.Added}, true
	case created || (fd.OrigName == devNull && newPath != ""):
		if newPath == "" {
			newPath = oldPath
		}
		return changeset.Record{NewPath: newPath, Kind: changeset.Added}, true
	case deleted || (fd.NewName == devNull && oldPath != ""):
		if oldPath == "" {
			oldPath = newPath
		}
		return changeset.Record{OldPath: oldPath, Kind: changeset.Deleted}, true
	case newPath != "":
		if oldPath == "" {
			oldPath = newPath
		}
		return changeset.Record{OldPath: oldPath, NewPath: newPath, Kind: changeset.Modified}, true
	}
	return changeset.Record{}, false
}

func cleanName(name, prefix string) string {
	name = strings.TrimSpace(name)
	if name == devNull {
		return ""
	}
	return strings.TrimPrefix(name, prefix)
}
