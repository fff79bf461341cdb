package manifest

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders the change from before to after as a unified diff.
// It returns "" when the documents are identical.
func UnifiedDiff(path string, before, after []byte) string {
	from := "a/" + path
	var a []string
	if len(before) == 0 {
		from = "/dev/null"
	} else {
		a = difflib.SplitLines(string(before))
	}
	u := difflib.UnifiedDiff{
		A:        a,
		B:        difflib.SplitLines(string(after)),
		FromFile: from,
		ToFile:   "b/" + path,
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}
