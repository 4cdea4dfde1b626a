package blockfile

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between two versions of a file. It returns
// an empty string when they are identical.
func Diff(before, after []byte, name string) string {
	if string(before) == string(after) {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: name,
		ToFile:   name + " (planned)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
