package tools

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// performSemanticDiff marks removed text with "- ", added text with "+ "
// and unchanged text with two spaces, line by line.
func performSemanticDiff(source, target string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(source, target, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var result strings.Builder
	for _, diff := range diffs {
		text := strings.TrimSuffix(diff.Text, "\n")
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			result.WriteString("- " + strings.ReplaceAll(text, "\n", "\n- ") + "\n")
		case diffmatchpatch.DiffInsert:
			result.WriteString("+ " + strings.ReplaceAll(text, "\n", "\n+ ") + "\n")
		case diffmatchpatch.DiffEqual:
			result.WriteString("  " + strings.ReplaceAll(text, "\n", "\n  ") + "\n")
		}
	}

	return result.String()
}
