package patch

import (
	"strings"

	godiffpatch "github.com/sourcegraph/go-diff-patch"
)

// Diff renders a unified diff between the before and after content of one
// file. Used for tool-completion blocks and approval previews; the patch
// engine itself never needs it.
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}
	return strings.TrimRight(godiffpatch.GeneratePatch(path, before, after), "\n")
}
