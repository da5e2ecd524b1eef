package cli

import (
	"fmt"
	"strings"

	"github.com/mwantia/tagsync/pkg/db/store"
)

// maxErrorPreview caps how many collected errors are printed verbatim; the
// remainder is summarized as a count.
const maxErrorPreview = 5

// PrintErrors renders an operation's collected error list. Lock patterns get
// the remediation hint instead of the generic message.
func PrintErrors(errs []string) {
	if len(errs) == 0 {
		return
	}

	fmt.Printf("%d error(s) occurred:\n", len(errs))
	for i, msg := range errs {
		if i >= maxErrorPreview {
			fmt.Printf("  ... and %d more\n", len(errs)-maxErrorPreview)
			break
		}
		fmt.Printf("  - %s\n", msg)
		if looksLocked(msg) && !strings.Contains(msg, store.LockedHint) {
			fmt.Printf("    hint: %s\n", store.LockedHint)
		}
	}
}

func looksLocked(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "locked") || strings.Contains(lower, "busy")
}
