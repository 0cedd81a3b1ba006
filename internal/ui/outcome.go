package ui

import (
	"fmt"
	"strings"
)

// Status markers used in per-file output.
const (
	MarkOK      = "✓"
	MarkFailed  = "✗"
	MarkWarning = "⚠"
	MarkArrow   = "→"
)

// FileLine formats one per-file outcome. A nil err renders
// "✓ source → target"; otherwise "✗ source: err".
func FileLine(source, target string, err error) string {
	if err != nil {
		return fmt.Sprintf("  %s %s: %v", Error.Sprint(MarkFailed), Path.Sprint(source), err)
	}
	return fmt.Sprintf("  %s %s %s %s", Success.Sprint(MarkOK), Path.Sprint(source), Info.Sprint(MarkArrow), Path.Sprint(target))
}

// WarningLine formats a non-fatal note such as a skipped crypt list entry.
func WarningLine(msg string) string {
	return fmt.Sprintf("  %s %s", Warning.Sprint(MarkWarning), msg)
}

// Plural returns "1 file" or "n files".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Summary formats the closing line of an encrypt or decrypt run, e.g.
// "✓ Encrypted 3 files" or "✗ Decrypted 2 files, 1 failed".
func Summary(verb string, succeeded, failed int) string {
	var b strings.Builder
	if failed == 0 {
		b.WriteString(Success.Sprint(MarkOK))
	} else {
		b.WriteString(Error.Sprint(MarkFailed))
	}
	fmt.Fprintf(&b, " %s %s", verb, Plural(succeeded, "file"))
	if failed > 0 {
		fmt.Fprintf(&b, ", %s", Error.Sprintf("%d failed", failed))
	}
	return b.String()
}
