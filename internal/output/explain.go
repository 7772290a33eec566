package output

import (
	"fmt"
	"io"
	"strings"
)

// Explanation records how a run arrived at its version.
type Explanation struct {
	DocumentedVersions []string
	// StartReference is empty when the whole history was read.
	StartReference string
	// RecoveredReference is set when the reference had to be re-tagged
	// from a release commit.
	RecoveredReference bool
	BaseVersion        string
	Commits            []ExplainedCommit
	Level              string
	Version            string
}

// ExplainedCommit is one commit's contribution to the increment.
type ExplainedCommit struct {
	Sha      string
	Subject  string
	Level    string
	Included bool
}

// WriteExplanation writes a structured explain output for a run to w: the
// documented versions, the history range, each commit's increment and the
// result.
func WriteExplanation(w io.Writer, e Explanation) error {
	// --- Documented ---
	documented := "(none)"
	if len(e.DocumentedVersions) > 0 {
		documented = strings.Join(e.DocumentedVersions, ", ")
	}
	fmt.Fprintf(w, "Documented versions: %s\n", documented)

	start := "(none, whole history)"
	if e.StartReference != "" {
		start = e.StartReference
		if e.RecoveredReference {
			start += " (tagged from release commit)"
		}
	}
	fmt.Fprintf(w, "Start reference:     %s\n", start)
	fmt.Fprintf(w, "Base version:        %s\n", e.BaseVersion)

	// --- Commits ---
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commits:")
	if len(e.Commits) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range e.Commits {
		level := c.Level
		if level == "" {
			level = "none"
		}
		note := ""
		if !c.Included {
			note = " (not in changelog)"
		}
		fmt.Fprintf(w, "  %-7s %s %s %s%s\n", shortSha(c.Sha), c.Subject, arrowPrefix, level, note)
	}

	// --- Result ---
	fmt.Fprintln(w)
	level := e.Level
	if level == "" {
		level = "none"
	}
	fmt.Fprintf(w, "Increment: %s\n", level)
	fmt.Fprintf(w, "Result: %s\n", e.Version)

	return nil
}

const arrowPrefix = "→"

func shortSha(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// FormatExplanation returns the explain output as a string.
func FormatExplanation(e Explanation) string {
	var sb strings.Builder
	_ = WriteExplanation(&sb, e)
	return sb.String()
}
