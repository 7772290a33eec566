package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"
)

const previewWidth = 80

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintError prints a single "Error:" line, red on a terminal.
func PrintError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	if !IsTerminal(w) {
		red.DisableColor()
	}
	fmt.Fprintf(w, "%s %v\n", red.Sprint("Error:"), err)
}

// WritePreview writes a changelog entry. Terminals get it rendered as
// markdown; anything else gets the raw text.
func WritePreview(w io.Writer, entry string) error {
	if !IsTerminal(w) {
		_, err := io.WriteString(w, entry)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(entry)
	if err != nil {
		return fmt.Errorf("rendering entry: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// WriteDiff writes a line diff of a file change with +/- markers, colored
// on a terminal. Unchanged lines are omitted.
func WriteDiff(w io.Writer, name, before, after string) error {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	bold := color.New(color.Bold)
	if !IsTerminal(w) {
		green.DisableColor()
		red.DisableColor()
		bold.DisableColor()
	}

	if _, err := bold.Fprintf(w, "--- %s\n+++ %s\n", name, name); err != nil {
		return err
	}
	for _, d := range diffs {
		var prefix string
		var c *color.Color
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, c = "+", green
		case diffmatchpatch.DiffDelete:
			prefix, c = "-", red
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if _, err := c.Fprint(w, prefix+strings.TrimSuffix(line, "\n")+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
