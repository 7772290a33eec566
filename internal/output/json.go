// Package output renders run results for the terminal and for machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Result is what a run reports.
type Result struct {
	Version   string `json:"version"`
	Reference string `json:"reference"`
	Entry     string `json:"entry"`
	DryRun    bool   `json:"dryRun"`
}

// Values accepted by --output.
const (
	FormatText = ""
	FormatJSON = "json"
	FormatEnv  = "env"
)

// WriteMachine writes r when format is a machine format and reports whether
// it did. Text output is left to the caller.
func WriteMachine(w io.Writer, format string, r Result) (bool, error) {
	switch format {
	case FormatJSON:
		return true, WriteJSON(w, r)
	case FormatEnv:
		return true, WriteAll(w, Variables(r))
	case FormatText, "text":
		return false, nil
	}
	return false, fmt.Errorf("unknown output format %q", format)
}

// WriteJSON writes the result as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result to JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("writing JSON output: %w", err)
	}
	return nil
}
