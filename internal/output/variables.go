package output

import (
	"fmt"
	"io"
	"slices"
	"strconv"
)

// Variables flattens a result into the names printed by --output env,
// suitable for appending to a CI environment file.
func Variables(r Result) map[string]string {
	return map[string]string{
		"VERSIONIST_VERSION":   r.Version,
		"VERSIONIST_REFERENCE": r.Reference,
		"VERSIONIST_DRY_RUN":   strconv.FormatBool(r.DryRun),
	}
}

// WriteAll writes NAME=value lines sorted by name.
func WriteAll(w io.Writer, variables map[string]string) error {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, variables[name]); err != nil {
			return err
		}
	}
	return nil
}
