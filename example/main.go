// Example program demonstrating the versionist library API.
//
// Run from the repo root:
//
//	go run ./example/
//
// It previews the next release of the current repository without writing
// anything, driving the increment from Go instead of a preset.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/MyCarrier-DevOps/go-versionist/pkg/versionist"
)

func main() {
	current, err := versionist.CurrentVersion(versionist.Options{Path: "."})
	if err != nil {
		log.Fatalf("reading current version failed: %v", err)
	}
	fmt.Printf("Current version: %s\n", current)

	result, err := versionist.Run(context.Background(), versionist.Options{
		Path:   ".",
		DryRun: true,
		Overrides: map[string]any{
			"getIncrementLevelFromCommit": subjectLevel,
		},
	})
	if errors.Is(err, versionist.ErrNoAnnotatedCommits) {
		fmt.Println("Nothing to release")
		return
	}
	if err != nil {
		log.Fatalf("dry run failed: %v", err)
	}

	printResult(result)
}

// subjectLevel bumps minor for "feat" subjects and patch for everything
// else.
func subjectLevel(c versionist.Commit) (versionist.Level, error) {
	if strings.HasPrefix(c.Subject.Text, "feat") {
		return versionist.LevelMinor, nil
	}
	return versionist.LevelPatch, nil
}

func printResult(result *versionist.Result) {
	fmt.Printf("=== Next release %s ===\n", result.Reference)
	fmt.Print(result.Entry)

	keys := make([]string, 0, len(result.Variables))
	for k := range result.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-22s = %s\n", k, result.Variables[k])
	}
}
