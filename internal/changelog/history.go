package changelog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
)

// ParseHistory decodes a YAML history document. An empty document is an
// empty history.
func ParseHistory(data []byte) ([]gitlog.Release, error) {
	var releases []gitlog.Release
	if err := yaml.Unmarshal(data, &releases); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return releases, nil
}

// ReadHistory reads and decodes a history file.
func ReadHistory(path string) ([]gitlog.Release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return ParseHistory(data)
}

// WriteHistory encodes releases into path, newest first as given.
func WriteHistory(path string, releases []gitlog.Release) error {
	if releases == nil {
		releases = []gitlog.Release{}
	}
	data, err := yaml.Marshal(releases)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}
