package gitlog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// bodySentinel opens every body block in LogPrettyFormat so that YAML keeps
// the block even when the real body is empty.
const bodySentinel = "XXX"

// LogPrettyFormat is a git log --pretty=format: string whose output
// ParseYAML understands.
const LogPrettyFormat = "- hash: %H%n  subject: >-%n    %s%n  body: |-%n    " + bodySentinel + "%n    %w(0,0,4)%b"

// ParseYAML structures git log output produced with LogPrettyFormat.
func ParseYAML(data []byte, opts Options) ([]Commit, error) {
	var raws []RawCommit
	if err := yaml.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing git log output: %w", err)
	}

	for i := range raws {
		if raws[i].Body == nil {
			continue
		}
		body := stripSentinel(*raws[i].Body)
		raws[i].Body = &body
	}

	return Parse(raws, opts)
}

// stripSentinel drops the first body line.
func stripSentinel(body string) string {
	_, rest, found := strings.Cut(body, "\n")
	if !found {
		return ""
	}
	return rest
}
