// Package changelog renders changelog entries, reads documented versions
// back out of markdown changelogs and maintains the YAML history file.
package changelog

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
)

// TemplateData is the value templates are executed against.
type TemplateData = gitlog.Release

// scope is the state the built-in templates thread through nested releases.
type scope struct {
	Release gitlog.Release
	Nesting string
	Block   string
}

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"capitalize": capitalize,
	"lower":      strings.ToLower,
	"upper":      strings.ToUpper,
	"trim":       strings.TrimSpace,
	"append":     func(a, b string) string { return a + b },
	"date": func(layout string, t time.Time) string {
		return t.Format(layout)
	},
	"default": func(def, v string) string {
		if v == "" {
			return def
		}
		return v
	},
	"root": func(r gitlog.Release, nesting string) scope {
		return scope{Release: r, Nesting: nesting}
	},
	"child": func(parent scope, r gitlog.Release) scope {
		return scope{Release: r, Nesting: parent.Nesting + "#", Block: parent.Block + ">"}
	},
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Render executes tmpl against data. Output is not HTML-escaped.
func Render(tmpl string, data TemplateData) (string, error) {
	t, err := template.New("changelog").Funcs(Funcs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}
	return buf.String(), nil
}
