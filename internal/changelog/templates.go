package changelog

// partials are shared by the built-in templates. "release" renders one
// version and recurses into nested releases inside a <details> block, with
// each nesting level one heading deeper and one quote marker further in.
const partials = `{{define "prefix"}}{{if .Block}}{{.Block}} {{end}}{{end -}}
{{define "blank"}}{{if .Block}}{{.Block}}{{end}}{{end -}}
{{define "subject"}}{{.Subject}}{{if .Author}} [{{.Author}}]{{end}}{{end -}}
{{define "release"}}{{template "header" .}}{{template "blank" .}}
{{range $c := .Release.Commits}}{{if $c.Nested}}{{template "blank" $}}
{{template "prefix" $}}<details>
{{template "prefix" $}}<summary> {{template "subject" $c}} </summary>
{{template "blank" $}}
{{range $c.Nested}}{{template "release" (child $ .)}}{{end}}{{template "prefix" $}}</details>
{{template "blank" $}}
{{else}}{{template "prefix" $}}* {{template "subject" $c}}
{{end}}{{end}}{{template "blank" .}}
{{end -}}
`

// DefaultTemplate renders "# v1.2.3" followed by "## (date)".
const DefaultTemplate = partials + `{{define "header"}}{{template "prefix" .}}{{.Nesting}} {{if eq .Nesting "#"}}v{{end}}{{.Release.Version}}
{{template "prefix" .}}{{.Nesting}}# ({{date "2006-01-02" .Release.Date}})
{{end -}}
{{template "release" (root . "#")}}`

// OnelineTemplate renders "## 1.2.3 - date".
const OnelineTemplate = partials + `{{define "header"}}{{template "prefix" .}}{{.Nesting}} {{.Release.Version}} - {{date "2006-01-02" .Release.Date}}
{{end -}}
{{template "release" (root . "##")}}`
