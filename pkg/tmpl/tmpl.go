// Package tmpl renders user supplied output templates.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// oneline collapses line breaks so a value fits on one output line.
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// trunc shortens s to n runes, marking the cut with an ellipsis.
func trunc(n int, s string) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// when formats t in local time with layout. A nil time renders as "-".
func when(layout string, t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(layout)
}

var funcs = template.FuncMap{
	"oneline": oneline,
	"trunc":   trunc,
	"when":    when,
}

// Template is a parsed output template.
type Template struct {
	t *template.Template
}

// Parse compiles a template string. Undefined keys are an error at render
// time.
//
// Available template functions:
//   - oneline: collapse whitespace and line breaks
//   - trunc N: cut to N runes with an ellipsis
//   - when LAYOUT: format a *time.Time, "-" when unset
func Parse(text string) (*Template, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Template{t: t}, nil
}

// Execute renders the template for data.
func (t *Template) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Render parses and executes tmpl in one step.
func Render(tmpl string, data any) (string, error) {
	t, err := Parse(tmpl)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}
