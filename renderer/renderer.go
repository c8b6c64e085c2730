// Package renderer turns shop figures into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/flagship"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"day": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"short": shortID,
	"bar":   bar,
	"cell":  cell,
}

// shortID returns the first 8 characters of an id, enough to refer to a record.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

const barWidth = 20

// bar draws v as a horizontal bar relative to max.
func bar(v, max flagship.Money) string {
	if !v.IsPositive() || !max.IsPositive() {
		return ""
	}
	n := int(v.Decimal().Mul(flagship.M(barWidth).Decimal()).Div(max.Decimal()).Round(0).IntPart())
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
