package server

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// renderMarkdown converts model output to HTML (safe to inject as template.HTML).
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	_ = goldmark.Convert([]byte(md), &buf)
	return template.HTML(buf.String())
}
