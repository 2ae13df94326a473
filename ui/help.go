package ui

import (
	"fmt"
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const helpFile = "static/help.md"

// renderHelp converts the embedded usage notes to HTML once at startup
func renderHelp() (template.HTML, error) {
	src, err := embeddedFiles.ReadFile(helpFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", helpFile, err)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})

	return template.HTML(markdown.ToHTML(src, p, renderer)), nil
}
