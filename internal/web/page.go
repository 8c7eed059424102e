package web

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/forPelevin/ytnotes/internal/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const pageHeading = "YouTube Transcript to Detailed Notes Converter"

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// goldmark drops raw HTML from model output unless WithUnsafe is set.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type pageData struct {
	Heading string
	URL     string
	Error   string
	Notes   types.Notes
	Summary template.HTML
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output, raw HTML disabled
}

func renderPage(d pageData) ([]byte, error) {
	d.Heading = pageHeading
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
