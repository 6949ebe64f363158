package generator

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

// Frame is an endpoint embedded in the page.
type Frame struct {
	Domain      string
	Label       string
	Description string

	// DescriptionFirst renders the description above the label
	DescriptionFirst bool
}

type Page struct {
	Title  string
	Frames []Frame
}

//go:embed index.html.tmpl
var templates embed.FS

var indexTemplate = template.Must(
	template.New("index.html.tmpl").
		Funcs(sprig.HtmlFuncMap()).
		ParseFS(templates, "index.html.tmpl"),
)

// Render renders the page. The output only depends on the page, so equal
// pages render to identical bytes.
func Render(page Page) ([]byte, error) {
	var buf bytes.Buffer

	if err := indexTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
