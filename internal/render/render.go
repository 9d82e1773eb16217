// Package render turns a resume into a standalone HTML page in one of the
// built-in layouts. Rendering is pure: no I/O, no mutation of the input and
// the same input always yields the same bytes.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"cv-builder/internal/model"
)

//go:embed templates/*.gohtml templates/base.css
var files embed.FS

var ErrUnknownTemplate = errors.New("unknown template")

type TemplateID string

const (
	Standard  TemplateID = "standard"
	Classic   TemplateID = "classic"
	Modern    TemplateID = "modern"
	Europass  TemplateID = "europass"
	Canadian  TemplateID = "canadian"
	Bilingual TemplateID = "bilingual"
	ATS       TemplateID = "ats"
)

// Default is used when no template was chosen.
const Default = Standard

// Info describes a layout for template pickers.
type Info struct {
	ID   TemplateID `json:"id"`
	Name string     `json:"name"`
}

var catalog = []Info{
	{Standard, "Standard"},
	{Classic, "Classic"},
	{Modern, "Modern"},
	{Europass, "Europass"},
	{Canadian, "Canadian"},
	{Bilingual, "Bilingual"},
	{ATS, "ATS-Friendly"},
}

// Templates lists every layout in display order.
func Templates() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// ParseTemplateID validates a layout name. The empty string selects Default.
func ParseTemplateID(s string) (TemplateID, error) {
	if s == "" {
		return Default, nil
	}
	for _, t := range catalog {
		if string(t.ID) == s {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, s)
}

// Document is a rendered resume ready for preview or capture.
type Document struct {
	Template TemplateID `json:"template"`
	HTML     string     `json:"html"`
	// Sections lists the section headers in the order they appear.
	Sections []string `json:"sections"`
}

var (
	tpl     = template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.gohtml"))
	baseCSS = mustRead("templates/base.css")
)

func mustRead(name string) template.CSS {
	b, err := files.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return template.CSS(b)
}

// Render produces the HTML page for doc in layout id.
func Render(doc *model.Resume, id TemplateID) (*Document, error) {
	l, ok := layouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	if doc == nil {
		doc = &model.Resume{}
	}
	v := newView(doc, l)

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, string(id), v); err != nil {
		return nil, fmt.Errorf("render %s: %w", id, err)
	}
	return &Document{Template: id, HTML: buf.String(), Sections: l.headers()}, nil
}
