package portfolio

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Page renders the single-page site. The contribution widget is mounted
// client-side against the widget API for Username.
type Page struct {
	Data     *Data
	Username string
}

// Render writes the full page
func (p *Page) Render(w io.Writer) error {
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "index.html", p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
