package formctl

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PreviewTemplateName is the template that renders a PreviewView.
const PreviewTemplateName = "preview_content"

var previewTemplate = template.Must(template.New("formctl").ParseFS(templateFS, "templates/*.tmpl"))

// ParseTemplates adds the preview templates to t so pages can embed them with
// {{template "preview_content" .}}.
func ParseTemplates(t *template.Template) (*template.Template, error) {
	return t.ParseFS(templateFS, "templates/*.tmpl")
}

// RenderPreview writes the modal content markup for view.
func RenderPreview(w io.Writer, view PreviewView) error {
	return previewTemplate.ExecuteTemplate(w, PreviewTemplateName, view)
}
