package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"chamado-service/formctl"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the page templates together with the preview fragment.
func Templates() (*template.Template, error) {
	t, err := formctl.ParseTemplates(template.New("web"))
	if err != nil {
		return nil, fmt.Errorf("parse preview templates: %w", err)
	}
	t, err = t.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return t, nil
}

// Static serves the stylesheet and other assets under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
