package formctl

import (
	"strings"

	"chamado-service/models"
)

const (
	emptyPlaceholder = "(vazio)"
	processedMarker  = "✓ Processado"
	errorMarker      = "⚠️ "
)

// PreviewRow is one rendered preview entry.
type PreviewRow struct {
	Line        int
	Error       string
	Title       string
	Description string
}

// OK reports whether the row was generated without error.
func (r PreviewRow) OK() bool { return r.Error == "" }

// Marker is the status text shown next to the line number.
func (r PreviewRow) Marker() string {
	if r.OK() {
		return processedMarker
	}
	return errorMarker + r.Error
}

// PreviewView is the typed content of the preview modal.
type PreviewView struct {
	TotalRows int
	Rows      []PreviewRow
}

// ShowTotal reports whether the summary line is rendered.
func (v PreviewView) ShowTotal() bool { return v.TotalRows != 0 }

// BuildPreviewView maps a server response to the view-model, keeping the
// server's item order.
func BuildPreviewView(resp models.PreviewResponse) PreviewView {
	view := PreviewView{
		TotalRows: resp.TotalLinhas,
		Rows:      make([]PreviewRow, 0, len(resp.Preview)),
	}
	for _, item := range resp.Preview {
		view.Rows = append(view.Rows, PreviewRow{
			Line:        item.Linha,
			Error:       item.Erro,
			Title:       orEmpty(item.Titulo),
			Description: orEmpty(item.Descricao),
		})
	}
	return view
}

func orEmpty(s string) string {
	if s == "" {
		return emptyPlaceholder
	}
	return s
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five markup-significant characters with character
// references. Everything else passes through unchanged.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}
