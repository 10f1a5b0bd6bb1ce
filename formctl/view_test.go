package formctl_test

import (
	"bytes"
	"testing"

	"chamado-service/formctl"
	"chamado-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;&amp;&quot;&#039;", formctl.EscapeHTML("<b>&\"'"))
	assert.Equal(t, "plain text ✓", formctl.EscapeHTML("plain text ✓"))
}

func TestRenderPreview_Rows(t *testing.T) {
	view := formctl.BuildPreviewView(models.PreviewResponse{
		TotalLinhas: 3,
		Preview: []models.PreviewItem{
			{Linha: 1, Titulo: "A", Descricao: "B"},
			{Linha: 2, Erro: "bad row"},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, formctl.RenderPreview(&buf, view))
	out := buf.String()

	assert.Contains(t, out, "Total de linhas disponíveis:")
	assert.Contains(t, out, ">3</span>")
	assert.Contains(t, out, "Linha 1:")
	assert.Contains(t, out, "✓ Processado")
	assert.Contains(t, out, ">A</div>")
	assert.Contains(t, out, ">B</div>")
	assert.Contains(t, out, "Linha 2:")
	assert.Contains(t, out, "⚠️ bad row")
	assert.Contains(t, out, "(vazio)")
	assert.Contains(t, out, "var(--bg-section)")
	assert.NotContains(t, out, "Nenhuma prévia disponível")
}

func TestRenderPreview_EscapesServerContent(t *testing.T) {
	view := formctl.BuildPreviewView(models.PreviewResponse{
		Preview: []models.PreviewItem{
			{Linha: 4, Titulo: "<script>alert(1)</script>", Descricao: "a & b", Erro: "<img src=x>"},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, formctl.RenderPreview(&buf, view))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "a &amp; b")
}

func TestRenderPreview_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formctl.RenderPreview(&buf, formctl.BuildPreviewView(models.PreviewResponse{})))

	out := buf.String()
	assert.Contains(t, out, "Nenhuma prévia disponível")
	assert.NotContains(t, out, "Total de linhas")
}
