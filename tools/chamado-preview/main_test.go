package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"chamado-service/formctl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	printText(&buf, formctl.PreviewView{
		TotalRows: 4,
		Rows: []formctl.PreviewRow{
			{Line: 2, Title: "Acesso Ana", Description: "RH"},
			{Line: 3, Title: "Acesso <A>", Description: "(vazio)", Error: "Título vazio na linha 3"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Total de linhas disponíveis: 4")
	assert.Contains(t, out, "Linha 2: ✓ Processado\n  Título: Acesso Ana")
	assert.Contains(t, out, "Linha 3: ⚠️ Título vazio na linha 3")

	buf.Reset()
	printText(&buf, formctl.PreviewView{})
	assert.Equal(t, "Nenhuma prévia disponível\n", buf.String())
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k1", r.Header.Get("X-API-Key"))
		fh, _, err := r.FormFile("planilha")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"erro":"Selecione uma planilha .xlsx.","sucesso":false}`))
			return
		}
		fh.Close()
		_, _ = w.Write([]byte(`{"sucesso":true,"mensagem":"Planilha carregada com sucesso! 2 linha(s) processada(s).","linhas_processadas":2}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "base.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("xlsx"), 0o600))

	headers := http.Header{}
	headers.Set("X-API-Key", "k1")
	msg, err := upload(context.Background(), srv.URL, headers, path)
	require.NoError(t, err)
	assert.Equal(t, "Planilha carregada com sucesso! 2 linha(s) processada(s).", msg)

	_, err = upload(context.Background(), srv.URL, headers, filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
