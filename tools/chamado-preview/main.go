package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chamado-service/formctl"
	"chamado-service/middleware"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	apiPrefix   = "/api/v1"
	uploadPath  = "/chamado/carregar-planilha"
	waitTimeout = 60 * time.Second
)

func main() {
	_ = godotenv.Load()

	var server, usuario, titulo, descricao, qtd, arquivo string
	var ignorar, html bool
	flag.StringVar(&server, "server", envOr("CHAMADO_URL", "http://localhost:3000"), "base URL of chamado-service")
	flag.StringVar(&usuario, "usuario", os.Getenv("CHAMADO_USUARIO"), "e-mail the preview runs as")
	flag.StringVar(&titulo, "titulo", "", "title template, e.g. \"Acesso <A>\"")
	flag.StringVar(&descricao, "descricao", "", "description template")
	flag.StringVar(&qtd, "qtd", "5", "number of rows to preview")
	flag.BoolVar(&ignorar, "ignorar-cabecalho", true, "skip the first spreadsheet row")
	flag.StringVar(&arquivo, "planilha", "", "optional .xlsx to upload before previewing")
	flag.BoolVar(&html, "html", false, "print the modal HTML fragment instead of text")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	if usuario == "" {
		log.Fatal("CHAMADO_USUARIO must be set or provided via -usuario")
	}

	headers := http.Header{}
	headers.Set(envOr("API_NAME", "X-API-Key"), os.Getenv("API_KEY"))
	headers.Set(middleware.OwnerHeader, usuario)
	base := strings.TrimSuffix(server, "/") + apiPrefix

	ctrl, err := formctl.New(formctl.DefaultElements(), formctl.WithLogger(log))
	if err != nil {
		log.Fatal("form controller", zap.Error(err))
	}
	loop := ctrl.Start(formctl.NewHTTPPreviewer(base+formctl.PreviewPath, headers))
	defer loop.Close()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	if arquivo != "" {
		msg, err := upload(ctx, base+uploadPath, headers, arquivo)
		if err != nil {
			log.Fatal("upload failed", zap.String("planilha", arquivo), zap.Error(err))
		}
		loop.Dispatch(formctl.FileChanged{File: &formctl.SelectedFile{Name: filepath.Base(arquivo)}})
		fmt.Fprintln(os.Stderr, msg)
	}

	eff := loop.Dispatch(formctl.PreviewClicked{Fields: formctl.FormFields{
		Title:         titulo,
		Description:   descricao,
		Quantity:      qtd,
		SkipFirstLine: ignorar,
	}})
	if eff.Alert != "" {
		fmt.Fprintln(os.Stderr, eff.Alert)
		os.Exit(2)
	}

	state := loop.Await(ctx)
	switch {
	case state.Modal.Loading:
		log.Fatal("preview timed out", zap.Duration("timeout", waitTimeout))
	case state.Modal.Error != "":
		fmt.Fprintln(os.Stderr, state.Modal.Error)
		os.Exit(1)
	case state.Modal.Content == nil:
		return
	}

	if html {
		if err := formctl.RenderPreview(os.Stdout, *state.Modal.Content); err != nil {
			log.Fatal("render preview", zap.Error(err))
		}
		return
	}
	printText(os.Stdout, *state.Modal.Content)
}

func printText(w io.Writer, view formctl.PreviewView) {
	if view.ShowTotal() {
		fmt.Fprintf(w, "Total de linhas disponíveis: %d\n\n", view.TotalRows)
	}
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, "Nenhuma prévia disponível")
		return
	}
	for _, row := range view.Rows {
		fmt.Fprintf(w, "Linha %d: %s\n  Título: %s\n  Descrição: %s\n", row.Line, row.Marker(), row.Title, row.Description)
	}
}

// upload sends the workbook to the API-key upload route and returns the
// server message.
func upload(ctx context.Context, endpoint string, headers http.Header, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("planilha", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Mensagem string `json:"mensagem"`
		Erro     string `json:"erro"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, body.Erro)
	}
	return body.Mensagem, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
