package formctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chamado-service/models"
)

// PreviewPath is the server route that generates previews.
const PreviewPath = "/chamado/preview"

// Previewer issues a preview request. A non-2xx answer with a decodable body
// is a PreviewResult with OK false, not an error.
type Previewer interface {
	Preview(ctx context.Context, req models.PreviewRequest) (PreviewResult, error)
}

// PreviewerFunc adapts a function to Previewer.
type PreviewerFunc func(ctx context.Context, req models.PreviewRequest) (PreviewResult, error)

// Preview calls f.
func (f PreviewerFunc) Preview(ctx context.Context, req models.PreviewRequest) (PreviewResult, error) {
	return f(ctx, req)
}

// HTTPPreviewer posts preview requests as JSON.
type HTTPPreviewer struct {
	endpoint   string
	headers    http.Header
	httpClient *http.Client
}

// NewHTTPPreviewer targets endpoint, usually a base URL plus PreviewPath.
// headers are added to every request.
func NewHTTPPreviewer(endpoint string, headers http.Header) *HTTPPreviewer {
	return &HTTPPreviewer{
		endpoint: endpoint,
		headers:  headers,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Preview implements Previewer.
func (p *HTTPPreviewer) Preview(ctx context.Context, body models.PreviewRequest) (PreviewResult, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(b))
	if err != nil {
		return PreviewResult{}, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range p.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("read response: %w", err)
	}

	var out models.PreviewResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return PreviewResult{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return PreviewResult{
		OK:   resp.StatusCode >= 200 && resp.StatusCode < 300,
		Body: out,
	}, nil
}
