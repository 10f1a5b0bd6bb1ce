package providers

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

// FluigConfig holds the endpoints and API key of the Fluig integration.
type FluigConfig struct {
	TicketEndpoint   string
	EmployeeEndpoint string
	APIKeyHeader     string
	APIKey           string
}

// FluigProvider implements TicketProvider over HTTP.
type FluigProvider struct {
	cfg            FluigConfig
	ticketClient   *http.Client
	employeeClient *http.Client
}

// NewFluigProvider creates a new FluigProvider.
func NewFluigProvider(cfg FluigConfig) *FluigProvider {
	return &FluigProvider{
		cfg:            cfg,
		ticketClient:   &http.Client{Timeout: 30 * time.Second},
		employeeClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateTicket posts {Usuario, Titulo, Descricao} to the ticket endpoint.
func (p *FluigProvider) CreateTicket(ctx context.Context, payload models.TicketPayload) error {
	if err := p.doRequest(ctx, p.ticketClient, p.cfg.TicketEndpoint, payload, nil); err != nil {
		return fmt.Errorf("fluig CreateTicket: %w", err)
	}
	return nil
}

// FetchEmployee posts {Email} to the employee endpoint.
func (p *FluigProvider) FetchEmployee(ctx context.Context, email string) (*models.Employee, error) {
	var out models.Employee
	if err := p.doRequest(ctx, p.employeeClient, p.cfg.EmployeeEndpoint, models.EmployeeLookup{Email: email}, &out); err != nil {
		return nil, fmt.Errorf("fluig FetchEmployee: %w", err)
	}
	return &out, nil
}

func (p *FluigProvider) doRequest(ctx context.Context, client *http.Client, url string, body interface{}, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKeyHeader != "" {
		req.Header.Set(p.cfg.APIKeyHeader, p.cfg.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fluig API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	if out != nil && len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
