package providers

import (
	"context"

	"chamado-service/models"
)

// TicketProvider is the Fluig integration used to open tickets and look up
// employees.
type TicketProvider interface {
	// CreateTicket opens one ticket on behalf of payload.Usuario.
	CreateTicket(ctx context.Context, payload models.TicketPayload) error

	// FetchEmployee returns the employee record registered for email.
	FetchEmployee(ctx context.Context, email string) (*models.Employee, error)
}

// IdentityProvider authenticates users through an OAuth2 authorization code
// flow.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.User, error)
}
