package driving

import (
	"context"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// ConnectRequest carries the credentials for a new or replaced connection.
type ConnectRequest struct {
	OrganizationID string              `json:"organization_id"`
	Provider       domain.ProviderName `json:"provider"`
	APIKey         string              `json:"api_key,omitempty"`
	ClientID       string              `json:"client_id,omitempty"`
	ClientSecret   string              `json:"client_secret,omitempty"`
	AccessToken    string              `json:"access_token,omitempty"`
	RefreshToken   string              `json:"refresh_token,omitempty"`
	AccountID      string              `json:"account_id,omitempty"`
	WebhookSecret  string              `json:"webhook_secret,omitempty"`
}

// ConnectionService manages the PMS connection lifecycle.
type ConnectionService interface {
	// Connect tests the supplied credentials against the provider (one
	// SyncProperties call, result discarded) and, on success, upserts the
	// connection as active. At most one connection per (organization,
	// provider): reconnecting replaces the stored credentials.
	Connect(ctx context.Context, req ConnectRequest) (*domain.ConnectionSummary, error)

	// Disconnect flips the connection's status to inactive.
	// Connections are never hard-deleted.
	Disconnect(ctx context.Context, connectionID string) error

	// Get returns the credential-free view of a connection.
	Get(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error)

	// List returns all connections for an organization.
	List(ctx context.Context, organizationID string) ([]*domain.ConnectionSummary, error)
}
