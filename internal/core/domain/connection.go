package domain

import "time"

// ConnectionStatus represents the lifecycle state of a PMS connection
type ConnectionStatus string

const (
	ConnectionStatusActive   ConnectionStatus = "active"
	ConnectionStatusInactive ConnectionStatus = "inactive"
	ConnectionStatusError    ConnectionStatus = "error"
)

// ProviderConfig is the provider-specific credential bundle for a connection.
// Each provider reads only the subset it needs.
type ProviderConfig struct {
	Provider ProviderName `json:"provider"`

	// Credentials - never serialized
	APIKey       string `json:"-"`
	ClientID     string `json:"-"`
	ClientSecret string `json:"-"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	AccountID    string `json:"-"`
}

// Connection links one organization to one provider.
// Invariant: at most one active connection per (organization, provider) pair.
type Connection struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organization_id"`
	Provider       ProviderName     `json:"provider"`
	Status         ConnectionStatus `json:"status"`
	LastSync       *time.Time       `json:"last_sync,omitempty"`
	Config         ProviderConfig   `json:"config"`

	// WebhookSecret, when set, turns on HMAC signature enforcement for
	// inbound webhooks on this connection.
	WebhookSecret string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConnectionSummary is a safe view of a connection without credentials.
type ConnectionSummary struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organization_id"`
	Provider       ProviderName     `json:"provider"`
	Status         ConnectionStatus `json:"status"`
	LastSync       *time.Time       `json:"last_sync,omitempty"`
	HasCredentials bool             `json:"has_credentials"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ToSummary converts a Connection to its credential-free view.
func (c *Connection) ToSummary() *ConnectionSummary {
	cfg := c.Config
	return &ConnectionSummary{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Provider:       c.Provider,
		Status:         c.Status,
		LastSync:       c.LastSync,
		HasCredentials: cfg.APIKey != "" || cfg.AccessToken != "" || cfg.ClientID != "",
		CreatedAt:      c.CreatedAt,
	}
}
