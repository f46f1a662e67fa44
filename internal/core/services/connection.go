package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
	"github.com/heyconcierge/pms-core/internal/core/ports/driving"
)

// Ensure ConnectionService implements the interface.
var _ driving.ConnectionService = (*ConnectionService)(nil)

// ConnectionService manages PMS connection lifecycle: credential testing,
// connect/disconnect, and credential-free reads.
type ConnectionService struct {
	connectionStore driven.ConnectionStore
	factory         driven.ProviderFactory
	logger          *slog.Logger
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(connectionStore driven.ConnectionStore, factory driven.ProviderFactory, logger *slog.Logger) *ConnectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionService{
		connectionStore: connectionStore,
		factory:         factory,
		logger:          logger,
	}
}

// Connect tests the credentials and upserts the connection as active.
func (s *ConnectionService) Connect(ctx context.Context, req driving.ConnectRequest) (*domain.ConnectionSummary, error) {
	if req.OrganizationID == "" {
		return nil, fmt.Errorf("%w: organization_id is required", domain.ErrInvalidInput)
	}
	if !domain.IsSupportedProvider(req.Provider) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, req.Provider)
	}

	config := domain.ProviderConfig{
		Provider:     req.Provider,
		APIKey:       req.APIKey,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		AccountID:    req.AccountID,
	}

	provider, err := s.factory.Create(config)
	if err != nil {
		return nil, err
	}

	// Credential test: one property fetch, result discarded.
	if _, err := provider.SyncProperties(ctx); err != nil {
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	conn := &domain.Connection{
		OrganizationID: req.OrganizationID,
		Provider:       req.Provider,
		Status:         domain.ConnectionStatusActive,
		Config:         config,
		WebhookSecret:  req.WebhookSecret,
	}

	// One connection per (organization, provider): reconnecting replaces
	// the stored credentials on the existing row.
	if existing, err := s.connectionStore.GetByOrgProvider(ctx, req.OrganizationID, req.Provider); err == nil {
		conn.ID = existing.ID
		conn.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup connection: %w", err)
	}

	if err := s.connectionStore.Save(ctx, conn); err != nil {
		return nil, fmt.Errorf("save connection: %w", err)
	}

	s.logger.Info("connection established",
		"connection_id", conn.ID,
		"organization_id", conn.OrganizationID,
		"provider", conn.Provider,
	)

	return conn.ToSummary(), nil
}

// Disconnect flips the connection to inactive.
func (s *ConnectionService) Disconnect(ctx context.Context, connectionID string) error {
	if err := s.connectionStore.UpdateStatus(ctx, connectionID, domain.ConnectionStatusInactive); err != nil {
		return fmt.Errorf("disconnect %s: %w", connectionID, err)
	}
	s.logger.Info("connection disconnected", "connection_id", connectionID)
	return nil
}

// Get returns the credential-free view of a connection.
func (s *ConnectionService) Get(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
	conn, err := s.connectionStore.Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	return conn.ToSummary(), nil
}

// List returns all connections for an organization.
func (s *ConnectionService) List(ctx context.Context, organizationID string) ([]*domain.ConnectionSummary, error) {
	connections, err := s.connectionStore.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	summaries := make([]*domain.ConnectionSummary, 0, len(connections))
	for _, conn := range connections {
		summaries = append(summaries, conn.ToSummary())
	}
	return summaries, nil
}
