package driven

import (
	"context"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// PmsProvider is the capability contract every provider adapter implements.
// One adapter instance serves exactly one connection's sync pass; instances
// own their token state and must not be shared across concurrent syncs.
type PmsProvider interface {
	// Name returns the provider identity.
	Name() domain.ProviderName

	// SyncProperties fetches all properties visible to the connection.
	SyncProperties(ctx context.Context) ([]*domain.Property, error)

	// SyncBookings fetches bookings for one external property id.
	SyncBookings(ctx context.Context, propertyExternalID string) ([]*domain.Booking, error)

	// SyncGuests fetches the guest derived from one booking.
	// Every current provider yields zero or one guest per booking.
	SyncGuests(ctx context.Context, bookingExternalID string) ([]*domain.Guest, error)

	// GetProperty fetches a single property by external id.
	// Returns domain.ErrNotFound (wrapped) if the provider has no such property.
	GetProperty(ctx context.Context, externalID string) (*domain.Property, error)

	// HandleWebhook is invoked once per received webhook event.
	// Current behavior across all providers is log-only; it does not sync.
	HandleWebhook(ctx context.Context, payload map[string]any) error
}

// ProviderFactory constructs the adapter for a connection's provider config.
// It is the single validation chokepoint for provider names: any value outside
// the five supported names yields domain.ErrUnknownProvider.
type ProviderFactory interface {
	Create(config domain.ProviderConfig) (PmsProvider, error)
}
