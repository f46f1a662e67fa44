package driven

import (
	"context"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// ConnectionStore handles PMS connection persistence (PostgreSQL)
type ConnectionStore interface {
	// Get retrieves a connection by id
	Get(ctx context.Context, id string) (*domain.Connection, error)

	// GetByOrgProvider retrieves the connection for an (organization, provider) pair
	GetByOrgProvider(ctx context.Context, organizationID string, provider domain.ProviderName) (*domain.Connection, error)

	// ListActiveByProvider retrieves all active connections for a provider
	ListActiveByProvider(ctx context.Context, provider domain.ProviderName) ([]*domain.Connection, error)

	// ListByOrganization retrieves all connections for an organization
	ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Connection, error)

	// Save creates or updates a connection, keyed on (organization, provider)
	Save(ctx context.Context, conn *domain.Connection) error

	// UpdateStatus updates only the status field
	UpdateStatus(ctx context.Context, id string, status domain.ConnectionStatus) error

	// TouchLastSync sets last_sync to now and the status to active
	TouchLastSync(ctx context.Context, id string) error
}

// PropertyStore handles internal property persistence (PostgreSQL).
// The sync layer inserts and updates; it never deletes.
type PropertyStore interface {
	// Get retrieves a property by internal id
	Get(ctx context.Context, id string) (*domain.StoredProperty, error)

	// Insert creates a new property and returns its id
	Insert(ctx context.Context, prop *domain.StoredProperty) (string, error)

	// UpdateSynced updates the mutable fields a sync pass owns
	// (name, images, ical URL) in place.
	UpdateSynced(ctx context.Context, id string, name string, images []string, icalURL string) error
}

// MappingStore handles property mapping persistence (PostgreSQL)
type MappingStore interface {
	// Get retrieves the mapping for (provider, externalID, organization)
	Get(ctx context.Context, provider domain.ProviderName, externalID, organizationID string) (*domain.PropertyMapping, error)

	// ListByConnection retrieves all mappings for a (provider, organization) pair
	ListByConnection(ctx context.Context, provider domain.ProviderName, organizationID string) ([]*domain.PropertyMapping, error)

	// Insert creates a mapping row
	Insert(ctx context.Context, mapping *domain.PropertyMapping) error
}

// BookingStore handles booking persistence (PostgreSQL)
type BookingStore interface {
	// Upsert inserts or overwrites a booking keyed on
	// (property_id, booking_reference, platform).
	Upsert(ctx context.Context, booking *domain.StoredBooking) error

	// ListByProperty retrieves bookings for an internal property id
	ListByProperty(ctx context.Context, propertyID string) ([]*domain.StoredBooking, error)
}

// SyncLogStore handles the append-only sync audit trail (PostgreSQL)
type SyncLogStore interface {
	// Append writes one sync result row. Results are never updated or deleted.
	Append(ctx context.Context, result *domain.SyncResult) error

	// ListByConnection retrieves results for a connection, newest first
	ListByConnection(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error)
}
