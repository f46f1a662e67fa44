package driving

import (
	"context"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// SyncService drives full sync passes for PMS connections.
// Exposed to cron triggers and the webhook dispatcher.
type SyncService interface {
	// SyncConnection runs a full sync pass (properties, then bookings across
	// all mapped properties) for one connection and returns the sync results
	// produced. Connection-level failures (not found, bad credentials) are
	// returned as errors; record-level failures live inside the results.
	SyncConnection(ctx context.Context, connectionID string) ([]*domain.SyncResult, error)

	// SyncAll runs SyncConnection for every active connection.
	SyncAll(ctx context.Context) ([]*domain.SyncResult, error)

	// SyncResults reads the append-only sync log for a connection.
	SyncResults(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error)
}
