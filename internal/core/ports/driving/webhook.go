package driving

import (
	"context"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// WebhookService dispatches inbound provider push notifications.
type WebhookService interface {
	// Dispatch validates the provider name, then for each active connection
	// of that provider: verifies the signature (when the connection has a
	// webhook secret), relays the payload to the adapter's webhook handler,
	// and triggers a full sync pass. One connection's failure does not stop
	// the others.
	Dispatch(ctx context.Context, event *domain.WebhookEvent) error
}
