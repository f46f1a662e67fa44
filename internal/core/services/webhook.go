package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
	"github.com/heyconcierge/pms-core/internal/core/ports/driving"
)

// Ensure WebhookDispatcher implements the interface.
var _ driving.WebhookService = (*WebhookDispatcher)(nil)

// WebhookDispatcher translates inbound provider push notifications into sync
// triggers. For each active connection of the event's provider it verifies the
// signature (when a secret is configured), relays the payload to the adapter's
// webhook handler, then runs a full sync pass. One connection's failure is
// logged and does not stop the remaining connections.
type WebhookDispatcher struct {
	connectionStore driven.ConnectionStore
	factory         driven.ProviderFactory
	syncService     driving.SyncService
	logger          *slog.Logger
}

// NewWebhookDispatcher creates a new WebhookDispatcher.
func NewWebhookDispatcher(connectionStore driven.ConnectionStore, factory driven.ProviderFactory, syncService driving.SyncService, logger *slog.Logger) *WebhookDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookDispatcher{
		connectionStore: connectionStore,
		factory:         factory,
		syncService:     syncService,
		logger:          logger,
	}
}

// Dispatch processes one inbound webhook event.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	if !domain.IsSupportedProvider(event.Provider) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProvider, event.Provider)
	}

	connections, err := d.connectionStore.ListActiveByProvider(ctx, event.Provider)
	if err != nil {
		return fmt.Errorf("list active connections: %w", err)
	}

	if len(connections) == 0 {
		d.logger.Info("webhook received with no active connections", "provider", event.Provider)
		return nil
	}

	for _, conn := range connections {
		if err := d.dispatchOne(ctx, event, conn); err != nil {
			d.logger.Error("webhook dispatch failed",
				"provider", event.Provider,
				"connection_id", conn.ID,
				"error", err,
			)
		}
	}

	return nil
}

func (d *WebhookDispatcher) dispatchOne(ctx context.Context, event *domain.WebhookEvent, conn *domain.Connection) error {
	if conn.WebhookSecret != "" {
		if err := verifySignature(conn.WebhookSecret, event.RawBody, event.Signature); err != nil {
			return err
		}
	} else if event.Signature == "" {
		d.logger.Warn("webhook without signature",
			"provider", event.Provider,
			"connection_id", conn.ID,
		)
	}

	provider, err := d.factory.Create(conn.Config)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	if err := provider.HandleWebhook(ctx, event.Payload); err != nil {
		d.logger.Warn("provider webhook handler failed",
			"provider", event.Provider,
			"connection_id", conn.ID,
			"error", err,
		)
	}

	if _, err := d.syncService.SyncConnection(ctx, conn.ID); err != nil {
		return fmt.Errorf("sync connection: %w", err)
	}
	return nil
}

// verifySignature checks an HMAC-SHA256 signature over the raw request body.
// The signature header value may be hex with or without a "sha256=" prefix.
func verifySignature(secret string, body []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: signature missing", domain.ErrSignatureInvalid)
	}
	if len(signature) > 7 && signature[:7] == "sha256=" {
		signature = signature[7:]
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}
