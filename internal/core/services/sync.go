package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
	"github.com/heyconcierge/pms-core/internal/core/ports/driving"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates a full sync pass for one connection:
//  1. Load the connection record
//  2. Build the provider adapter via the factory
//  3. Property sync (always produces one SyncResult)
//  4. Booking sync across all mapped properties (one SyncResult)
//  5. Update the connection's last_sync and mark it active
//
// Per-record failures are isolated into the result's error list; only
// connection-level failures (not found, unknown provider, bad credentials)
// abort the pass.
type SyncOrchestrator struct {
	connectionStore driven.ConnectionStore
	propertyStore   driven.PropertyStore
	mappingStore    driven.MappingStore
	bookingStore    driven.BookingStore
	syncLog         driven.SyncLogStore
	factory         driven.ProviderFactory
	logger          *slog.Logger
}

// SyncOrchestratorConfig holds dependencies for SyncOrchestrator.
type SyncOrchestratorConfig struct {
	ConnectionStore driven.ConnectionStore
	PropertyStore   driven.PropertyStore
	MappingStore    driven.MappingStore
	BookingStore    driven.BookingStore
	SyncLog         driven.SyncLogStore
	Factory         driven.ProviderFactory
	Logger          *slog.Logger
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(cfg SyncOrchestratorConfig) *SyncOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncOrchestrator{
		connectionStore: cfg.ConnectionStore,
		propertyStore:   cfg.PropertyStore,
		mappingStore:    cfg.MappingStore,
		bookingStore:    cfg.BookingStore,
		syncLog:         cfg.SyncLog,
		factory:         cfg.Factory,
		logger:          logger,
	}
}

// SyncConnection runs a full sync pass for one connection.
func (o *SyncOrchestrator) SyncConnection(ctx context.Context, connectionID string) ([]*domain.SyncResult, error) {
	o.logger.Info("starting sync", "connection_id", connectionID)

	conn, err := o.connectionStore.Get(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("load connection %s: %w", connectionID, err)
	}

	provider, err := o.factory.Create(conn.Config)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	var results []*domain.SyncResult

	propResult, fetchErr := o.syncProperties(ctx, provider, conn)
	results = append(results, propResult)

	// Bad credentials are definitive: mark the connection errored and stop
	// instead of failing identically on every mapped property.
	if errors.Is(fetchErr, domain.ErrAuthFailed) {
		o.logger.Error("provider authentication failed",
			"connection_id", conn.ID,
			"provider", conn.Provider,
			"error", fetchErr,
		)
		if err := o.connectionStore.UpdateStatus(ctx, conn.ID, domain.ConnectionStatusError); err != nil {
			o.logger.Warn("failed to mark connection errored", "connection_id", conn.ID, "error", err)
		}
		return results, nil
	}

	// Booking sync depends on the mappings property sync just created, so it
	// always runs after all property attempts completed.
	mappings, err := o.mappingStore.ListByConnection(ctx, conn.Provider, conn.OrganizationID)
	if err != nil {
		return results, fmt.Errorf("list property mappings: %w", err)
	}

	bookingResult := o.syncBookings(ctx, provider, conn, mappings)
	results = append(results, bookingResult)

	if err := o.connectionStore.TouchLastSync(ctx, conn.ID); err != nil {
		o.logger.Warn("failed to update last_sync", "connection_id", conn.ID, "error", err)
	}

	o.logger.Info("sync completed",
		"connection_id", conn.ID,
		"provider", conn.Provider,
		"properties_status", propResult.Status,
		"properties_synced", propResult.RecordsSynced,
		"bookings_status", bookingResult.Status,
		"bookings_synced", bookingResult.RecordsSynced,
	)

	return results, nil
}

// SyncAll runs a sync pass for every active connection.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) ([]*domain.SyncResult, error) {
	var results []*domain.SyncResult

	for _, providerName := range domain.SupportedProviders() {
		connections, err := o.connectionStore.ListActiveByProvider(ctx, providerName)
		if err != nil {
			return results, fmt.Errorf("list %s connections: %w", providerName, err)
		}

		for _, conn := range connections {
			connResults, err := o.SyncConnection(ctx, conn.ID)
			results = append(results, connResults...)
			if err != nil {
				o.logger.Error("sync failed", "connection_id", conn.ID, "error", err)
			}
		}
	}

	return results, nil
}

// SyncResults reads the append-only sync log for a connection.
func (o *SyncOrchestrator) SyncResults(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error) {
	return o.syncLog.ListByConnection(ctx, connectionID, limit)
}

// syncProperties fetches all properties from the provider and reconciles each
// against the mapping table. It always produces exactly one SyncResult; the
// returned error is the top-level fetch error, nil when the fetch succeeded.
func (o *SyncOrchestrator) syncProperties(ctx context.Context, provider driven.PmsProvider, conn *domain.Connection) (*domain.SyncResult, error) {
	startedAt := time.Now()
	var syncErrors []domain.SyncError
	synced := 0

	properties, fetchErr := provider.SyncProperties(ctx)
	if fetchErr != nil {
		syncErrors = append(syncErrors, domain.SyncError{
			Message: fmt.Sprintf("property sync failed: %v", fetchErr),
		})
	} else {
		for _, prop := range properties {
			if err := o.upsertProperty(ctx, prop, conn); err != nil {
				o.logger.Warn("property upsert failed",
					"connection_id", conn.ID,
					"external_id", prop.ExternalID,
					"error", err,
				)
				syncErrors = append(syncErrors, domain.SyncError{
					ExternalID: prop.ExternalID,
					Message:    err.Error(),
				})
				continue
			}
			synced++
		}
	}

	result := &domain.SyncResult{
		ConnectionID:  conn.ID,
		Provider:      conn.Provider,
		SyncType:      domain.SyncTypeProperties,
		Status:        domain.ComputeSyncStatus(synced, len(syncErrors)),
		RecordsSynced: synced,
		Errors:        syncErrors,
		StartedAt:     startedAt,
		CompletedAt:   time.Now(),
	}

	o.appendLog(ctx, result)
	return result, fetchErr
}

// upsertProperty looks up the mapping for (provider, externalID) and either
// updates the mapped property's sync-owned fields in place or inserts a new
// internal property plus the mapping row linking it.
func (o *SyncOrchestrator) upsertProperty(ctx context.Context, prop *domain.Property, conn *domain.Connection) error {
	mapping, err := o.mappingStore.Get(ctx, conn.Provider, prop.ExternalID, conn.OrganizationID)
	switch {
	case err == nil:
		if err := o.propertyStore.UpdateSynced(ctx, mapping.HcPropertyID, prop.Name, prop.Images, prop.IcalURL); err != nil {
			return fmt.Errorf("update property: %w", err)
		}
		return nil

	case errors.Is(err, domain.ErrNotFound):
		id, err := o.propertyStore.Insert(ctx, &domain.StoredProperty{
			OrganizationID: conn.OrganizationID,
			Name:           prop.Name,
			Address:        prop.Address,
			City:           prop.City,
			Country:        prop.Country,
			Latitude:       prop.Latitude,
			Longitude:      prop.Longitude,
			Images:         prop.Images,
			Bedrooms:       prop.Bedrooms,
			Bathrooms:      prop.Bathrooms,
			MaxGuests:      prop.MaxGuests,
			PropertyType:   prop.PropertyType,
			IcalURL:        prop.IcalURL,
			RawData:        prop.RawData,
			Active:         true,
		})
		if err != nil {
			return fmt.Errorf("create property: %w", err)
		}

		if err := o.mappingStore.Insert(ctx, &domain.PropertyMapping{
			HcPropertyID:         id,
			PmsProvider:          conn.Provider,
			ExternalPropertyID:   prop.ExternalID,
			ExternalPropertyName: prop.Name,
			OrganizationID:       conn.OrganizationID,
		}); err != nil {
			return fmt.Errorf("create mapping: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("lookup mapping: %w", err)
	}
}

// syncBookings fetches bookings for every mapped property and upserts each
// keyed on (internal property id, booking reference, platform). Per-booking
// and per-property failures are isolated the same way property sync does it.
func (o *SyncOrchestrator) syncBookings(ctx context.Context, provider driven.PmsProvider, conn *domain.Connection, mappings []*domain.PropertyMapping) *domain.SyncResult {
	startedAt := time.Now()
	var syncErrors []domain.SyncError
	synced := 0

	for _, mapping := range mappings {
		bookings, err := provider.SyncBookings(ctx, mapping.ExternalPropertyID)
		if err != nil {
			o.logger.Warn("booking fetch failed",
				"connection_id", conn.ID,
				"external_property_id", mapping.ExternalPropertyID,
				"error", err,
			)
			syncErrors = append(syncErrors, domain.SyncError{
				ExternalID: mapping.ExternalPropertyID,
				Message:    fmt.Sprintf("booking sync for property failed: %v", err),
			})
			continue
		}

		for _, booking := range bookings {
			if err := o.upsertBooking(ctx, booking, mapping.HcPropertyID); err != nil {
				syncErrors = append(syncErrors, domain.SyncError{
					ExternalID: booking.ExternalID,
					Message:    err.Error(),
				})
				continue
			}
			synced++
		}
	}

	result := &domain.SyncResult{
		ConnectionID:  conn.ID,
		Provider:      conn.Provider,
		SyncType:      domain.SyncTypeBookings,
		Status:        domain.ComputeSyncStatus(synced, len(syncErrors)),
		RecordsSynced: synced,
		Errors:        syncErrors,
		StartedAt:     startedAt,
		CompletedAt:   time.Now(),
	}

	o.appendLog(ctx, result)
	return result
}

func (o *SyncOrchestrator) upsertBooking(ctx context.Context, booking *domain.Booking, propertyID string) error {
	if err := booking.ValidateStay(); err != nil {
		return err
	}

	stored := &domain.StoredBooking{
		PropertyID:       propertyID,
		ExternalID:       booking.ExternalID,
		GuestName:        booking.GuestName,
		GuestEmail:       booking.GuestEmail,
		GuestPhone:       booking.GuestPhone,
		CheckInDate:      booking.CheckInDate,
		CheckOutDate:     booking.CheckOutDate,
		Status:           booking.Status,
		Platform:         domain.NormalizePlatform(booking.Platform),
		BookingReference: booking.Reference(),
		TotalPrice:       booking.TotalPrice,
		Currency:         booking.Currency,
		NumberOfGuests:   booking.NumberOfGuests,
		Notes:            booking.Notes,
		RawData:          booking.RawData,
	}

	if err := o.bookingStore.Upsert(ctx, stored); err != nil {
		return fmt.Errorf("booking upsert failed: %w", err)
	}
	return nil
}

// appendLog writes the sync result to the audit trail. A failed write is
// logged but does not fail the sync itself.
func (o *SyncOrchestrator) appendLog(ctx context.Context, result *domain.SyncResult) {
	if err := o.syncLog.Append(ctx, result); err != nil {
		o.logger.Warn("failed to append sync log",
			"connection_id", result.ConnectionID,
			"sync_type", result.SyncType,
			"error", err,
		)
	}
}
