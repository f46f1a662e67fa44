package domain

import "time"

// SyncType identifies which record family a sync pass covered
type SyncType string

const (
	SyncTypeProperties SyncType = "properties"
	SyncTypeBookings   SyncType = "bookings"
	SyncTypeGuests     SyncType = "guests"
)

// SyncStatus is the outcome class of one sync pass
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusError   SyncStatus = "error"
)

// SyncError records one failed record inside a sync pass
type SyncError struct {
	ExternalID string `json:"external_id,omitempty"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

// SyncResult is one record per (connection, sync type) execution.
// Results are an append-only audit trail: never mutated after creation.
type SyncResult struct {
	ID            string       `json:"id,omitempty"`
	ConnectionID  string       `json:"connection_id"`
	Provider      ProviderName `json:"provider"`
	SyncType      SyncType     `json:"sync_type"`
	Status        SyncStatus   `json:"status"`
	RecordsSynced int          `json:"records_synced"`
	Errors        []SyncError  `json:"errors"`
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   time.Time    `json:"completed_at"`
}

// ComputeSyncStatus derives the overall status of a pass from its counts:
// success when nothing failed, partial when some records made it, error when
// nothing did.
func ComputeSyncStatus(synced, failed int) SyncStatus {
	switch {
	case failed == 0:
		return SyncStatusSuccess
	case synced > 0:
		return SyncStatusPartial
	default:
		return SyncStatusError
	}
}

// WebhookEvent is an inbound provider push notification.
type WebhookEvent struct {
	Provider   ProviderName   `json:"provider"`
	EventType  string         `json:"event_type,omitempty"`
	Payload    map[string]any `json:"payload"`
	RawBody    []byte         `json:"-"`
	Signature  string         `json:"-"`
	ReceivedAt time.Time      `json:"received_at"`
}
