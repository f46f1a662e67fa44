package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SyncLogStore = (*SyncLogStore)(nil)

// SyncLogStore implements driven.SyncLogStore using PostgreSQL.
// The log is append-only; rows are never updated or deleted.
type SyncLogStore struct {
	db *DB
}

// NewSyncLogStore creates a new SyncLogStore
func NewSyncLogStore(db *DB) *SyncLogStore {
	return &SyncLogStore{db: db}
}

// Append writes one sync result row
func (s *SyncLogStore) Append(ctx context.Context, result *domain.SyncResult) error {
	id := result.ID
	if id == "" {
		id = domain.GenerateID()
	}

	errs := result.Errors
	if errs == nil {
		errs = []domain.SyncError{}
	}
	errorsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal sync errors: %w", err)
	}

	query := `
		INSERT INTO pms_sync_log (id, connection_id, provider, sync_type, status, records_synced, errors, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		result.ConnectionID,
		string(result.Provider),
		string(result.SyncType),
		string(result.Status),
		result.RecordsSynced,
		errorsJSON,
		result.StartedAt,
		result.CompletedAt,
	)
	return err
}

// ListByConnection retrieves results for a connection, newest first
func (s *SyncLogStore) ListByConnection(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, connection_id, provider, sync_type, status, records_synced, errors, started_at, completed_at
		FROM pms_sync_log
		WHERE connection_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, connectionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.SyncResult
	for rows.Next() {
		var (
			result     domain.SyncResult
			provider   string
			syncType   string
			status     string
			errorsJSON []byte
		)

		err := rows.Scan(
			&result.ID,
			&result.ConnectionID,
			&provider,
			&syncType,
			&status,
			&result.RecordsSynced,
			&errorsJSON,
			&result.StartedAt,
			&result.CompletedAt,
		)
		if err != nil {
			return nil, err
		}

		result.Provider = domain.ProviderName(provider)
		result.SyncType = domain.SyncType(syncType)
		result.Status = domain.SyncStatus(status)

		if err := json.Unmarshal(errorsJSON, &result.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal sync errors: %w", err)
		}

		results = append(results, &result)
	}
	return results, rows.Err()
}
