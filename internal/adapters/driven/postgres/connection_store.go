package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConnectionStore = (*ConnectionStore)(nil)

// ConnectionStore implements driven.ConnectionStore using PostgreSQL.
// Provider credentials are encrypted at rest with AES-256-GCM.
type ConnectionStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewConnectionStore creates a new ConnectionStore
func NewConnectionStore(db *DB, encryptor *SecretEncryptor) *ConnectionStore {
	return &ConnectionStore{db: db, encryptor: encryptor}
}

// credentialBlob is the encrypted portion of a connection row.
type credentialBlob struct {
	APIKey       string `json:"api_key,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

const connectionColumns = `id, organization_id, provider, status, credentials, webhook_secret, account_id, last_sync, created_at, updated_at`

// Save creates or updates a connection, keyed on (organization, provider).
// An existing row keeps its id; credentials are always replaced.
func (s *ConnectionStore) Save(ctx context.Context, conn *domain.Connection) error {
	if conn.ID == "" {
		conn.ID = domain.GenerateID()
	}
	now := time.Now()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now

	blob, err := s.encryptor.Encrypt(credentialBlob{
		APIKey:       conn.Config.APIKey,
		ClientID:     conn.Config.ClientID,
		ClientSecret: conn.Config.ClientSecret,
		AccessToken:  conn.Config.AccessToken,
		RefreshToken: conn.Config.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("encrypt credentials: %w", err)
	}

	query := `
		INSERT INTO pms_connections (id, organization_id, provider, status, credentials, webhook_secret, account_id, last_sync, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (organization_id, provider) DO UPDATE SET
			status = EXCLUDED.status,
			credentials = EXCLUDED.credentials,
			webhook_secret = EXCLUDED.webhook_secret,
			account_id = EXCLUDED.account_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		conn.ID,
		conn.OrganizationID,
		string(conn.Provider),
		string(conn.Status),
		blob,
		conn.WebhookSecret,
		conn.Config.AccountID,
		NullTime(conn.LastSync),
		conn.CreatedAt,
		conn.UpdatedAt,
	)
	return err
}

// Get retrieves a connection by id
func (s *ConnectionStore) Get(ctx context.Context, id string) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM pms_connections WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByOrgProvider retrieves the connection for an (organization, provider) pair
func (s *ConnectionStore) GetByOrgProvider(ctx context.Context, organizationID string, provider domain.ProviderName) (*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM pms_connections WHERE organization_id = $1 AND provider = $2`
	return s.scanOne(s.db.QueryRowContext(ctx, query, organizationID, string(provider)))
}

// ListActiveByProvider retrieves all active connections for a provider
func (s *ConnectionStore) ListActiveByProvider(ctx context.Context, provider domain.ProviderName) ([]*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM pms_connections WHERE provider = $1 AND status = $2 ORDER BY created_at`
	return s.list(ctx, query, string(provider), string(domain.ConnectionStatusActive))
}

// ListByOrganization retrieves all connections for an organization
func (s *ConnectionStore) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM pms_connections WHERE organization_id = $1 ORDER BY created_at`
	return s.list(ctx, query, organizationID)
}

// UpdateStatus updates only the status field
func (s *ConnectionStore) UpdateStatus(ctx context.Context, id string, status domain.ConnectionStatus) error {
	query := `UPDATE pms_connections SET status = $2, updated_at = now() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TouchLastSync sets last_sync to now and the status back to active
func (s *ConnectionStore) TouchLastSync(ctx context.Context, id string) error {
	query := `UPDATE pms_connections SET last_sync = now(), status = $2, updated_at = now() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, string(domain.ConnectionStatusActive))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *ConnectionStore) list(ctx context.Context, query string, args ...any) ([]*domain.Connection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []*domain.Connection
	for rows.Next() {
		conn, err := s.scanConn(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *ConnectionStore) scanOne(row *sql.Row) (*domain.Connection, error) {
	conn, err := s.scanConn(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *ConnectionStore) scanConn(row rowScanner) (*domain.Connection, error) {
	var (
		conn     domain.Connection
		provider string
		status   string
		blob     []byte
		lastSync sql.NullTime
	)

	err := row.Scan(
		&conn.ID,
		&conn.OrganizationID,
		&provider,
		&status,
		&blob,
		&conn.WebhookSecret,
		&conn.Config.AccountID,
		&lastSync,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	conn.Provider = domain.ProviderName(provider)
	conn.Status = domain.ConnectionStatus(status)
	conn.LastSync = TimePtr(lastSync)
	conn.Config.Provider = conn.Provider

	if len(blob) > 0 {
		var creds credentialBlob
		if err := s.encryptor.Decrypt(blob, &creds); err != nil {
			return nil, fmt.Errorf("decrypt credentials for connection %s: %w", conn.ID, err)
		}
		conn.Config.APIKey = creds.APIKey
		conn.Config.ClientID = creds.ClientID
		conn.Config.ClientSecret = creds.ClientSecret
		conn.Config.AccessToken = creds.AccessToken
		conn.Config.RefreshToken = creds.RefreshToken
	}

	return &conn, nil
}

// requireRow maps a zero-row update to domain.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
