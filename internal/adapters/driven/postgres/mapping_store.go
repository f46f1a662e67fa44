package postgres

import (
	"context"
	"database/sql"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MappingStore = (*MappingStore)(nil)

// MappingStore implements driven.MappingStore using PostgreSQL
type MappingStore struct {
	db *DB
}

// NewMappingStore creates a new MappingStore
func NewMappingStore(db *DB) *MappingStore {
	return &MappingStore{db: db}
}

// Insert creates a mapping row
func (s *MappingStore) Insert(ctx context.Context, mapping *domain.PropertyMapping) error {
	id := mapping.ID
	if id == "" {
		id = domain.GenerateID()
	}

	query := `
		INSERT INTO pms_property_mappings (id, hc_property_id, pms_provider, external_property_id, external_property_name, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`

	_, err := s.db.ExecContext(ctx, query,
		id,
		mapping.HcPropertyID,
		string(mapping.PmsProvider),
		mapping.ExternalPropertyID,
		mapping.ExternalPropertyName,
		mapping.OrganizationID,
	)
	return err
}

// Get retrieves the mapping for (provider, externalID, organization)
func (s *MappingStore) Get(ctx context.Context, provider domain.ProviderName, externalID, organizationID string) (*domain.PropertyMapping, error) {
	query := `
		SELECT id, hc_property_id, pms_provider, external_property_id, external_property_name, organization_id, created_at
		FROM pms_property_mappings
		WHERE pms_provider = $1 AND external_property_id = $2 AND organization_id = $3
	`

	mapping, err := scanMapping(s.db.QueryRowContext(ctx, query, string(provider), externalID, organizationID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

// ListByConnection retrieves all mappings for a (provider, organization) pair
func (s *MappingStore) ListByConnection(ctx context.Context, provider domain.ProviderName, organizationID string) ([]*domain.PropertyMapping, error) {
	query := `
		SELECT id, hc_property_id, pms_provider, external_property_id, external_property_name, organization_id, created_at
		FROM pms_property_mappings
		WHERE pms_provider = $1 AND organization_id = $2
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, string(provider), organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*domain.PropertyMapping
	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, rows.Err()
}

func scanMapping(row rowScanner) (*domain.PropertyMapping, error) {
	var (
		mapping  domain.PropertyMapping
		provider string
	)

	err := row.Scan(
		&mapping.ID,
		&mapping.HcPropertyID,
		&provider,
		&mapping.ExternalPropertyID,
		&mapping.ExternalPropertyName,
		&mapping.OrganizationID,
		&mapping.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	mapping.PmsProvider = domain.ProviderName(provider)
	return &mapping, nil
}
