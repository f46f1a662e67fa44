package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PropertyStore = (*PropertyStore)(nil)

// PropertyStore implements driven.PropertyStore using PostgreSQL
type PropertyStore struct {
	db *DB
}

// NewPropertyStore creates a new PropertyStore
func NewPropertyStore(db *DB) *PropertyStore {
	return &PropertyStore{db: db}
}

// Insert creates a new property and returns its id
func (s *PropertyStore) Insert(ctx context.Context, prop *domain.StoredProperty) (string, error) {
	id := prop.ID
	if id == "" {
		id = domain.GenerateID()
	}

	imagesJSON, err := json.Marshal(images(prop.Images))
	if err != nil {
		return "", fmt.Errorf("marshal images: %w", err)
	}
	rawJSON, err := marshalRawData(prop.RawData)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO properties (id, organization_id, name, address, city, country, latitude, longitude,
		                        images, bedrooms, bathrooms, max_guests, property_type, ical_url,
		                        raw_data, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		prop.OrganizationID,
		prop.Name,
		prop.Address,
		prop.City,
		prop.Country,
		NullFloat(prop.Latitude),
		NullFloat(prop.Longitude),
		imagesJSON,
		NullInt(prop.Bedrooms),
		NullFloat(prop.Bathrooms),
		NullInt(prop.MaxGuests),
		prop.PropertyType,
		prop.IcalURL,
		rawJSON,
		prop.Active,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves a property by internal id
func (s *PropertyStore) Get(ctx context.Context, id string) (*domain.StoredProperty, error) {
	query := `
		SELECT id, organization_id, name, address, city, country, latitude, longitude,
		       images, bedrooms, bathrooms, max_guests, property_type, ical_url,
		       raw_data, active, created_at, updated_at
		FROM properties
		WHERE id = $1
	`

	var (
		prop       domain.StoredProperty
		lat, lng   sql.NullFloat64
		bedrooms   sql.NullInt64
		bathrooms  sql.NullFloat64
		maxGuests  sql.NullInt64
		imagesJSON []byte
		rawJSON    []byte
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&prop.ID,
		&prop.OrganizationID,
		&prop.Name,
		&prop.Address,
		&prop.City,
		&prop.Country,
		&lat,
		&lng,
		&imagesJSON,
		&bedrooms,
		&bathrooms,
		&maxGuests,
		&prop.PropertyType,
		&prop.IcalURL,
		&rawJSON,
		&prop.Active,
		&prop.CreatedAt,
		&prop.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	prop.Latitude = FloatPtr(lat)
	prop.Longitude = FloatPtr(lng)
	prop.Bedrooms = IntPtr(bedrooms)
	prop.Bathrooms = FloatPtr(bathrooms)
	prop.MaxGuests = IntPtr(maxGuests)

	if err := json.Unmarshal(imagesJSON, &prop.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &prop.RawData); err != nil {
			return nil, fmt.Errorf("unmarshal raw data: %w", err)
		}
	}

	return &prop, nil
}

// UpdateSynced updates the fields a sync pass owns, in place
func (s *PropertyStore) UpdateSynced(ctx context.Context, id string, name string, imgs []string, icalURL string) error {
	imagesJSON, err := json.Marshal(images(imgs))
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	query := `UPDATE properties SET name = $2, images = $3, ical_url = $4, updated_at = now() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, name, imagesJSON, icalURL)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// images normalizes a nil slice so the column never stores JSON null.
func images(imgs []string) []string {
	if imgs == nil {
		return []string{}
	}
	return imgs
}

// marshalRawData marshals an optional payload map, keeping nil as SQL NULL.
func marshalRawData(raw map[string]any) ([]byte, error) {
	if raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal raw data: %w", err)
	}
	return b, nil
}
