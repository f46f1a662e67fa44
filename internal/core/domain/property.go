package domain

import "time"

// Property is the canonical property shape shared across all providers.
// ExternalID is the provider-scoped identifier; it is only unique per provider.
type Property struct {
	ExternalID   string         `json:"external_id"`
	Name         string         `json:"name"`
	Address      string         `json:"address,omitempty"`
	City         string         `json:"city,omitempty"`
	Country      string         `json:"country,omitempty"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	Images       []string       `json:"images"`
	Bedrooms     *int           `json:"bedrooms,omitempty"`
	Bathrooms    *float64       `json:"bathrooms,omitempty"`
	MaxGuests    *int           `json:"max_guests,omitempty"`
	PropertyType string         `json:"property_type,omitempty"`
	IcalURL      string         `json:"ical_url,omitempty"`

	// RawData carries the original provider payload for audit/debug.
	// It is opaque outside the adapter that produced it.
	RawData map[string]any `json:"raw_data,omitempty"`
}

// StoredProperty is an internal property row.
// The sync layer creates and updates these; it never deletes them
// (deactivation is a separate explicit operation).
type StoredProperty struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	Country        string    `json:"country,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	Images         []string  `json:"images"`
	Bedrooms       *int      `json:"bedrooms,omitempty"`
	Bathrooms      *float64  `json:"bathrooms,omitempty"`
	MaxGuests      *int      `json:"max_guests,omitempty"`
	PropertyType   string    `json:"property_type,omitempty"`
	IcalURL        string    `json:"ical_url,omitempty"`
	RawData        map[string]any `json:"raw_data,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PropertyMapping links one external property to exactly one internal property,
// scoped to an organization. It is created the first time a property is seen and
// is the mechanism that keeps repeated syncs from creating duplicates.
type PropertyMapping struct {
	ID                   string       `json:"id"`
	HcPropertyID         string       `json:"hc_property_id"`
	PmsProvider          ProviderName `json:"pms_provider"`
	ExternalPropertyID   string       `json:"external_property_id"`
	ExternalPropertyName string       `json:"external_property_name"`
	OrganizationID       string       `json:"organization_id"`
	CreatedAt            time.Time    `json:"created_at"`
}
