package domain

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the canonical booking status
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusPending   BookingStatus = "pending"
)

// Platform is the normalized source channel for a booking
type Platform string

const (
	PlatformAirbnb  Platform = "airbnb"
	PlatformBooking Platform = "booking"
	PlatformOther   Platform = "other"
)

// Booking is the canonical booking shape shared across all providers.
// Check-in/check-out are calendar dates (YYYY-MM-DD) with no time component;
// providers never supply a timezone, so we do not invent one.
type Booking struct {
	ExternalID         string        `json:"external_id"`
	PropertyExternalID string        `json:"property_external_id"`
	GuestName          string        `json:"guest_name"`
	GuestEmail         string        `json:"guest_email,omitempty"`
	GuestPhone         string        `json:"guest_phone,omitempty"`
	CheckInDate        string        `json:"check_in_date"`
	CheckOutDate       string        `json:"check_out_date"`
	Status             BookingStatus `json:"status"`
	Platform           string        `json:"platform,omitempty"` // raw channel name, lowercased
	BookingReference   string        `json:"booking_reference,omitempty"`
	TotalPrice         *float64      `json:"total_price,omitempty"`
	Currency           string        `json:"currency,omitempty"`
	NumberOfGuests     *int          `json:"number_of_guests,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	RawData            map[string]any `json:"raw_data,omitempty"`
}

// Reference returns the idempotence reference for this booking: the booking
// reference when present, otherwise the external id.
func (b *Booking) Reference() string {
	if b.BookingReference != "" {
		return b.BookingReference
	}
	return b.ExternalID
}

// ValidateStay checks the check-in <= check-out invariant and that both
// values are well-formed calendar dates.
func (b *Booking) ValidateStay() error {
	in, err := time.Parse("2006-01-02", b.CheckInDate)
	if err != nil {
		return fmt.Errorf("%w: check_in_date %q", ErrInvalidInput, b.CheckInDate)
	}
	out, err := time.Parse("2006-01-02", b.CheckOutDate)
	if err != nil {
		return fmt.Errorf("%w: check_out_date %q", ErrInvalidInput, b.CheckOutDate)
	}
	if in.After(out) {
		return fmt.Errorf("%w: check-in %s after check-out %s", ErrInvalidInput, b.CheckInDate, b.CheckOutDate)
	}
	return nil
}

// NormalizePlatform collapses a raw channel name into the closed platform set.
// Anything not containing "airbnb" or "booking" maps to "other"; this is lossy
// by design, the raw value stays available in RawData.
func NormalizePlatform(raw string) Platform {
	p := strings.ToLower(raw)
	switch {
	case strings.Contains(p, "airbnb"):
		return PlatformAirbnb
	case strings.Contains(p, "booking"):
		return PlatformBooking
	default:
		return PlatformOther
	}
}

// StoredBooking is an internal booking row. Identity for idempotent storage is
// the (PropertyID, BookingReference, Platform) triple: a newer sync with the
// same triple overwrites fields rather than duplicating the record.
type StoredBooking struct {
	ID               string        `json:"id"`
	PropertyID       string        `json:"property_id"`
	ExternalID       string        `json:"external_id"`
	GuestName        string        `json:"guest_name"`
	GuestEmail       string        `json:"guest_email,omitempty"`
	GuestPhone       string        `json:"guest_phone,omitempty"`
	CheckInDate      string        `json:"check_in_date"`
	CheckOutDate     string        `json:"check_out_date"`
	Status           BookingStatus `json:"status"`
	Platform         Platform      `json:"platform"`
	BookingReference string        `json:"booking_reference"`
	TotalPrice       *float64      `json:"total_price,omitempty"`
	Currency         string        `json:"currency,omitempty"`
	NumberOfGuests   *int          `json:"number_of_guests,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	RawData          map[string]any `json:"raw_data,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
