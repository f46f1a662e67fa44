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
var _ driven.BookingStore = (*BookingStore)(nil)

// BookingStore implements driven.BookingStore using PostgreSQL
type BookingStore struct {
	db *DB
}

// NewBookingStore creates a new BookingStore
func NewBookingStore(db *DB) *BookingStore {
	return &BookingStore{db: db}
}

// Upsert inserts or overwrites a booking keyed on
// (property_id, booking_reference, platform).
func (s *BookingStore) Upsert(ctx context.Context, booking *domain.StoredBooking) error {
	id := booking.ID
	if id == "" {
		id = domain.GenerateID()
	}

	rawJSON, err := marshalRawData(booking.RawData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bookings (id, property_id, external_id, guest_name, guest_email, guest_phone,
		                      check_in_date, check_out_date, status, platform, booking_reference,
		                      total_price, currency, number_of_guests, notes, raw_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
		ON CONFLICT (property_id, booking_reference, platform) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			guest_name = EXCLUDED.guest_name,
			guest_email = EXCLUDED.guest_email,
			guest_phone = EXCLUDED.guest_phone,
			check_in_date = EXCLUDED.check_in_date,
			check_out_date = EXCLUDED.check_out_date,
			status = EXCLUDED.status,
			total_price = EXCLUDED.total_price,
			currency = EXCLUDED.currency,
			number_of_guests = EXCLUDED.number_of_guests,
			notes = EXCLUDED.notes,
			raw_data = EXCLUDED.raw_data,
			updated_at = now()
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		booking.PropertyID,
		booking.ExternalID,
		booking.GuestName,
		booking.GuestEmail,
		booking.GuestPhone,
		booking.CheckInDate,
		booking.CheckOutDate,
		string(booking.Status),
		string(booking.Platform),
		booking.BookingReference,
		NullFloat(booking.TotalPrice),
		booking.Currency,
		NullInt(booking.NumberOfGuests),
		booking.Notes,
		rawJSON,
	)
	return err
}

// ListByProperty retrieves bookings for an internal property id
func (s *BookingStore) ListByProperty(ctx context.Context, propertyID string) ([]*domain.StoredBooking, error) {
	query := `
		SELECT id, property_id, external_id, guest_name, guest_email, guest_phone,
		       check_in_date, check_out_date, status, platform, booking_reference,
		       total_price, currency, number_of_guests, notes, raw_data, created_at, updated_at
		FROM bookings
		WHERE property_id = $1
		ORDER BY check_in_date
	`

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.StoredBooking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.StoredBooking, error) {
	var (
		booking    domain.StoredBooking
		status     string
		platform   string
		totalPrice sql.NullFloat64
		numGuests  sql.NullInt64
		rawJSON    []byte
	)

	err := row.Scan(
		&booking.ID,
		&booking.PropertyID,
		&booking.ExternalID,
		&booking.GuestName,
		&booking.GuestEmail,
		&booking.GuestPhone,
		&booking.CheckInDate,
		&booking.CheckOutDate,
		&status,
		&platform,
		&booking.BookingReference,
		&totalPrice,
		&booking.Currency,
		&numGuests,
		&booking.Notes,
		&rawJSON,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	booking.Platform = domain.Platform(platform)
	booking.TotalPrice = FloatPtr(totalPrice)
	booking.NumberOfGuests = IntPtr(numGuests)

	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &booking.RawData); err != nil {
			return nil, fmt.Errorf("unmarshal raw data: %w", err)
		}
	}

	return &booking, nil
}
