package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// MockBookingStore is a mock implementation of BookingStore for testing.
// It keys storage on the (property, reference, platform) idempotence triple
// the same way the postgres unique constraint does.
type MockBookingStore struct {
	mu       sync.RWMutex
	bookings map[string]*domain.StoredBooking

	// UpsertErrFor makes Upsert fail for a booking with the given external id
	UpsertErrFor map[string]error
}

// NewMockBookingStore creates a new MockBookingStore
func NewMockBookingStore() *MockBookingStore {
	return &MockBookingStore{
		bookings:     make(map[string]*domain.StoredBooking),
		UpsertErrFor: make(map[string]error),
	}
}

func upsertKey(b *domain.StoredBooking) string {
	return fmt.Sprintf("%s|%s|%s", b.PropertyID, b.BookingReference, b.Platform)
}

func (m *MockBookingStore) Upsert(ctx context.Context, booking *domain.StoredBooking) error {
	if err, ok := m.UpsertErrFor[booking.ExternalID]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := upsertKey(booking)
	if existing, ok := m.bookings[key]; ok {
		booking.ID = existing.ID
		booking.CreatedAt = existing.CreatedAt
	} else {
		booking.ID = domain.GenerateID()
		booking.CreatedAt = time.Now()
	}
	booking.UpdatedAt = time.Now()
	m.bookings[key] = booking
	return nil
}

func (m *MockBookingStore) ListByProperty(ctx context.Context, propertyID string) ([]*domain.StoredBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.StoredBooking
	for _, b := range m.bookings {
		if b.PropertyID == propertyID {
			result = append(result, b)
		}
	}
	return result, nil
}

// Helper methods for testing

func (m *MockBookingStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *MockBookingStore) GetByKey(propertyID, reference string, platform domain.Platform) *domain.StoredBooking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[fmt.Sprintf("%s|%s|%s", propertyID, reference, platform)]
}
