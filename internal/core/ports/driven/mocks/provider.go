package mocks

import (
	"context"
	"sync"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// MockProvider is a mock implementation of PmsProvider for testing
type MockProvider struct {
	mu sync.Mutex

	ProviderName domain.ProviderName

	Properties    []*domain.Property
	PropertiesErr error

	// BookingsByProperty maps external property id to bookings
	BookingsByProperty map[string][]*domain.Booking
	// BookingsErrFor makes SyncBookings fail for an external property id
	BookingsErrFor map[string]error

	Guests    []*domain.Guest
	GuestsErr error

	WebhookErr error

	// Call counters
	SyncPropertiesCalls int
	SyncBookingsCalls   int
	WebhookCalls        int
	WebhookPayloads     []map[string]any
}

// NewMockProvider creates a new MockProvider
func NewMockProvider(name domain.ProviderName) *MockProvider {
	return &MockProvider{
		ProviderName:       name,
		BookingsByProperty: make(map[string][]*domain.Booking),
		BookingsErrFor:     make(map[string]error),
	}
}

func (m *MockProvider) Name() domain.ProviderName {
	return m.ProviderName
}

func (m *MockProvider) SyncProperties(ctx context.Context) ([]*domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncPropertiesCalls++
	if m.PropertiesErr != nil {
		return nil, m.PropertiesErr
	}
	return m.Properties, nil
}

func (m *MockProvider) SyncBookings(ctx context.Context, propertyExternalID string) ([]*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncBookingsCalls++
	if err, ok := m.BookingsErrFor[propertyExternalID]; ok {
		return nil, err
	}
	return m.BookingsByProperty[propertyExternalID], nil
}

func (m *MockProvider) SyncGuests(ctx context.Context, bookingExternalID string) ([]*domain.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GuestsErr != nil {
		return nil, m.GuestsErr
	}
	return m.Guests, nil
}

func (m *MockProvider) GetProperty(ctx context.Context, externalID string) (*domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Properties {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockProvider) HandleWebhook(ctx context.Context, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WebhookCalls++
	m.WebhookPayloads = append(m.WebhookPayloads, payload)
	return m.WebhookErr
}

// MockProviderFactory is a mock implementation of ProviderFactory for testing
type MockProviderFactory struct {
	Provider  *MockProvider
	CreateErr error

	CreateCalls int
	LastConfig  domain.ProviderConfig
}

// NewMockProviderFactory creates a factory that always returns the given provider
func NewMockProviderFactory(provider *MockProvider) *MockProviderFactory {
	return &MockProviderFactory{Provider: provider}
}

func (f *MockProviderFactory) Create(config domain.ProviderConfig) (driven.PmsProvider, error) {
	f.CreateCalls++
	f.LastConfig = config
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return f.Provider, nil
}
