package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// MockPropertyStore is a mock implementation of PropertyStore for testing
type MockPropertyStore struct {
	mu         sync.RWMutex
	properties map[string]*domain.StoredProperty

	// InsertErrFor makes Insert fail for a property with the given name
	InsertErrFor map[string]error
	// UpdateErr, when set, is returned by UpdateSynced
	UpdateErr error
}

// NewMockPropertyStore creates a new MockPropertyStore
func NewMockPropertyStore() *MockPropertyStore {
	return &MockPropertyStore{
		properties:   make(map[string]*domain.StoredProperty),
		InsertErrFor: make(map[string]error),
	}
}

func (m *MockPropertyStore) Get(ctx context.Context, id string) (*domain.StoredProperty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prop, ok := m.properties[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return prop, nil
}

func (m *MockPropertyStore) Insert(ctx context.Context, prop *domain.StoredProperty) (string, error) {
	if err, ok := m.InsertErrFor[prop.Name]; ok {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prop.ID == "" {
		prop.ID = domain.GenerateID()
	}
	now := time.Now()
	prop.CreatedAt = now
	prop.UpdatedAt = now
	m.properties[prop.ID] = prop
	return prop.ID, nil
}

func (m *MockPropertyStore) UpdateSynced(ctx context.Context, id string, name string, images []string, icalURL string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prop, ok := m.properties[id]
	if !ok {
		return domain.ErrNotFound
	}
	prop.Name = name
	prop.Images = images
	prop.IcalURL = icalURL
	prop.UpdatedAt = time.Now()
	return nil
}

// Helper methods for testing

func (m *MockPropertyStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.properties)
}
