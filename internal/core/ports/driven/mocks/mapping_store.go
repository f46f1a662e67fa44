package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// MockMappingStore is a mock implementation of MappingStore for testing
type MockMappingStore struct {
	mu       sync.RWMutex
	mappings []*domain.PropertyMapping

	// InsertErrFor makes Insert fail for a mapping with the given external id
	InsertErrFor map[string]error
}

// NewMockMappingStore creates a new MockMappingStore
func NewMockMappingStore() *MockMappingStore {
	return &MockMappingStore{
		InsertErrFor: make(map[string]error),
	}
}

func (m *MockMappingStore) Get(ctx context.Context, provider domain.ProviderName, externalID, organizationID string) (*domain.PropertyMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mapping := range m.mappings {
		if mapping.PmsProvider == provider && mapping.ExternalPropertyID == externalID && mapping.OrganizationID == organizationID {
			return mapping, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockMappingStore) ListByConnection(ctx context.Context, provider domain.ProviderName, organizationID string) ([]*domain.PropertyMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PropertyMapping
	for _, mapping := range m.mappings {
		if mapping.PmsProvider == provider && mapping.OrganizationID == organizationID {
			result = append(result, mapping)
		}
	}
	return result, nil
}

func (m *MockMappingStore) Insert(ctx context.Context, mapping *domain.PropertyMapping) error {
	if err, ok := m.InsertErrFor[mapping.ExternalPropertyID]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mapping.ID == "" {
		mapping.ID = domain.GenerateID()
	}
	mapping.CreatedAt = time.Now()
	m.mappings = append(m.mappings, mapping)
	return nil
}

// Helper methods for testing

func (m *MockMappingStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.mappings)
}
