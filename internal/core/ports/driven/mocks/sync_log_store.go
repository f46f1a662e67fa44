package mocks

import (
	"context"
	"sync"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// MockSyncLogStore is a mock implementation of SyncLogStore for testing
type MockSyncLogStore struct {
	mu      sync.RWMutex
	results []*domain.SyncResult
}

// NewMockSyncLogStore creates a new MockSyncLogStore
func NewMockSyncLogStore() *MockSyncLogStore {
	return &MockSyncLogStore{}
}

func (m *MockSyncLogStore) Append(ctx context.Context, result *domain.SyncResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result.ID == "" {
		result.ID = domain.GenerateID()
	}
	m.results = append(m.results, result)
	return nil
}

func (m *MockSyncLogStore) ListByConnection(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.SyncResult
	for i := len(m.results) - 1; i >= 0; i-- {
		if m.results[i].ConnectionID == connectionID {
			result = append(result, m.results[i])
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Helper methods for testing

func (m *MockSyncLogStore) All() []*domain.SyncResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SyncResult, len(m.results))
	copy(out, m.results)
	return out
}

func (m *MockSyncLogStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results)
}
