package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

// MockConnectionStore is a mock implementation of ConnectionStore for testing
type MockConnectionStore struct {
	mu          sync.RWMutex
	connections map[string]*domain.Connection

	// SaveErr, when set, is returned by Save
	SaveErr error
}

// NewMockConnectionStore creates a new MockConnectionStore
func NewMockConnectionStore() *MockConnectionStore {
	return &MockConnectionStore{
		connections: make(map[string]*domain.Connection),
	}
}

func (m *MockConnectionStore) Get(ctx context.Context, id string) (*domain.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.connections[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return conn, nil
}

func (m *MockConnectionStore) GetByOrgProvider(ctx context.Context, organizationID string, provider domain.ProviderName) (*domain.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.connections {
		if conn.OrganizationID == organizationID && conn.Provider == provider {
			return conn, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockConnectionStore) ListActiveByProvider(ctx context.Context, provider domain.ProviderName) ([]*domain.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Connection
	for _, conn := range m.connections {
		if conn.Provider == provider && conn.Status == domain.ConnectionStatusActive {
			result = append(result, conn)
		}
	}
	return result, nil
}

func (m *MockConnectionStore) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Connection
	for _, conn := range m.connections {
		if conn.OrganizationID == organizationID {
			result = append(result, conn)
		}
	}
	return result, nil
}

func (m *MockConnectionStore) Save(ctx context.Context, conn *domain.Connection) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if conn.ID == "" {
		conn.ID = domain.GenerateID()
	}
	// Enforce one connection per (organization, provider)
	for id, existing := range m.connections {
		if existing.OrganizationID == conn.OrganizationID && existing.Provider == conn.Provider && id != conn.ID {
			conn.ID = id
			break
		}
	}
	m.connections[conn.ID] = conn
	return nil
}

func (m *MockConnectionStore) UpdateStatus(ctx context.Context, id string, status domain.ConnectionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn, ok := m.connections[id]
	if !ok {
		return domain.ErrNotFound
	}
	conn.Status = status
	return nil
}

func (m *MockConnectionStore) TouchLastSync(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn, ok := m.connections[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	conn.LastSync = &now
	conn.Status = domain.ConnectionStatusActive
	return nil
}

// Helper methods for testing

func (m *MockConnectionStore) Put(conn *domain.Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.ID] = conn
}

func (m *MockConnectionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}
