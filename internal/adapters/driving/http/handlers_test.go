package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driving"
)

// Mock services for testing

type mockConnectionService struct {
	connectFn    func(ctx context.Context, req driving.ConnectRequest) (*domain.ConnectionSummary, error)
	disconnectFn func(ctx context.Context, connectionID string) error
	getFn        func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error)
	listFn       func(ctx context.Context, organizationID string) ([]*domain.ConnectionSummary, error)
}

func (m *mockConnectionService) Connect(ctx context.Context, req driving.ConnectRequest) (*domain.ConnectionSummary, error) {
	if m.connectFn != nil {
		return m.connectFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockConnectionService) Disconnect(ctx context.Context, connectionID string) error {
	if m.disconnectFn != nil {
		return m.disconnectFn(ctx, connectionID)
	}
	return errors.New("not implemented")
}

func (m *mockConnectionService) Get(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
	if m.getFn != nil {
		return m.getFn(ctx, connectionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockConnectionService) List(ctx context.Context, organizationID string) ([]*domain.ConnectionSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, organizationID)
	}
	return nil, errors.New("not implemented")
}

type mockSyncService struct {
	syncConnectionFn func(ctx context.Context, connectionID string) ([]*domain.SyncResult, error)
	syncAllFn        func(ctx context.Context) ([]*domain.SyncResult, error)
	syncResultsFn    func(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error)
}

func (m *mockSyncService) SyncConnection(ctx context.Context, connectionID string) ([]*domain.SyncResult, error) {
	if m.syncConnectionFn != nil {
		return m.syncConnectionFn(ctx, connectionID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSyncService) SyncAll(ctx context.Context) ([]*domain.SyncResult, error) {
	if m.syncAllFn != nil {
		return m.syncAllFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSyncService) SyncResults(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error) {
	if m.syncResultsFn != nil {
		return m.syncResultsFn(ctx, connectionID, limit)
	}
	return nil, errors.New("not implemented")
}

type mockWebhookService struct {
	dispatchFn func(ctx context.Context, event *domain.WebhookEvent) error
}

func (m *mockWebhookService) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, event)
	}
	return errors.New("not implemented")
}

type mockQueue struct {
	enqueueFn func(ctx context.Context, task *domain.Task) error
	pingFn    func(ctx context.Context) error
	enqueued  []*domain.Task
}

func (m *mockQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	m.enqueued = append(m.enqueued, task)
	return nil
}

func (m *mockQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	return nil, nil
}

func (m *mockQueue) Ack(ctx context.Context, taskID string) error {
	return nil
}

func (m *mockQueue) Nack(ctx context.Context, taskID string, reason string) error {
	return nil
}

func (m *mockQueue) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockQueue) Close() error {
	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedRequest(r *http.Request, orgID string) *http.Request {
	ctx := context.WithValue(r.Context(), authContextKey, &AuthContext{
		UserID:         "user-1",
		OrganizationID: orgID,
	})
	return r.WithContext(ctx)
}

func TestHealthHandler(t *testing.T) {
	server := &Server{version: "test", logger: quietLogger()}

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	server.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %s", response["status"])
	}
}

func TestReadyHandler(t *testing.T) {
	server := &Server{
		version:   "test",
		logger:    quietLogger(),
		db:        &mockPinger{},
		taskQueue: &mockQueue{},
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestReadyHandler_DatabaseDown(t *testing.T) {
	server := &Server{
		version:   "test",
		logger:    quietLogger(),
		db:        &mockPinger{err: errors.New("connection refused")},
		taskQueue: &mockQueue{},
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestReadyHandler_QueueDown(t *testing.T) {
	server := &Server{
		version: "test",
		logger:  quietLogger(),
		db:      &mockPinger{},
		taskQueue: &mockQueue{pingFn: func(ctx context.Context) error {
			return errors.New("redis down")
		}},
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	server := &Server{version: "1.2.3", logger: quietLogger()}

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()

	server.handleVersion(rr, req)

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["version"] != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response["version"])
	}
}

func TestListProviders(t *testing.T) {
	server := &Server{logger: quietLogger()}

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/providers", nil), "org-1")
	rr := httptest.NewRecorder()

	server.handleListProviders(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response struct {
		Providers []domain.ProviderInfo `json:"providers"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Providers) != 5 {
		t.Errorf("expected 5 providers, got %d", len(response.Providers))
	}
}

func TestHandleConnect(t *testing.T) {
	var captured driving.ConnectRequest
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			connectFn: func(ctx context.Context, req driving.ConnectRequest) (*domain.ConnectionSummary, error) {
				captured = req
				return &domain.ConnectionSummary{
					ID:             "conn-1",
					OrganizationID: req.OrganizationID,
					Provider:       req.Provider,
					Status:         domain.ConnectionStatusActive,
				}, nil
			},
		},
	}

	body, _ := json.Marshal(driving.ConnectRequest{
		OrganizationID: "org-spoofed",
		Provider:       domain.ProviderSmoobu,
		APIKey:         "key-123",
	})
	req := authedRequest(httptest.NewRequest("POST", "/api/v1/pms/connections", bytes.NewReader(body)), "org-1")
	rr := httptest.NewRecorder()

	server.handleConnect(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	// The token's organization always wins over the request body.
	if captured.OrganizationID != "org-1" {
		t.Errorf("expected organization from token, got %s", captured.OrganizationID)
	}
	if captured.APIKey != "key-123" {
		t.Errorf("expected api key to pass through, got %s", captured.APIKey)
	}
}

func TestHandleConnect_InvalidJSON(t *testing.T) {
	server := &Server{logger: quietLogger()}

	req := authedRequest(httptest.NewRequest("POST", "/api/v1/pms/connections", bytes.NewBufferString("invalid json")), "org-1")
	rr := httptest.NewRecorder()

	server.handleConnect(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleConnect_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unknown provider", domain.ErrUnknownProvider, http.StatusBadRequest},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"auth failed", domain.ErrAuthFailed, http.StatusUnauthorized},
		{"provider unreachable", errors.New("timeout"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &Server{
				logger: quietLogger(),
				connectionService: &mockConnectionService{
					connectFn: func(ctx context.Context, req driving.ConnectRequest) (*domain.ConnectionSummary, error) {
						return nil, tt.serviceErr
					},
				},
			}

			body, _ := json.Marshal(driving.ConnectRequest{Provider: domain.ProviderHostaway})
			req := authedRequest(httptest.NewRequest("POST", "/api/v1/pms/connections", bytes.NewReader(body)), "org-1")
			rr := httptest.NewRecorder()

			server.handleConnect(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleListConnections(t *testing.T) {
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			listFn: func(ctx context.Context, organizationID string) ([]*domain.ConnectionSummary, error) {
				if organizationID != "org-1" {
					t.Errorf("expected org-1, got %s", organizationID)
				}
				return []*domain.ConnectionSummary{
					{ID: "conn-1", OrganizationID: "org-1", Provider: domain.ProviderHostaway},
				}, nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/connections", nil), "org-1")
	rr := httptest.NewRecorder()

	server.handleListConnections(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response struct {
		Connections []*domain.ConnectionSummary `json:"connections"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Connections) != 1 {
		t.Errorf("expected 1 connection, got %d", len(response.Connections))
	}
}

func TestHandleListConnections_Empty(t *testing.T) {
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			listFn: func(ctx context.Context, organizationID string) ([]*domain.ConnectionSummary, error) {
				return nil, nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/connections", nil), "org-1")
	rr := httptest.NewRecorder()

	server.handleListConnections(rr, req)

	// A nil slice must still serialize as [].
	var response map[string]json.RawMessage
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(response["connections"]) != "[]" {
		t.Errorf("expected empty array, got %s", response["connections"])
	}
}

func TestHandleGetConnection(t *testing.T) {
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return &domain.ConnectionSummary{ID: connectionID, OrganizationID: "org-1"}, nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/connections/conn-1", nil), "org-1")
	req.SetPathValue("id", "conn-1")
	rr := httptest.NewRecorder()

	server.handleGetConnection(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestHandleGetConnection_NotFound(t *testing.T) {
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return nil, domain.ErrNotFound
			},
		},
	}

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/connections/missing", nil), "org-1")
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()

	server.handleGetConnection(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleGetConnection_WrongOrganization(t *testing.T) {
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return &domain.ConnectionSummary{ID: connectionID, OrganizationID: "org-other"}, nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/connections/conn-1", nil), "org-1")
	req.SetPathValue("id", "conn-1")
	rr := httptest.NewRecorder()

	server.handleGetConnection(rr, req)

	// Other organizations' connections look like they do not exist.
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleDisconnect(t *testing.T) {
	disconnected := ""
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return &domain.ConnectionSummary{ID: connectionID, OrganizationID: "org-1"}, nil
			},
			disconnectFn: func(ctx context.Context, connectionID string) error {
				disconnected = connectionID
				return nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("DELETE", "/api/v1/pms/connections/conn-1", nil), "org-1")
	req.SetPathValue("id", "conn-1")
	rr := httptest.NewRecorder()

	server.handleDisconnect(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if disconnected != "conn-1" {
		t.Errorf("expected conn-1 to be disconnected, got %q", disconnected)
	}
}

func TestHandleTriggerSync(t *testing.T) {
	queue := &mockQueue{}
	server := &Server{
		logger:    quietLogger(),
		taskQueue: queue,
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return &domain.ConnectionSummary{ID: connectionID, OrganizationID: "org-1"}, nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("POST", "/api/v1/pms/connections/conn-1/sync", nil), "org-1")
	req.SetPathValue("id", "conn-1")
	rr := httptest.NewRecorder()

	server.handleTriggerSync(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rr.Code)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued task, got %d", len(queue.enqueued))
	}
	task := queue.enqueued[0]
	if task.Type != domain.TaskTypeSyncConnection {
		t.Errorf("expected sync_connection task, got %s", task.Type)
	}
	if task.Payload["connection_id"] != "conn-1" {
		t.Errorf("expected connection_id conn-1, got %s", task.Payload["connection_id"])
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["task_id"] != task.ID {
		t.Errorf("expected task_id %s, got %s", task.ID, response["task_id"])
	}
}

func TestHandleTriggerSync_EnqueueFails(t *testing.T) {
	server := &Server{
		logger: quietLogger(),
		taskQueue: &mockQueue{enqueueFn: func(ctx context.Context, task *domain.Task) error {
			return errors.New("queue full")
		}},
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return &domain.ConnectionSummary{ID: connectionID, OrganizationID: "org-1"}, nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("POST", "/api/v1/pms/connections/conn-1/sync", nil), "org-1")
	req.SetPathValue("id", "conn-1")
	rr := httptest.NewRecorder()

	server.handleTriggerSync(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestHandleSyncResults(t *testing.T) {
	var gotLimit int
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return &domain.ConnectionSummary{ID: connectionID, OrganizationID: "org-1"}, nil
			},
		},
		syncService: &mockSyncService{
			syncResultsFn: func(ctx context.Context, connectionID string, limit int) ([]*domain.SyncResult, error) {
				gotLimit = limit
				return []*domain.SyncResult{
					{ConnectionID: connectionID, SyncType: domain.SyncTypeProperties, Status: domain.SyncStatusSuccess},
				}, nil
			},
		},
	}

	req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/connections/conn-1/sync-results?limit=5", nil), "org-1")
	req.SetPathValue("id", "conn-1")
	rr := httptest.NewRecorder()

	server.handleSyncResults(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5, got %d", gotLimit)
	}
}

func TestHandleSyncResults_InvalidLimit(t *testing.T) {
	server := &Server{
		logger: quietLogger(),
		connectionService: &mockConnectionService{
			getFn: func(ctx context.Context, connectionID string) (*domain.ConnectionSummary, error) {
				return &domain.ConnectionSummary{ID: connectionID, OrganizationID: "org-1"}, nil
			},
		},
	}

	for _, limit := range []string{"0", "-1", "101", "abc"} {
		req := authedRequest(httptest.NewRequest("GET", "/api/v1/pms/connections/conn-1/sync-results?limit="+limit, nil), "org-1")
		req.SetPathValue("id", "conn-1")
		rr := httptest.NewRecorder()

		server.handleSyncResults(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected status 400, got %d", limit, rr.Code)
		}
	}
}

func TestHandleWebhook(t *testing.T) {
	var gotEvent *domain.WebhookEvent
	server := &Server{
		logger: quietLogger(),
		webhookService: &mockWebhookService{
			dispatchFn: func(ctx context.Context, event *domain.WebhookEvent) error {
				gotEvent = event
				return nil
			},
		},
	}

	body := `{"event":"reservation.created","reservationId":12345}`
	req := httptest.NewRequest("POST", "/api/v1/pms/hostaway/webhook", bytes.NewBufferString(body))
	req.SetPathValue("provider", "hostaway")
	req.Header.Set("X-Webhook-Signature", "sig-abc")
	rr := httptest.NewRecorder()

	server.handleWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response map[string]bool
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response["ok"] {
		t.Errorf("expected ok true")
	}

	if gotEvent == nil {
		t.Fatal("expected dispatch to be called")
	}
	if gotEvent.Provider != domain.ProviderHostaway {
		t.Errorf("expected provider hostaway, got %s", gotEvent.Provider)
	}
	if gotEvent.EventType != "reservation.created" {
		t.Errorf("expected event type reservation.created, got %s", gotEvent.EventType)
	}
	if gotEvent.Signature != "sig-abc" {
		t.Errorf("expected signature sig-abc, got %s", gotEvent.Signature)
	}
	if string(gotEvent.RawBody) != body {
		t.Errorf("expected raw body to be preserved")
	}
}

func TestHandleWebhook_FallbackSignatureHeader(t *testing.T) {
	var gotEvent *domain.WebhookEvent
	server := &Server{
		logger: quietLogger(),
		webhookService: &mockWebhookService{
			dispatchFn: func(ctx context.Context, event *domain.WebhookEvent) error {
				gotEvent = event
				return nil
			},
		},
	}

	req := httptest.NewRequest("POST", "/api/v1/pms/smoobu/webhook", bytes.NewBufferString(`{"action":"updateReservation"}`))
	req.SetPathValue("provider", "smoobu")
	req.Header.Set("X-Signature", "sig-fallback")
	rr := httptest.NewRecorder()

	server.handleWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotEvent.Signature != "sig-fallback" {
		t.Errorf("expected fallback signature, got %s", gotEvent.Signature)
	}
	if gotEvent.EventType != "updateReservation" {
		t.Errorf("expected action field as event type, got %s", gotEvent.EventType)
	}
}

func TestHandleWebhook_UnknownProvider(t *testing.T) {
	server := &Server{logger: quietLogger()}

	req := httptest.NewRequest("POST", "/api/v1/pms/airnbn/webhook", bytes.NewBufferString(`{}`))
	req.SetPathValue("provider", "airnbn")
	rr := httptest.NewRecorder()

	server.handleWebhook(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	server := &Server{logger: quietLogger()}

	req := httptest.NewRequest("POST", "/api/v1/pms/lodgify/webhook", bytes.NewBufferString("not json"))
	req.SetPathValue("provider", "lodgify")
	rr := httptest.NewRecorder()

	server.handleWebhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"foo": "bar"})

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "invalid input")

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["error"] != "invalid input" {
		t.Errorf("expected error 'invalid input', got %s", response["error"])
	}
}
