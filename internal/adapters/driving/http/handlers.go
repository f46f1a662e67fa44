package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driving"
)

// maxWebhookBody caps inbound webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Checks database, queue, and Redis connectivity
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "queue unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Provider catalog

// handleListProviders godoc
// @Summary      List supported PMS providers
// @Tags         Providers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.ProviderInfo
// @Router       /pms/providers [get]
func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": domain.ProviderCatalog(),
	})
}

// Connection endpoints

// handleConnect godoc
// @Summary      Connect a PMS provider
// @Description  Tests the supplied credentials against the provider and stores the connection. Reconnecting an (organization, provider) pair replaces the stored credentials.
// @Tags         Connections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.ConnectRequest  true  "Provider credentials"
// @Success      201      {object}  domain.ConnectionSummary
// @Failure      400      {object}  ErrorResponse  "Invalid provider or missing fields"
// @Failure      401      {object}  ErrorResponse  "Credential test failed"
// @Router       /pms/connections [post]
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	var req driving.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Connections are always scoped to the caller's organization.
	req.OrganizationID = authCtx.OrganizationID

	summary, err := s.connectionService.Connect(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownProvider):
			writeError(w, http.StatusBadRequest, "unknown provider")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAuthFailed):
			writeError(w, http.StatusUnauthorized, "provider rejected the credentials")
		default:
			s.logger.Error("connect failed", "error", err)
			writeError(w, http.StatusBadGateway, "could not reach provider")
		}
		return
	}

	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	summaries, err := s.connectionService.List(r.Context(), authCtx.OrganizationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list connections")
		return
	}

	if summaries == nil {
		summaries = []*domain.ConnectionSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": summaries})
}

func (s *Server) handleGetConnection(w http.ResponseWriter, r *http.Request) {
	summary := s.ownedConnection(w, r)
	if summary == nil {
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleDisconnect godoc
// @Summary      Disconnect a PMS provider
// @Description  Flips the connection to inactive. Connections are never hard-deleted.
// @Tags         Connections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pms/connections/{id} [delete]
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	summary := s.ownedConnection(w, r)
	if summary == nil {
		return
	}

	if err := s.connectionService.Disconnect(r.Context(), summary.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "connection not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// Sync endpoints

// handleTriggerSync godoc
// @Summary      Trigger a manual sync
// @Description  Enqueues a background sync task for the connection
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pms/connections/{id}/sync [post]
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	summary := s.ownedConnection(w, r)
	if summary == nil {
		return
	}

	task := domain.NewSyncConnectionTask(summary.ID)
	if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
		s.logger.Error("failed to enqueue sync task", "connection_id", summary.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to enqueue sync")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"task_id": task.ID,
	})
}

func (s *Server) handleSyncResults(w http.ResponseWriter, r *http.Request) {
	summary := s.ownedConnection(w, r)
	if summary == nil {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	results, err := s.syncService.SyncResults(r.Context(), summary.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read sync results")
		return
	}

	if results == nil {
		results = []*domain.SyncResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Webhook endpoint

// handleWebhook godoc
// @Summary      Receive a provider webhook
// @Description  Accepts a push notification from a PMS provider and triggers sync for every active connection of that provider. Signature enforcement applies per connection.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  ErrorResponse  "Bad payload"
// @Failure      404  {object}  ErrorResponse  "Unknown provider"
// @Router       /pms/{provider}/webhook [post]
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	provider := domain.ProviderName(r.PathValue("provider"))
	if !domain.IsSupportedProvider(provider) {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	payload := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
	}

	event := &domain.WebhookEvent{
		Provider:   provider,
		EventType:  webhookEventType(payload),
		Payload:    payload,
		RawBody:    body,
		Signature:  webhookSignature(r),
		ReceivedAt: time.Now(),
	}

	if err := s.webhookService.Dispatch(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			writeError(w, http.StatusNotFound, "unknown provider")
			return
		}
		s.logger.Error("webhook dispatch failed", "provider", provider, "error", err)
		writeError(w, http.StatusInternalServerError, "webhook dispatch failed")
		return
	}

	// Providers retry on non-2xx; a bad individual connection never
	// surfaces here.
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// webhookEventType pulls a best-effort event name out of the payload.
// Providers disagree on the field name.
func webhookEventType(payload map[string]any) string {
	for _, key := range []string{"event", "type", "action"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// webhookSignature reads the provider signature header, if any.
func webhookSignature(r *http.Request) string {
	if sig := r.Header.Get("X-Webhook-Signature"); sig != "" {
		return sig
	}
	return r.Header.Get("X-Signature")
}

// ownedConnection loads the {id} connection and enforces organization
// ownership. Writes the error response and returns nil when the caller
// should stop.
func (s *Server) ownedConnection(w http.ResponseWriter, r *http.Request) *domain.ConnectionSummary {
	authCtx := GetAuthContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing connection id")
		return nil
	}

	summary, err := s.connectionService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "connection not found")
			return nil
		}
		writeError(w, http.StatusInternalServerError, "failed to load connection")
		return nil
	}

	// Hide other organizations' connections entirely.
	if summary.OrganizationID != authCtx.OrganizationID {
		writeError(w, http.StatusNotFound, "connection not found")
		return nil
	}

	return summary
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
