package guesty

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

func testConfig() domain.ProviderConfig {
	return domain.ProviderConfig{
		Provider:     domain.ProviderGuesty,
		ClientID:     "guesty-client",
		ClientSecret: "guesty-secret",
	}
}

func newTestServer(t *testing.T, tokenCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("expected client_credentials, got %q", r.Form.Get("grant_type"))
		}
		w.Write([]byte(`{"access_token":"gtok","token_type":"Bearer","expires_in":86400}`))
	})

	mux.HandleFunc("GET /listings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gtok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"results":[
			{"_id":"lst-1","title":"Harbour House","address":{"full":"2 Quay St, Auckland","city":"Auckland","country":"NZ","lat":-36.84,"lng":174.76},
			 "pictures":[{"original":"https://img/h1.jpg"}],"bedrooms":2,"accommodates":4,"propertyType":"House"},
			{"_id":"lst-2","nickname":"The Shed"}
		],"count":2,"limit":100,"skip":0}`))
	})

	mux.HandleFunc("GET /reservations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gtok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("listingId") != "lst-1" {
			t.Errorf("expected listingId=lst-1, got %q", r.URL.Query().Get("listingId"))
		}
		w.Write([]byte(`{"results":[
			{"_id":"res-1","listingId":"lst-1","confirmationCode":"GY-1","checkInDateLocalized":"2026-09-01",
			 "checkOutDateLocalized":"2026-09-04","status":"checked_in","source":"Airbnb",
			 "money":{"totalPaid":540,"currency":"NZD"},"guestsCount":2,
			 "guest":{"_id":"g-1","fullName":"Ada Lovelace","email":"ada@example.com"}},
			{"_id":"res-2","listingId":"lst-1","checkInDateLocalized":"2026-10-01",
			 "checkOutDateLocalized":"2026-10-02","status":"inquiry"}
		],"count":2,"limit":100,"skip":0}`))
	})

	return httptest.NewServer(mux)
}

func newTestProvider(server *httptest.Server) *Provider {
	return newProvider(testConfig(), nil, server.URL, server.URL+"/oauth2/token")
}

func TestSyncProperties(t *testing.T) {
	var tokenCalls atomic.Int32
	server := newTestServer(t, &tokenCalls)
	defer server.Close()

	provider := newTestProvider(server)

	properties, err := provider.SyncProperties(context.Background())
	if err != nil {
		t.Fatalf("SyncProperties failed: %v", err)
	}
	if len(properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(properties))
	}

	house := properties[0]
	if house.ExternalID != "lst-1" {
		t.Errorf("expected lst-1, got %s", house.ExternalID)
	}
	if house.Address != "2 Quay St, Auckland" {
		t.Errorf("expected full address, got %s", house.Address)
	}
	if house.MaxGuests == nil || *house.MaxGuests != 4 {
		t.Errorf("expected accommodates 4, got %v", house.MaxGuests)
	}

	// nickname fallback when title is absent
	shed := properties[1]
	if shed.Name != "The Shed" {
		t.Errorf("expected nickname fallback, got %s", shed.Name)
	}
}

func TestTokenCached(t *testing.T) {
	var tokenCalls atomic.Int32
	server := newTestServer(t, &tokenCalls)
	defer server.Close()

	provider := newTestProvider(server)
	ctx := context.Background()

	if _, err := provider.SyncProperties(ctx); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := provider.SyncBookings(ctx, "lst-1"); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if tokenCalls.Load() != 1 {
		t.Errorf("expected 1 token fetch, got %d", tokenCalls.Load())
	}
}

func TestSyncBookings(t *testing.T) {
	var tokenCalls atomic.Int32
	server := newTestServer(t, &tokenCalls)
	defer server.Close()

	provider := newTestProvider(server)

	bookings, err := provider.SyncBookings(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("SyncBookings failed: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}

	first := bookings[0]
	if first.Status != domain.BookingStatusConfirmed {
		t.Errorf("checked_in should map to confirmed, got %s", first.Status)
	}
	if first.CheckInDate != "2026-09-01" {
		t.Errorf("unexpected check-in %s", first.CheckInDate)
	}
	if first.TotalPrice == nil || *first.TotalPrice != 540 {
		t.Errorf("unexpected total price %v", first.TotalPrice)
	}
	if first.BookingReference != "GY-1" {
		t.Errorf("expected confirmation code as reference, got %s", first.BookingReference)
	}

	second := bookings[1]
	if second.Status != domain.BookingStatusPending {
		t.Errorf("inquiry should map to pending, got %s", second.Status)
	}
	if second.GuestName != "Unknown" {
		t.Errorf("expected Unknown fallback, got %s", second.GuestName)
	}
	if second.Platform != "guesty" {
		t.Errorf("expected guesty fallback platform, got %s", second.Platform)
	}
}

func TestAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := newProvider(testConfig(), nil, server.URL, server.URL+"/oauth2/token")

	_, err := provider.SyncProperties(context.Background())
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.BookingStatus
	}{
		{"confirmed", domain.BookingStatusConfirmed},
		{"reserved", domain.BookingStatusConfirmed},
		{"checked_in", domain.BookingStatusConfirmed},
		{"checked_out", domain.BookingStatusCompleted},
		{"canceled", domain.BookingStatusCancelled},
		{"cancelled", domain.BookingStatusCancelled},
		{"inquiry", domain.BookingStatusPending},
		{"unmapped", domain.BookingStatusConfirmed},
	}

	for _, tt := range tests {
		if got := mapStatus(tt.raw); got != tt.want {
			t.Errorf("mapStatus(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
