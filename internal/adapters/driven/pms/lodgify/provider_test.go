package lodgify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

func testConfig() domain.ProviderConfig {
	return domain.ProviderConfig{
		Provider: domain.ProviderLodgify,
		APIKey:   "lodgify-key",
	}
}

func TestSyncProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-ApiKey") != "lodgify-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v2/properties" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("size") != "50" || q.Get("page") != "1" {
			t.Errorf("unexpected pagination %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[
			{"id":401,"name":"Villa Sol","city":"Faro","country":"PT","latitude":37.02,"longitude":-7.93,
			 "images":[{"url":"https://img/v1.jpg"}],"bedrooms":4,"bathrooms":3,"max_guests":8,
			 "property_type":{"name":"Villa"}},
			{"id":402,"name":"Town Loft","image_url":"https://img/loft.jpg"}
		]`))
	}))
	defer server.Close()

	provider := newProvider(testConfig(), nil, server.URL)

	properties, err := provider.SyncProperties(context.Background())
	if err != nil {
		t.Fatalf("SyncProperties failed: %v", err)
	}
	if len(properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(properties))
	}

	villa := properties[0]
	if villa.ExternalID != "401" || villa.Name != "Villa Sol" {
		t.Errorf("unexpected property %+v", villa)
	}
	if villa.PropertyType != "Villa" {
		t.Errorf("expected Villa, got %s", villa.PropertyType)
	}
	if villa.MaxGuests == nil || *villa.MaxGuests != 8 {
		t.Errorf("expected 8 max guests, got %v", villa.MaxGuests)
	}

	// image_url fallback when images array is absent
	loft := properties[1]
	if len(loft.Images) != 1 || loft.Images[0] != "https://img/loft.jpg" {
		t.Errorf("expected image_url fallback, got %v", loft.Images)
	}
}

func TestSyncBookings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/reservations/bookings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("property_id") != "401" || q.Get("size") != "100" || q.Get("page") != "1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[
			{"id":501,"property_id":401,"guest":{"name":"Ada Lovelace","email":"ada@example.com"},
			 "arrival":"2026-09-01","departure":"2026-09-08","status":"Booked","source":"Airbnb",
			 "total_amount":980,"currency":"EUR","people":4,"booking_number":"LG-501"},
			{"id":502,"property_id":401,"arrival":"2026-09-10","departure":"2026-09-12","status":"Declined"},
			{"id":503,"property_id":401,"arrival":"2026-08-01","departure":"2026-08-05","status":"CheckedOut"}
		]`))
	}))
	defer server.Close()

	provider := newProvider(testConfig(), nil, server.URL)

	bookings, err := provider.SyncBookings(context.Background(), "401")
	if err != nil {
		t.Fatalf("SyncBookings failed: %v", err)
	}
	if len(bookings) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(bookings))
	}

	first := bookings[0]
	if first.Status != domain.BookingStatusConfirmed {
		t.Errorf("Booked should map to confirmed, got %s", first.Status)
	}
	if first.Platform != "airbnb" {
		t.Errorf("expected airbnb, got %s", first.Platform)
	}
	if first.BookingReference != "LG-501" {
		t.Errorf("expected LG-501, got %s", first.BookingReference)
	}

	if bookings[1].Status != domain.BookingStatusCancelled {
		t.Errorf("Declined should map to cancelled, got %s", bookings[1].Status)
	}
	if bookings[1].GuestName != "Unknown" {
		t.Errorf("expected Unknown fallback, got %s", bookings[1].GuestName)
	}
	if bookings[1].Platform != "lodgify" {
		t.Errorf("expected lodgify fallback platform, got %s", bookings[1].Platform)
	}

	if bookings[2].Status != domain.BookingStatusCompleted {
		t.Errorf("CheckedOut should map to completed, got %s", bookings[2].Status)
	}
}

func TestGetProperty_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	provider := newProvider(testConfig(), nil, server.URL)

	_, err := provider.GetProperty(context.Background(), "999")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.BookingStatus
	}{
		{"Booked", domain.BookingStatusConfirmed},
		{"Open", domain.BookingStatusConfirmed},
		{"Cancelled", domain.BookingStatusCancelled},
		{"Declined", domain.BookingStatusCancelled},
		{"CheckedOut", domain.BookingStatusCompleted},
		{"Unmapped", domain.BookingStatusConfirmed},
	}

	for _, tt := range tests {
		if got := mapStatus(tt.raw); got != tt.want {
			t.Errorf("mapStatus(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
