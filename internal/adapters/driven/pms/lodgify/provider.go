package lodgify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/heyconcierge/pms-core/internal/adapters/driven/pms"
	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Lodgify API: https://docs.lodgify.com
// Auth: static X-ApiKey header.

const defaultBaseURL = "https://api.lodgify.com"

var _ driven.PmsProvider = (*Provider)(nil)

// Provider is the Lodgify adapter.
type Provider struct {
	client *pms.Client
	logger *slog.Logger
}

// New creates a Lodgify provider against the production API.
func New(config domain.ProviderConfig, logger *slog.Logger) *Provider {
	return newProvider(config, logger, defaultBaseURL)
}

func newProvider(config domain.ProviderConfig, logger *slog.Logger, baseURL string) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	client := pms.NewClient(pms.ClientConfig{
		Provider: domain.ProviderLodgify,
		BaseURL:  baseURL,
		Headers: map[string]string{
			"X-ApiKey": config.APIKey,
			"Accept":   "application/json",
		},
	})
	return &Provider{client: client, logger: logger}
}

func (p *Provider) Name() domain.ProviderName {
	return domain.ProviderLodgify
}

type property struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ImageURL     string   `json:"image_url"`
	Images       []struct {
		URL string `json:"url"`
	} `json:"images"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	MaxGuests    *int     `json:"max_guests"`
	PropertyType *struct {
		Name string `json:"name"`
	} `json:"property_type"`
}

type booking struct {
	ID         int `json:"id"`
	PropertyID int `json:"property_id"`
	Guest      *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"guest"`
	Arrival       string   `json:"arrival"`
	Departure     string   `json:"departure"`
	Status        string   `json:"status"`
	Source        string   `json:"source"`
	TotalAmount   *float64 `json:"total_amount"`
	Currency      string   `json:"currency"`
	People        *int     `json:"people"`
	Notes         string   `json:"notes"`
	BookingNumber string   `json:"booking_number"`
}

// SyncProperties lists properties. The v2 endpoint returns a bare array; one
// page of 50 covers every account this integration serves.
func (p *Provider) SyncProperties(ctx context.Context) ([]*domain.Property, error) {
	params := url.Values{
		"includeCount": {"true"},
		"size":         {"50"},
		"page":         {"1"},
	}

	var items []json.RawMessage
	if err := p.client.Get(ctx, "/v2/properties", params, &items); err != nil {
		return nil, err
	}

	properties := make([]*domain.Property, 0, len(items))
	for _, raw := range items {
		var prop property
		if err := json.Unmarshal(raw, &prop); err != nil {
			return nil, fmt.Errorf("decode lodgify property: %w", err)
		}
		properties = append(properties, mapProperty(prop, rawMap(raw)))
	}
	return properties, nil
}

// GetProperty fetches one property by id.
func (p *Provider) GetProperty(ctx context.Context, externalID string) (*domain.Property, error) {
	var raw json.RawMessage
	if err := p.client.Get(ctx, "/v2/properties/"+externalID, nil, &raw); err != nil {
		return nil, err
	}

	var prop property
	if err := json.Unmarshal(raw, &prop); err != nil {
		return nil, fmt.Errorf("decode lodgify property: %w", err)
	}
	return mapProperty(prop, rawMap(raw)), nil
}

// SyncBookings lists bookings for one property, single page of 100.
func (p *Provider) SyncBookings(ctx context.Context, propertyExternalID string) ([]*domain.Booking, error) {
	params := url.Values{
		"property_id": {propertyExternalID},
		"size":        {"100"},
		"page":        {"1"},
	}

	var items []json.RawMessage
	if err := p.client.Get(ctx, "/v2/reservations/bookings", params, &items); err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(items))
	for _, raw := range items {
		var b booking
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decode lodgify booking: %w", err)
		}
		bookings = append(bookings, mapBooking(b, rawMap(raw)))
	}
	return bookings, nil
}

// SyncGuests derives the guest from one booking.
func (p *Provider) SyncGuests(ctx context.Context, bookingExternalID string) ([]*domain.Guest, error) {
	var b booking
	if err := p.client.Get(ctx, "/v2/reservations/bookings/"+bookingExternalID, nil, &b); err != nil {
		return nil, err
	}

	if b.Guest == nil || b.Guest.Name == "" {
		return nil, nil
	}
	first, last := domain.SplitGuestName(b.Guest.Name)
	return []*domain.Guest{{
		ExternalID: fmt.Sprintf("lodgify-guest-%d", b.ID),
		FirstName:  first,
		LastName:   last,
		Email:      b.Guest.Email,
		Phone:      b.Guest.Phone,
	}}, nil
}

// HandleWebhook logs the event type.
func (p *Provider) HandleWebhook(ctx context.Context, payload map[string]any) error {
	event, _ := payload["event_type"].(string)
	p.logger.Info("lodgify webhook received", "event_type", event)
	return nil
}

func mapProperty(prop property, raw map[string]any) *domain.Property {
	images := make([]string, 0, len(prop.Images))
	for _, img := range prop.Images {
		images = append(images, img.URL)
	}
	if len(images) == 0 && prop.ImageURL != "" {
		images = []string{prop.ImageURL}
	}

	mapped := &domain.Property{
		ExternalID: strconv.Itoa(prop.ID),
		Name:       prop.Name,
		Address:    prop.Address,
		City:       prop.City,
		Country:    prop.Country,
		Latitude:   prop.Latitude,
		Longitude:  prop.Longitude,
		Images:     images,
		Bedrooms:   prop.Bedrooms,
		Bathrooms:  prop.Bathrooms,
		MaxGuests:  prop.MaxGuests,
		RawData:    raw,
	}
	if prop.PropertyType != nil {
		mapped.PropertyType = prop.PropertyType.Name
	}
	return mapped
}

func mapBooking(b booking, raw map[string]any) *domain.Booking {
	guestName := "Unknown"
	guestEmail := ""
	guestPhone := ""
	if b.Guest != nil {
		if b.Guest.Name != "" {
			guestName = b.Guest.Name
		}
		guestEmail = b.Guest.Email
		guestPhone = b.Guest.Phone
	}

	platform := "lodgify"
	if b.Source != "" {
		platform = strings.ToLower(b.Source)
	}

	return &domain.Booking{
		ExternalID:         strconv.Itoa(b.ID),
		PropertyExternalID: strconv.Itoa(b.PropertyID),
		GuestName:          guestName,
		GuestEmail:         guestEmail,
		GuestPhone:         guestPhone,
		CheckInDate:        b.Arrival,
		CheckOutDate:       b.Departure,
		Status:             mapStatus(b.Status),
		Platform:           platform,
		BookingReference:   b.BookingNumber,
		TotalPrice:         b.TotalAmount,
		Currency:           b.Currency,
		NumberOfGuests:     b.People,
		Notes:              b.Notes,
		RawData:            raw,
	}
}

func mapStatus(s string) domain.BookingStatus {
	switch s {
	case "Booked", "Open":
		return domain.BookingStatusConfirmed
	case "Cancelled", "Declined":
		return domain.BookingStatusCancelled
	case "CheckedOut":
		return domain.BookingStatusCompleted
	}
	return domain.BookingStatusConfirmed
}

func rawMap(data json.RawMessage) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
