package smoobu

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

// Smoobu API: https://docs.smoobu.com
// Auth: static Api-Key header, no token lifecycle.

const defaultBaseURL = "https://login.smoobu.com/api"

var _ driven.PmsProvider = (*Provider)(nil)

// Provider is the Smoobu adapter.
type Provider struct {
	client *pms.Client
	logger *slog.Logger
}

// New creates a Smoobu provider against the production API.
func New(config domain.ProviderConfig, logger *slog.Logger) *Provider {
	return newProvider(config, logger, defaultBaseURL)
}

func newProvider(config domain.ProviderConfig, logger *slog.Logger, baseURL string) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	client := pms.NewClient(pms.ClientConfig{
		Provider: domain.ProviderSmoobu,
		BaseURL:  baseURL,
		Headers: map[string]string{
			"Api-Key":       config.APIKey,
			"Cache-Control": "no-cache",
		},
	})
	return &Provider{client: client, logger: logger}
}

func (p *Provider) Name() domain.ProviderName {
	return domain.ProviderSmoobu
}

type apartment struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location *struct {
		Street    string   `json:"street"`
		City      string   `json:"city"`
		Country   string   `json:"country"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	Rooms *struct {
		MaxOccupancy *int `json:"maxOccupancy"`
	} `json:"rooms"`
	Type *struct {
		Name string `json:"name"`
	} `json:"type"`
}

type booking struct {
	ID        int `json:"id"`
	Apartment struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"apartment"`
	Channel *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"channel"`
	Arrival     string   `json:"arrival"`
	Departure   string   `json:"departure"`
	GuestName   string   `json:"guest-name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Adults      int      `json:"adults"`
	Children    int      `json:"children"`
	Notice      string   `json:"notice"`
	Price       *float64 `json:"price"`
	Currency    string   `json:"currency"`
	ReferenceID string   `json:"reference-id"`
	Type        string   `json:"type"`
	Blocked     bool     `json:"blocked"`
}

type bookingsPage struct {
	PageCount  int               `json:"page_count"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	Page       int               `json:"page"`
	Bookings   []json.RawMessage `json:"bookings"`
}

// SyncProperties lists all apartments. Smoobu returns them as an object keyed
// by id rather than an array.
func (p *Provider) SyncProperties(ctx context.Context) ([]*domain.Property, error) {
	var resp struct {
		Apartments map[string]json.RawMessage `json:"apartments"`
	}
	if err := p.client.Get(ctx, "/apartments", nil, &resp); err != nil {
		return nil, err
	}

	properties := make([]*domain.Property, 0, len(resp.Apartments))
	for _, raw := range resp.Apartments {
		var a apartment
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode smoobu apartment: %w", err)
		}
		properties = append(properties, mapApartment(a, rawMap(raw)))
	}
	return properties, nil
}

// GetProperty fetches one apartment by id.
func (p *Provider) GetProperty(ctx context.Context, externalID string) (*domain.Property, error) {
	var raw json.RawMessage
	if err := p.client.Get(ctx, "/apartments/"+externalID, nil, &raw); err != nil {
		return nil, err
	}

	var a apartment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode smoobu apartment: %w", err)
	}
	return mapApartment(a, rawMap(raw)), nil
}

// SyncBookings walks all reservation pages for one apartment. Blocked slots
// are calendar blocks, not real bookings, and are skipped.
func (p *Provider) SyncBookings(ctx context.Context, propertyExternalID string) ([]*domain.Booking, error) {
	var bookings []*domain.Booking

	for page := 1; ; page++ {
		params := url.Values{
			"apartment_id": {propertyExternalID},
			"page":         {strconv.Itoa(page)},
			"pageSize":     {"100"},
		}

		var resp bookingsPage
		if err := p.client.Get(ctx, "/reservations", params, &resp); err != nil {
			return nil, err
		}

		for _, raw := range resp.Bookings {
			var b booking
			if err := json.Unmarshal(raw, &b); err != nil {
				return nil, fmt.Errorf("decode smoobu booking: %w", err)
			}
			if b.Blocked {
				continue
			}
			bookings = append(bookings, mapBooking(b, rawMap(raw)))
		}

		if page >= resp.PageCount {
			break
		}
	}

	return bookings, nil
}

// SyncGuests derives the guest from one booking; Smoobu carries guest info
// inline on the reservation.
func (p *Provider) SyncGuests(ctx context.Context, bookingExternalID string) ([]*domain.Guest, error) {
	var b booking
	if err := p.client.Get(ctx, "/reservations/"+bookingExternalID, nil, &b); err != nil {
		return nil, err
	}

	if b.GuestName == "" {
		return nil, nil
	}
	first, last := domain.SplitGuestName(b.GuestName)
	return []*domain.Guest{{
		ExternalID: fmt.Sprintf("smoobu-guest-%d", b.ID),
		FirstName:  first,
		LastName:   last,
		Email:      b.Email,
		Phone:      b.Phone,
	}}, nil
}

// HandleWebhook logs the action. Actions: newReservation, modifiedReservation,
// cancelledReservation.
func (p *Provider) HandleWebhook(ctx context.Context, payload map[string]any) error {
	action, _ := payload["action"].(string)
	p.logger.Info("smoobu webhook received", "action", action)
	return nil
}

func mapApartment(a apartment, raw map[string]any) *domain.Property {
	prop := &domain.Property{
		ExternalID: strconv.Itoa(a.ID),
		Name:       a.Name,
		Images:     []string{},
		RawData:    raw,
	}
	if a.Location != nil {
		prop.Address = a.Location.Street
		prop.City = a.Location.City
		prop.Country = a.Location.Country
		prop.Latitude = a.Location.Latitude
		prop.Longitude = a.Location.Longitude
	}
	if a.Rooms != nil {
		prop.MaxGuests = a.Rooms.MaxOccupancy
	}
	if a.Type != nil {
		prop.PropertyType = a.Type.Name
	}
	return prop
}

func mapBooking(b booking, raw map[string]any) *domain.Booking {
	guestName := b.GuestName
	if guestName == "" {
		guestName = "Unknown"
	}

	platform := "smoobu"
	if b.Channel != nil && b.Channel.Name != "" {
		platform = strings.ToLower(b.Channel.Name)
	}

	status := domain.BookingStatusConfirmed
	if b.Type == "cancellation" {
		status = domain.BookingStatusCancelled
	}

	var guests *int
	if total := b.Adults + b.Children; total > 0 {
		guests = &total
	}

	return &domain.Booking{
		ExternalID:         strconv.Itoa(b.ID),
		PropertyExternalID: strconv.Itoa(b.Apartment.ID),
		GuestName:          guestName,
		GuestEmail:         b.Email,
		GuestPhone:         b.Phone,
		CheckInDate:        b.Arrival,
		CheckOutDate:       b.Departure,
		Status:             status,
		Platform:           platform,
		BookingReference:   b.ReferenceID,
		TotalPrice:         b.Price,
		Currency:           b.Currency,
		NumberOfGuests:     guests,
		Notes:              b.Notice,
		RawData:            raw,
	}
}

func rawMap(data json.RawMessage) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
