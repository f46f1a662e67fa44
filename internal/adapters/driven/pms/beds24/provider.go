package beds24

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/heyconcierge/pms-core/internal/adapters/driven/pms"
	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Beds24 API v2: https://beds24.com/api/v2
// Auth: token header. Accounts on long-life tokens never refresh; accounts
// with a refresh token exchange it at /authentication/token.

const (
	defaultBaseURL = "https://beds24.com/api/v2"
	authTokenPath  = "/authentication/token"

	// Refresh five minutes before expiry; the API defaults to 24h tokens.
	tokenExpiryMargin      = 300 * time.Second
	defaultTokenLifetimeSec = 86400
)

var _ driven.PmsProvider = (*Provider)(nil)

// Provider is the Beds24 adapter.
type Provider struct {
	client *pms.Client
	logger *slog.Logger

	refreshToken string
	tokenURL     string

	mu             sync.Mutex
	tokenExpiresAt time.Time
}

// New creates a Beds24 provider against the production API. The access token
// comes from AccessToken, falling back to APIKey for long-life tokens stored
// that way.
func New(config domain.ProviderConfig, logger *slog.Logger) *Provider {
	return newProvider(config, logger, defaultBaseURL)
}

func newProvider(config domain.ProviderConfig, logger *slog.Logger, baseURL string) *Provider {
	if logger == nil {
		logger = slog.Default()
	}

	token := config.AccessToken
	if token == "" {
		token = config.APIKey
	}

	client := pms.NewClient(pms.ClientConfig{
		Provider: domain.ProviderBeds24,
		BaseURL:  baseURL,
		Headers:  map[string]string{"token": token},
	})
	return &Provider{
		client:       client,
		logger:       logger,
		refreshToken: config.RefreshToken,
		tokenURL:     strings.TrimSuffix(baseURL, "/") + authTokenPath,
	}
}

func (p *Provider) Name() domain.ProviderName {
	return domain.ProviderBeds24
}

type authResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    *int   `json:"expiresIn"`
}

// ensureToken refreshes the access token when a refresh token is configured
// and the current one is stale. Long-life token accounts skip this entirely.
func (p *Provider) ensureToken(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refreshToken == "" || time.Now().Before(p.tokenExpiresAt) {
		return nil
	}

	body, status, err := pms.GetWithHeaders(ctx, p.client.HTTPClient(), p.tokenURL, map[string]string{
		"refreshToken": p.refreshToken,
		"Content-Type": "application/json",
	})
	if err != nil {
		return fmt.Errorf("beds24 token refresh: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("%w: beds24 token endpoint returned %d", domain.ErrAuthFailed, status)
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("decode beds24 token: %w", err)
	}
	if auth.Token == "" {
		return fmt.Errorf("%w: beds24 token response missing token", domain.ErrAuthFailed)
	}

	lifetime := defaultTokenLifetimeSec
	if auth.ExpiresIn != nil {
		lifetime = *auth.ExpiresIn
	}

	p.client.SetHeader("token", auth.Token)
	p.tokenExpiresAt = time.Now().Add(time.Duration(lifetime)*time.Second - tokenExpiryMargin)
	return nil
}

type property struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	MaxGuests *int     `json:"maxGuests"`
}

type booking struct {
	ID         int      `json:"id"`
	PropertyID int      `json:"propertyId"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Arrival    string   `json:"arrival"`
	Departure  string   `json:"departure"`
	Status     string   `json:"status"`
	Referer    string   `json:"referer"`
	Price      *float64 `json:"price"`
	Currency   string   `json:"currency"`
	NumAdult   int      `json:"numAdult"`
	NumChild   int      `json:"numChild"`
	Notes      string   `json:"notes"`
	BookID     string   `json:"bookId"`
}

// SyncProperties lists all properties on the account.
func (p *Provider) SyncProperties(ctx context.Context) ([]*domain.Property, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := p.client.Get(ctx, "/properties", nil, &items); err != nil {
		return nil, err
	}

	properties := make([]*domain.Property, 0, len(items))
	for _, raw := range items {
		var prop property
		if err := json.Unmarshal(raw, &prop); err != nil {
			return nil, fmt.Errorf("decode beds24 property: %w", err)
		}
		properties = append(properties, mapProperty(prop, rawMap(raw)))
	}
	return properties, nil
}

// GetProperty fetches one property. The API has no single-item endpoint; it
// filters the list endpoint by id.
func (p *Provider) GetProperty(ctx context.Context, externalID string) (*domain.Property, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	params := url.Values{"id": {externalID}}
	if err := p.client.Get(ctx, "/properties", params, &items); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: beds24 property %s", domain.ErrNotFound, externalID)
	}

	var prop property
	if err := json.Unmarshal(items[0], &prop); err != nil {
		return nil, fmt.Errorf("decode beds24 property: %w", err)
	}
	return mapProperty(prop, rawMap(items[0])), nil
}

// SyncBookings lists bookings for one property.
func (p *Provider) SyncBookings(ctx context.Context, propertyExternalID string) ([]*domain.Booking, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	params := url.Values{
		"propertyId":          {propertyExternalID},
		"includeInvoiceItems": {"false"},
	}
	if err := p.client.Get(ctx, "/bookings", params, &items); err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(items))
	for _, raw := range items {
		var b booking
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decode beds24 booking: %w", err)
		}
		bookings = append(bookings, mapBooking(b, rawMap(raw)))
	}
	return bookings, nil
}

// SyncGuests derives the guest from one booking.
func (p *Provider) SyncGuests(ctx context.Context, bookingExternalID string) ([]*domain.Guest, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var items []booking
	params := url.Values{"id": {bookingExternalID}}
	if err := p.client.Get(ctx, "/bookings", params, &items); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, nil
	}
	b := items[0]
	if b.FirstName == "" && b.LastName == "" {
		return nil, nil
	}

	return []*domain.Guest{{
		ExternalID: fmt.Sprintf("beds24-guest-%d", b.ID),
		FirstName:  b.FirstName,
		LastName:   b.LastName,
		Email:      b.Email,
		Phone:      b.Phone,
	}}, nil
}

// HandleWebhook logs the booking id. Beds24 webhooks are configured
// per-property under Settings, Properties, Access.
func (p *Provider) HandleWebhook(ctx context.Context, payload map[string]any) error {
	p.logger.Info("beds24 webhook received", "booking_id", payload["bookingId"])
	return nil
}

func mapProperty(prop property, raw map[string]any) *domain.Property {
	return &domain.Property{
		ExternalID: strconv.Itoa(prop.ID),
		Name:       prop.Name,
		Address:    prop.Address,
		City:       prop.City,
		Country:    prop.Country,
		Latitude:   prop.Latitude,
		Longitude:  prop.Longitude,
		Images:     []string{},
		MaxGuests:  prop.MaxGuests,
		RawData:    raw,
	}
}

func mapBooking(b booking, raw map[string]any) *domain.Booking {
	guestName := strings.TrimSpace(b.FirstName + " " + b.LastName)
	if guestName == "" {
		guestName = "Unknown"
	}

	platform := "beds24"
	if b.Referer != "" {
		platform = strings.ToLower(b.Referer)
	}

	var guests *int
	if total := b.NumAdult + b.NumChild; total > 0 {
		guests = &total
	}

	return &domain.Booking{
		ExternalID:         strconv.Itoa(b.ID),
		PropertyExternalID: strconv.Itoa(b.PropertyID),
		GuestName:          guestName,
		GuestEmail:         b.Email,
		GuestPhone:         b.Phone,
		CheckInDate:        b.Arrival,
		CheckOutDate:       b.Departure,
		Status:             mapStatus(b.Status),
		Platform:           platform,
		BookingReference:   b.BookID,
		TotalPrice:         b.Price,
		Currency:           b.Currency,
		NumberOfGuests:     guests,
		Notes:              b.Notes,
		RawData:            raw,
	}
}

func mapStatus(s string) domain.BookingStatus {
	switch strings.ToLower(s) {
	case "confirmed", "new", "1":
		return domain.BookingStatusConfirmed
	case "cancelled", "0":
		return domain.BookingStatusCancelled
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
