package guesty

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/heyconcierge/pms-core/internal/adapters/driven/pms"
	"github.com/heyconcierge/pms-core/internal/core/domain"
	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
)

// Guesty Open API: https://open-api-docs.guesty.com
// Auth: OAuth2 client_credentials, Bearer token. The token endpoint lives at
// /oauth2/token on the apex host, outside the /v1 data-plane base URL.

const (
	defaultBaseURL  = "https://open-api.guesty.com/v1"
	defaultTokenURL = "https://open-api.guesty.com/oauth2/token"

	tokenExpiryMargin = 60 * time.Second
)

var _ driven.PmsProvider = (*Provider)(nil)

// Provider is the Guesty adapter.
type Provider struct {
	client *pms.Client
	logger *slog.Logger

	clientID     string
	clientSecret string
	tokenURL     string

	mu             sync.Mutex
	tokenExpiresAt time.Time
}

// New creates a Guesty provider against the production API.
func New(config domain.ProviderConfig, logger *slog.Logger) *Provider {
	return newProvider(config, logger, defaultBaseURL, defaultTokenURL)
}

func newProvider(config domain.ProviderConfig, logger *slog.Logger, baseURL, tokenURL string) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	client := pms.NewClient(pms.ClientConfig{
		Provider: domain.ProviderGuesty,
		BaseURL:  baseURL,
	})
	return &Provider{
		client:       client,
		logger:       logger,
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		tokenURL:     tokenURL,
	}
}

func (p *Provider) Name() domain.ProviderName {
	return domain.ProviderGuesty
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *Provider) ensureToken(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Now().Before(p.tokenExpiresAt) {
		return nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	}

	body, status, err := pms.PostForm(ctx, p.client.HTTPClient(), p.tokenURL, form)
	if err != nil {
		return fmt.Errorf("guesty token request: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("%w: guesty token endpoint returned %d", domain.ErrAuthFailed, status)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("decode guesty token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: guesty token response missing access_token", domain.ErrAuthFailed)
	}

	p.client.SetHeader("Authorization", "Bearer "+tok.AccessToken)
	p.tokenExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	return nil
}

type listResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
	Limit   int               `json:"limit"`
	Skip    int               `json:"skip"`
}

type listing struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Nickname string `json:"nickname"`
	Address  *struct {
		Full    string   `json:"full"`
		Street  string   `json:"street"`
		City    string   `json:"city"`
		Country string   `json:"country"`
		Lat     *float64 `json:"lat"`
		Lng     *float64 `json:"lng"`
	} `json:"address"`
	Pictures []struct {
		Original string `json:"original"`
	} `json:"pictures"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	Accommodates *int     `json:"accommodates"`
	PropertyType string   `json:"propertyType"`
}

type reservation struct {
	ID                    string `json:"_id"`
	ListingID             string `json:"listingId"`
	ConfirmationCode      string `json:"confirmationCode"`
	CheckInDateLocalized  string `json:"checkInDateLocalized"`
	CheckOutDateLocalized string `json:"checkOutDateLocalized"`
	Status                string `json:"status"`
	Source                string `json:"source"`
	Money                 *struct {
		TotalPaid *float64 `json:"totalPaid"`
		Currency  string   `json:"currency"`
	} `json:"money"`
	GuestsCount *int `json:"guestsCount"`
	Guest       *struct {
		ID        string `json:"_id"`
		FullName  string `json:"fullName"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"guest"`
	Note string `json:"note"`
}

// SyncProperties lists all listings, single page of 100.
func (p *Provider) SyncProperties(ctx context.Context) ([]*domain.Property, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var resp listResponse
	params := url.Values{"limit": {"100"}, "skip": {"0"}}
	if err := p.client.Get(ctx, "/listings", params, &resp); err != nil {
		return nil, err
	}

	properties := make([]*domain.Property, 0, len(resp.Results))
	for _, raw := range resp.Results {
		var l listing
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode guesty listing: %w", err)
		}
		properties = append(properties, mapListing(l, rawMap(raw)))
	}
	return properties, nil
}

// GetProperty fetches one listing by id.
func (p *Provider) GetProperty(ctx context.Context, externalID string) (*domain.Property, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := p.client.Get(ctx, "/listings/"+externalID, nil, &raw); err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode guesty listing: %w", err)
	}
	return mapListing(l, rawMap(raw)), nil
}

// SyncBookings lists reservations for one listing, single page of 100.
func (p *Provider) SyncBookings(ctx context.Context, propertyExternalID string) ([]*domain.Booking, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var resp listResponse
	params := url.Values{
		"listingId": {propertyExternalID},
		"limit":     {"100"},
		"skip":      {"0"},
	}
	if err := p.client.Get(ctx, "/reservations", params, &resp); err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(resp.Results))
	for _, raw := range resp.Results {
		var r reservation
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode guesty reservation: %w", err)
		}
		bookings = append(bookings, mapReservation(r, rawMap(raw)))
	}
	return bookings, nil
}

// SyncGuests derives the guest from one reservation. Guesty carries a real
// guest object with its own id.
func (p *Provider) SyncGuests(ctx context.Context, bookingExternalID string) ([]*domain.Guest, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var r reservation
	if err := p.client.Get(ctx, "/reservations/"+bookingExternalID, nil, &r); err != nil {
		return nil, err
	}

	g := r.Guest
	if g == nil {
		return nil, nil
	}

	first := g.FirstName
	last := g.LastName
	if first == "" && g.FullName != "" {
		first, last = domain.SplitGuestName(g.FullName)
	}

	return []*domain.Guest{{
		ExternalID: g.ID,
		FirstName:  first,
		LastName:   last,
		Email:      g.Email,
		Phone:      g.Phone,
	}}, nil
}

// HandleWebhook logs the event. Events: reservation.created,
// reservation.updated, reservation.cancelled, listing.updated.
func (p *Provider) HandleWebhook(ctx context.Context, payload map[string]any) error {
	event, _ := payload["event"].(string)
	p.logger.Info("guesty webhook received", "event", event)
	return nil
}

func mapListing(l listing, raw map[string]any) *domain.Property {
	name := l.Title
	if name == "" {
		name = l.Nickname
	}

	images := make([]string, 0, len(l.Pictures))
	for _, pic := range l.Pictures {
		images = append(images, pic.Original)
	}

	prop := &domain.Property{
		ExternalID:   l.ID,
		Name:         name,
		Images:       images,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		MaxGuests:    l.Accommodates,
		PropertyType: l.PropertyType,
		RawData:      raw,
	}
	if l.Address != nil {
		prop.Address = l.Address.Full
		if prop.Address == "" {
			prop.Address = l.Address.Street
		}
		prop.City = l.Address.City
		prop.Country = l.Address.Country
		prop.Latitude = l.Address.Lat
		prop.Longitude = l.Address.Lng
	}
	return prop
}

func mapReservation(r reservation, raw map[string]any) *domain.Booking {
	guestName := "Unknown"
	guestEmail := ""
	guestPhone := ""
	if g := r.Guest; g != nil {
		switch {
		case g.FullName != "":
			guestName = g.FullName
		case g.FirstName != "" || g.LastName != "":
			guestName = strings.TrimSpace(g.FirstName + " " + g.LastName)
		}
		guestEmail = g.Email
		guestPhone = g.Phone
	}

	platform := "guesty"
	if r.Source != "" {
		platform = strings.ToLower(r.Source)
	}

	booking := &domain.Booking{
		ExternalID:         r.ID,
		PropertyExternalID: r.ListingID,
		GuestName:          guestName,
		GuestEmail:         guestEmail,
		GuestPhone:         guestPhone,
		CheckInDate:        r.CheckInDateLocalized,
		CheckOutDate:       r.CheckOutDateLocalized,
		Status:             mapStatus(r.Status),
		Platform:           platform,
		BookingReference:   r.ConfirmationCode,
		NumberOfGuests:     r.GuestsCount,
		Notes:              r.Note,
		RawData:            raw,
	}
	if r.Money != nil {
		booking.TotalPrice = r.Money.TotalPaid
		booking.Currency = r.Money.Currency
	}
	return booking
}

func mapStatus(s string) domain.BookingStatus {
	switch s {
	case "confirmed", "reserved", "checked_in":
		return domain.BookingStatusConfirmed
	case "checked_out":
		return domain.BookingStatusCompleted
	case "canceled", "cancelled":
		return domain.BookingStatusCancelled
	case "inquiry":
		return domain.BookingStatusPending
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
