package hostaway

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

// Hostaway API: https://api.hostaway.com/documentation
// Auth: OAuth2 client_credentials, Bearer token.
// Rate limit: 15 req/10s per IP; we stay at 14 to keep headroom.

const (
	defaultBaseURL = "https://api.hostaway.com/v1"
	tokenPath      = "/accessTokens"

	// Tokens are refreshed one minute before the reported expiry.
	tokenExpiryMargin = 60 * time.Second
)

var _ driven.PmsProvider = (*Provider)(nil)

// Provider is the Hostaway adapter.
type Provider struct {
	client *pms.Client
	logger *slog.Logger

	accountID    string
	clientID     string
	clientSecret string
	tokenURL     string

	mu             sync.Mutex
	tokenExpiresAt time.Time
}

// New creates a Hostaway provider against the production API.
func New(config domain.ProviderConfig, logger *slog.Logger) *Provider {
	return newProvider(config, logger, defaultBaseURL)
}

func newProvider(config domain.ProviderConfig, logger *slog.Logger, baseURL string) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	client := pms.NewClient(pms.ClientConfig{
		Provider:  domain.ProviderHostaway,
		BaseURL:   baseURL,
		RateLimit: pms.RateLimit{MaxRequests: 14, Window: 10 * time.Second},
	})
	return &Provider{
		client:       client,
		logger:       logger,
		accountID:    config.AccountID,
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		tokenURL:     strings.TrimSuffix(baseURL, "/") + tokenPath,
	}
}

func (p *Provider) Name() domain.ProviderName {
	return domain.ProviderHostaway
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureToken fetches a bearer token when the cached one is missing or about
// to expire. Token endpoint failures are authentication failures, not
// transient API errors.
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
		"scope":         {"general"},
	}

	body, status, err := pms.PostForm(ctx, p.client.HTTPClient(), p.tokenURL, form)
	if err != nil {
		return fmt.Errorf("hostaway token request: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("%w: hostaway token endpoint returned %d", domain.ErrAuthFailed, status)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("decode hostaway token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: hostaway token response missing access_token", domain.ErrAuthFailed)
	}

	p.client.SetHeader("Authorization", "Bearer "+tok.AccessToken)
	p.tokenExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	return nil
}

type envelope struct {
	Status string            `json:"status"`
	Result []json.RawMessage `json:"result"`
}

type singleEnvelope struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

type listing struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	CountryCode    string   `json:"countryCode"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	Picture        string   `json:"picture"`
	Bedrooms       *int     `json:"bedrooms"`
	Bathrooms      *float64 `json:"bathrooms"`
	PersonCapacity *int     `json:"personCapacity"`
	PropertyTypeID int      `json:"propertyTypeId"`
	ListingImages  []struct {
		URL string `json:"url"`
	} `json:"listingImages"`
}

type reservation struct {
	ID                   int      `json:"id"`
	ListingMapID         int      `json:"listingMapId"`
	ChannelName          string   `json:"channelName"`
	GuestName            string   `json:"guestName"`
	GuestEmail           string   `json:"guestEmail"`
	GuestPhone           string   `json:"guestPhone"`
	ArrivalDate          string   `json:"arrivalDate"`
	DepartureDate        string   `json:"departureDate"`
	Status               string   `json:"status"`
	HostNote             string   `json:"hostNote"`
	TotalPrice           *float64 `json:"totalPrice"`
	Currency             string   `json:"currency"`
	NumberOfGuests       *int     `json:"numberOfGuests"`
	ChannelReservationID string   `json:"channelReservationId"`
}

// SyncProperties lists all listings on the account.
func (p *Provider) SyncProperties(ctx context.Context) ([]*domain.Property, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var env envelope
	params := url.Values{"limit": {"100"}, "offset": {"0"}}
	if err := p.client.Get(ctx, "/listings", params, &env); err != nil {
		return nil, err
	}

	properties := make([]*domain.Property, 0, len(env.Result))
	for _, raw := range env.Result {
		var l listing
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode hostaway listing: %w", err)
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

	var env singleEnvelope
	if err := p.client.Get(ctx, "/listings/"+externalID, nil, &env); err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(env.Result, &l); err != nil {
		return nil, fmt.Errorf("decode hostaway listing: %w", err)
	}
	return mapListing(l, rawMap(env.Result)), nil
}

// SyncBookings lists reservations for one listing.
func (p *Provider) SyncBookings(ctx context.Context, propertyExternalID string) ([]*domain.Booking, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var env envelope
	params := url.Values{
		"listingId":        {propertyExternalID},
		"limit":            {"100"},
		"offset":           {"0"},
		"includeResources": {"1"},
	}
	if err := p.client.Get(ctx, "/reservations", params, &env); err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(env.Result))
	for _, raw := range env.Result {
		var r reservation
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode hostaway reservation: %w", err)
		}
		bookings = append(bookings, mapReservation(r, rawMap(raw)))
	}
	return bookings, nil
}

// SyncGuests derives the guest from one reservation.
func (p *Provider) SyncGuests(ctx context.Context, bookingExternalID string) ([]*domain.Guest, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	var env singleEnvelope
	if err := p.client.Get(ctx, "/reservations/"+bookingExternalID, nil, &env); err != nil {
		return nil, err
	}

	var r reservation
	if err := json.Unmarshal(env.Result, &r); err != nil {
		return nil, fmt.Errorf("decode hostaway reservation: %w", err)
	}

	if r.GuestName == "" {
		return nil, nil
	}
	first, last := domain.SplitGuestName(r.GuestName)
	return []*domain.Guest{{
		ExternalID: fmt.Sprintf("hostaway-guest-%d", r.ID),
		FirstName:  first,
		LastName:   last,
		Email:      r.GuestEmail,
		Phone:      r.GuestPhone,
	}}, nil
}

// HandleWebhook logs the event. Events: reservationCreated, reservationUpdated,
// reservationCancelled, listingUpdated. The dispatcher runs the actual sync.
func (p *Provider) HandleWebhook(ctx context.Context, payload map[string]any) error {
	event, _ := payload["event"].(string)
	p.logger.Info("hostaway webhook received", "event", event)
	return nil
}

func mapListing(l listing, raw map[string]any) *domain.Property {
	images := make([]string, 0, len(l.ListingImages))
	for _, img := range l.ListingImages {
		images = append(images, img.URL)
	}
	if len(images) == 0 && l.Picture != "" {
		images = []string{l.Picture}
	}

	return &domain.Property{
		ExternalID:   strconv.Itoa(l.ID),
		Name:         l.Name,
		Address:      l.Address,
		City:         l.City,
		Country:      l.CountryCode,
		Latitude:     l.Lat,
		Longitude:    l.Lng,
		Images:       images,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		MaxGuests:    l.PersonCapacity,
		PropertyType: strconv.Itoa(l.PropertyTypeID),
		RawData:      raw,
	}
}

func mapReservation(r reservation, raw map[string]any) *domain.Booking {
	platform := strings.ToLower(r.ChannelName)
	if platform == "" {
		platform = "hostaway"
	}

	return &domain.Booking{
		ExternalID:         strconv.Itoa(r.ID),
		PropertyExternalID: strconv.Itoa(r.ListingMapID),
		GuestName:          r.GuestName,
		GuestEmail:         r.GuestEmail,
		GuestPhone:         r.GuestPhone,
		CheckInDate:        r.ArrivalDate,
		CheckOutDate:       r.DepartureDate,
		Status:             mapStatus(r.Status),
		Platform:           platform,
		BookingReference:   r.ChannelReservationID,
		TotalPrice:         r.TotalPrice,
		Currency:           r.Currency,
		NumberOfGuests:     r.NumberOfGuests,
		Notes:              r.HostNote,
		RawData:            raw,
	}
}

func mapStatus(s string) domain.BookingStatus {
	switch s {
	case "new", "confirmed", "modified":
		return domain.BookingStatusConfirmed
	case "cancelled":
		return domain.BookingStatusCancelled
	case "completed":
		return domain.BookingStatusCompleted
	case "pending":
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
