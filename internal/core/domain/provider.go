package domain

// ProviderName identifies a PMS provider
type ProviderName string

const (
	ProviderHostaway ProviderName = "hostaway"
	ProviderSmoobu   ProviderName = "smoobu"
	ProviderLodgify  ProviderName = "lodgify"
	ProviderGuesty   ProviderName = "guesty"
	ProviderBeds24   ProviderName = "beds24"
)

// SupportedProviders returns the closed set of providers the platform integrates with.
// The provider factory is the single validation chokepoint; callers that want a
// friendlier error should pre-validate against this list first.
func SupportedProviders() []ProviderName {
	return []ProviderName{
		ProviderHostaway,
		ProviderSmoobu,
		ProviderLodgify,
		ProviderGuesty,
		ProviderBeds24,
	}
}

// IsSupportedProvider reports whether name is one of the five supported providers.
func IsSupportedProvider(name ProviderName) bool {
	switch name {
	case ProviderHostaway, ProviderSmoobu, ProviderLodgify, ProviderGuesty, ProviderBeds24:
		return true
	}
	return false
}

// ProviderInfo provides metadata about a provider for the management API.
type ProviderInfo struct {
	Name        ProviderName `json:"name"`
	DisplayName string       `json:"display_name"`
	AuthMethod  string       `json:"auth_method"` // "oauth2", "api_key", or "token"
	DocsURL     string       `json:"docs_url,omitempty"`
}

// ProviderCatalog returns the metadata for every supported provider.
func ProviderCatalog() []ProviderInfo {
	return []ProviderInfo{
		{
			Name:        ProviderHostaway,
			DisplayName: "Hostaway",
			AuthMethod:  "oauth2",
			DocsURL:     "https://api.hostaway.com/documentation",
		},
		{
			Name:        ProviderSmoobu,
			DisplayName: "Smoobu",
			AuthMethod:  "api_key",
			DocsURL:     "https://docs.smoobu.com",
		},
		{
			Name:        ProviderLodgify,
			DisplayName: "Lodgify",
			AuthMethod:  "api_key",
			DocsURL:     "https://docs.lodgify.com",
		},
		{
			Name:        ProviderGuesty,
			DisplayName: "Guesty",
			AuthMethod:  "oauth2",
			DocsURL:     "https://open-api-docs.guesty.com",
		},
		{
			Name:        ProviderBeds24,
			DisplayName: "Beds24",
			AuthMethod:  "token",
			DocsURL:     "https://wiki.beds24.com/index.php/API_V2",
		},
	}
}
