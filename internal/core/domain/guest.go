package domain

// Guest is the canonical guest shape. Guests are derived from booking payloads;
// no current provider syncs them independently, and every provider yields zero
// or one guest per booking.
type Guest struct {
	ExternalID string `json:"external_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Language   string `json:"language,omitempty"`
	Country    string `json:"country,omitempty"`
	RawData    map[string]any `json:"raw_data,omitempty"`
}

// SplitGuestName splits a full name into first/last the way the providers'
// payloads expect: first token is the first name, the rest is the last name.
func SplitGuestName(full string) (first, last string) {
	for i, r := range full {
		if r == ' ' {
			return full[:i], full[i+1:]
		}
	}
	return full, ""
}
