package referral

import "time"

const (
	StatusPending   = "pending"
	StatusConverted = "converted"
)

// Referral is a prospect introduced by an existing client.
type Referral struct {
	ID                string    `json:"id"`
	ReferrerClientID  string    `json:"referrer_client_id"`
	ReferredName      string    `json:"referred_name"`
	ReferredEmail     string    `json:"referred_email"`
	ReferredCompany   string    `json:"referred_company"`
	Status            string    `json:"status"`
	ConvertedClientID *string   `json:"converted_client_id"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ListOptions filters referral listings.
type ListOptions struct {
	Status           string
	ReferrerClientID string
	Limit            int
	Offset           int
}

// CreateRequest defines referral creation inputs.
type CreateRequest struct {
	ReferrerClientID string `json:"referrer_client_id"`
	ReferredName     string `json:"referred_name"`
	ReferredEmail    string `json:"referred_email"`
	ReferredCompany  string `json:"referred_company"`
	Status           string `json:"status"`
	Notes            string `json:"notes"`
}

// UpdateRequest holds a partial update; nil fields are left unchanged.
// Conversion goes through Convert, not Update.
type UpdateRequest struct {
	ReferredName    *string `json:"referred_name"`
	ReferredEmail   *string `json:"referred_email"`
	ReferredCompany *string `json:"referred_company"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// ConvertRequest overrides the client fields copied from the referral.
type ConvertRequest struct {
	Sector string `json:"sector"`
	Phone  string `json:"phone"`
	Notes  string `json:"notes"`
}
