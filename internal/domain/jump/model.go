package jump

import (
	"time"

	"github.com/rpggio/crmdesk/internal/domain/strlist"
)

const DefaultStatus = "active"

// Jump is a productized project template offered to clients.
type Jump struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Category      string       `json:"category"`
	Price         float64      `json:"price"`
	DurationWeeks int          `json:"duration_weeks"`
	Features      strlist.List `json:"features"`
	Images        strlist.List `json:"images"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// ListOptions filters jump listings.
type ListOptions struct {
	Status   string
	Category string
	Query    string
	Limit    int
	Offset   int
}

// CreateRequest defines jump creation inputs. Features are stored trimmed,
// without blanks or repeats, in first-seen order.
type CreateRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	DurationWeeks int      `json:"duration_weeks"`
	Features      []string `json:"features"`
	Status        string   `json:"status"`
}

// UpdateRequest holds a partial update; nil fields are left unchanged.
// Features and Images are normalized like CreateRequest.Features. Images
// dropped from the list have their stored files removed.
type UpdateRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category"`
	Price         *float64  `json:"price"`
	DurationWeeks *int      `json:"duration_weeks"`
	Features      *[]string `json:"features"`
	Images        *[]string `json:"images"`
	Status        *string   `json:"status"`
}
