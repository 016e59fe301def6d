package activity

import "time"

// EntityType names the kind of record an activity entry is about
type EntityType string

const (
	EntityClient   EntityType = "client"
	EntityJump     EntityType = "jump"
	EntityProject  EntityType = "project"
	EntityTask     EntityType = "task"
	EntityInvoice  EntityType = "invoice"
	EntityCopilot  EntityType = "copilot"
	EntityReferral EntityType = "referral"
	EntityAPIKey   EntityType = "api_key"
)

// Action represents what happened to the entity
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionDeleted   Action = "deleted"
	ActionLinked    Action = "linked"
	ActionUnlinked  Action = "unlinked"
	ActionConverted Action = "converted"
	ActionRevoked   Action = "revoked"
	ActionUploaded  Action = "uploaded"
)

// Entry represents an event in the activity log
type Entry struct {
	ID         int64      `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Action     Action     `json:"action"`
	Summary    string     `json:"summary"`
	Details    string     `json:"details,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	EntityType EntityType
	EntityID   string
	Limit      int
	Offset     int
}
