package activity

import "context"

// Repository provides persistence operations for activity entries.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}

// Recorder is what other services use to append to the feed.
type Recorder interface {
	LogActivity(ctx context.Context, entry *Entry) error
}
