package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/metrics"
)

// Counter is the current value of one prefix counter.
type Counter struct {
	Prefix  ident.Prefix `json:"prefix"`
	Counter int64        `json:"counter"`
	LastID  string       `json:"last_id,omitempty"`
}

// Sequence mints prefixed sequential identifiers from the id_counters table.
type Sequence struct {
	db *DB
}

// NewSequence creates a new Sequence
func NewSequence(db *DB) *Sequence {
	return &Sequence{db: db}
}

// Next increments the counter for prefix in its own transaction and returns the formatted ID.
func (s *Sequence) Next(ctx context.Context, prefix ident.Prefix) (string, error) {
	var id string
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = nextID(ctx, tx, prefix)
		return err
	})
	if err != nil {
		return "", err
	}
	recordIssued(prefix, 1)
	return id, nil
}

// Current returns the last issued counter for prefix, or 0 if none was issued.
func (s *Sequence) Current(ctx context.Context, prefix ident.Prefix) (int64, error) {
	if err := prefix.Validate(); err != nil {
		return 0, err
	}
	var counter int64
	err := s.db.QueryRowContext(ctx, `SELECT counter FROM id_counters WHERE prefix = ?`, string(prefix)).Scan(&counter)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return counter, nil
}

// List returns every counter ordered by prefix.
func (s *Sequence) List(ctx context.Context) ([]Counter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prefix, counter FROM id_counters ORDER BY prefix`)
	if err != nil {
		return nil, fmt.Errorf("failed to list counters: %w", err)
	}
	defer rows.Close()

	var counters []Counter
	for rows.Next() {
		var c Counter
		if err := rows.Scan(&c.Prefix, &c.Counter); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		if c.Counter > 0 {
			c.LastID = ident.Format(c.Prefix, c.Counter)
		}
		counters = append(counters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counter rows: %w", err)
	}
	return counters, nil
}

// nextID is the atomic fetch-and-increment: a single upsert that creates the
// counter at 1 or bumps it, returning the new value. Run it inside the same
// transaction as the insert that consumes the ID.
func nextID(ctx context.Context, q querier, prefix ident.Prefix) (string, error) {
	if err := prefix.Validate(); err != nil {
		return "", err
	}

	query := `
		INSERT INTO id_counters (prefix, counter) VALUES (?, 1)
		ON CONFLICT(prefix) DO UPDATE SET counter = counter + 1
		RETURNING counter
	`

	var counter int64
	if err := q.QueryRowContext(ctx, query, string(prefix)).Scan(&counter); err != nil {
		return "", fmt.Errorf("failed to increment %s counter: %w", prefix, err)
	}
	return ident.Format(prefix, counter), nil
}

// createWithID allocates the next ID for prefix and hands it to insert, all in
// one transaction. A failed insert rolls the counter back with it.
func (db *DB) createWithID(ctx context.Context, prefix ident.Prefix, insert func(tx *sql.Tx, id string) error) (string, error) {
	var id string
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		next, err := nextID(ctx, tx, prefix)
		if err != nil {
			return err
		}
		if err := insert(tx, next); err != nil {
			return err
		}
		id = next
		return nil
	})
	if err != nil {
		return "", err
	}
	recordIssued(prefix, 1)
	return id, nil
}

// recordIssued counts committed identifiers.
func recordIssued(prefix ident.Prefix, n int) {
	if n > 0 {
		metrics.IDsIssued.WithLabelValues(string(prefix)).Add(float64(n))
	}
}
