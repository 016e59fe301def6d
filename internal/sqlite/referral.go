package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/repository"
)

const referralColumns = `rf.id, rf.referrer_client_id, rf.referred_name, rf.referred_email, rf.referred_company,
	rf.status, rf.converted_client_id, rf.notes, rf.created_at, rf.updated_at`

func scanReferral(s rowScanner) (*referral.Referral, error) {
	var ref referral.Referral
	var converted sql.NullString
	err := s.Scan(
		&ref.ID,
		&ref.ReferrerClientID,
		&ref.ReferredName,
		&ref.ReferredEmail,
		&ref.ReferredCompany,
		&ref.Status,
		&converted,
		&ref.Notes,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if converted.Valid {
		ref.ConvertedClientID = &converted.String
	}
	return &ref, nil
}

func collectReferrals(rows *sql.Rows) ([]referral.Referral, error) {
	defer rows.Close()
	referrals := []referral.Referral{}
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, *ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral rows: %w", err)
	}
	return referrals, nil
}

// ReferralRepository implements referral.Repository for SQLite
type ReferralRepository struct {
	db *DB
}

// NewReferralRepository creates a new ReferralRepository
func NewReferralRepository(db *DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Create assigns the next REF identifier and inserts the referral. The
// referring client must exist.
func (r *ReferralRepository) Create(ctx context.Context, ref *referral.Referral) error {
	id, err := r.db.createWithID(ctx, ident.Referral, func(tx *sql.Tx, id string) error {
		err := requireReferences(ctx, tx,
			parentRef{table: "clients", label: "client", id: ref.ReferrerClientID},
			parentRef{table: "clients", label: "client", id: derefID(ref.ConvertedClientID)},
		)
		if err != nil {
			return err
		}
		query := `
			INSERT INTO referrals (id, referrer_client_id, referred_name, referred_email, referred_company,
				status, converted_client_id, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			id,
			ref.ReferrerClientID,
			ref.ReferredName,
			ref.ReferredEmail,
			ref.ReferredCompany,
			ref.Status,
			nullable(ref.ConvertedClientID),
			ref.Notes,
			ref.CreatedAt,
			ref.UpdatedAt,
		)
		if err != nil {
			return writeError(err, "create", "referral")
		}
		return nil
	})
	if err != nil {
		return err
	}
	ref.ID = id
	return nil
}

// Get retrieves a referral by ID
func (r *ReferralRepository) Get(ctx context.Context, id string) (*referral.Referral, error) {
	return getReferral(ctx, r.db, id)
}

func getReferral(ctx context.Context, q querier, id string) (*referral.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals rf WHERE rf.id = ?`
	ref, err := scanReferral(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return ref, nil
}

// List returns referrals matching the filters, newest first
func (r *ReferralRepository) List(ctx context.Context, opts referral.ListOptions) ([]referral.Referral, error) {
	var f filter
	f.addIf("rf.status", opts.Status)
	f.addIf("rf.referrer_client_id", opts.ReferrerClientID)

	query := `SELECT ` + referralColumns + ` FROM referrals rf` + f.where() +
		` ORDER BY rf.created_at DESC, rf.rowid DESC` + f.page(opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return collectReferrals(rows)
}

// Update overwrites the mutable referral fields
func (r *ReferralRepository) Update(ctx context.Context, ref *referral.Referral) error {
	query := `
		UPDATE referrals
		SET referred_name = ?, referred_email = ?, referred_company = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		ref.ReferredName,
		ref.ReferredEmail,
		ref.ReferredCompany,
		ref.Status,
		ref.Notes,
		ref.UpdatedAt,
		ref.ID,
	)
	if err != nil {
		return writeError(err, "update", "referral")
	}
	return expectOneRow(result)
}

// Delete removes a referral; project links cascade
func (r *ReferralRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, "referrals", "referral", id)
}

// Convert creates c from the referral and marks the referral converted, all
// in one transaction
func (r *ReferralRepository) Convert(ctx context.Context, id string, c *client.Client) (*referral.Referral, error) {
	var converted *referral.Referral
	clientID, err := r.db.createWithID(ctx, ident.Client, func(tx *sql.Tx, clientID string) error {
		ref, err := getReferral(ctx, tx, id)
		if err != nil {
			return err
		}
		if ref.ConvertedClientID != nil {
			return fmt.Errorf("%w: %s", referral.ErrAlreadyConverted, id)
		}
		if err := insertClient(ctx, tx, clientID, c); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE referrals SET status = ?, converted_client_id = ?, updated_at = ? WHERE id = ? AND converted_client_id IS NULL`,
			referral.StatusConverted, clientID, c.CreatedAt, id,
		)
		if err != nil {
			return fmt.Errorf("failed to mark referral converted: %w", err)
		}
		if err := expectOneRow(result); err != nil {
			return err
		}

		ref.Status = referral.StatusConverted
		ref.ConvertedClientID = &clientID
		ref.UpdatedAt = c.CreatedAt
		converted = ref
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.ID = clientID
	return converted, nil
}
