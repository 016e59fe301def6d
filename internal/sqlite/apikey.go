package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/ident"
	"github.com/rpggio/crmdesk/internal/repository"
)

const apiKeyColumns = `id, name, key_prefix, scopes, created_at, last_used_at, revoked_at`

func scanAPIKey(s rowScanner) (*apikey.APIKey, error) {
	var key apikey.APIKey
	var lastUsed, revoked sql.NullTime
	if err := s.Scan(&key.ID, &key.Name, &key.KeyPrefix, &key.Scopes, &key.CreatedAt, &lastUsed, &revoked); err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		key.LastUsedAt = &lastUsed.Time
	}
	if revoked.Valid {
		key.RevokedAt = &revoked.Time
	}
	return &key, nil
}

// APIKeyRepository implements apikey.Repository for SQLite
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create assigns the next KEY identifier and stores the key with its token hash
func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey, keyHash string) error {
	id, err := r.db.createWithID(ctx, ident.APIKey, func(tx *sql.Tx, id string) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, key.Name, keyHash, key.KeyPrefix, key.Scopes, key.CreatedAt,
		)
		if err != nil {
			return writeError(err, "create", "api key")
		}
		return nil
	})
	if err != nil {
		return err
	}
	key.ID = id
	return nil
}

// Get retrieves a key by ID
func (r *APIKeyRepository) Get(ctx context.Context, id string) (*apikey.APIKey, error) {
	key, err := scanAPIKey(r.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return key, nil
}

// GetByHash retrieves a key by the SHA-256 hash of its token
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	key, err := scanAPIKey(r.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = ?`, keyHash))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return key, nil
}

// List returns every key in creation order
func (r *APIKeyRepository) List(ctx context.Context) ([]apikey.APIKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := []apikey.APIKey{}
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api key rows: %w", err)
	}
	return keys, nil
}

// TouchLastUsed records the time a key last authenticated
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update api key usage: %w", err)
	}
	return expectOneRow(result)
}

// Revoke marks a key revoked; an already revoked key keeps its original time
func (r *APIKeyRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE api_keys SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	return expectOneRow(result)
}
