package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/repository"
)

// APIKey maps a hashed bearer token to a user and role.
type APIKey struct {
	KeyHash     string
	UserID      string
	Role        string
	Description string
	CreatedAt   time.Time
	LastUsed    *time.Time
}

// APIKeyRepository stores API keys.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// HashToken returns the stored form of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Add stores the hash of token for userID with role.
func (r *APIKeyRepository) Add(ctx context.Context, token, userID, role, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, user_id, role, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		HashToken(token), userID, role, description, time.Now(),
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// Lookup finds the key for token and stamps its last use.
func (r *APIKeyRepository) Lookup(ctx context.Context, token string) (*APIKey, error) {
	hash := HashToken(token)

	var key APIKey
	var lastUsed sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT key_hash, user_id, role, description, created_at, last_used FROM api_keys WHERE key_hash = ?`,
		hash,
	).Scan(&key.KeyHash, &key.UserID, &key.Role, &key.Description, &key.CreatedAt, &lastUsed)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	if lastUsed.Valid {
		key.LastUsed = &lastUsed.Time
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now(), hash); err != nil {
		return nil, fmt.Errorf("failed to stamp api key: %w", err)
	}
	return &key, nil
}

// ResolvePrincipal implements auth.Resolver.
func (r *APIKeyRepository) ResolvePrincipal(ctx context.Context, token string) (auth.Principal, error) {
	key, err := r.Lookup(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Principal{}, fmt.Errorf("%w: invalid token", auth.ErrUnauthorized)
	}
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{UserID: key.UserID, Role: key.Role}, nil
}
