package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/schoolops/presence-api/internal/models"
)

const tokenColumns = "user_id, token, level, expires_at, created_at, updated_at"

// TokenRepository persists the one active bearer token per identity.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// FindByToken resolves a bearer token string.
func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	query := fmt.Sprintf("SELECT %s FROM auth_tokens WHERE token = $1", tokenColumns)
	var stored models.AuthToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// FindByUserID returns the active token of an identity.
func (r *TokenRepository) FindByUserID(ctx context.Context, userID int64) (*models.AuthToken, error) {
	query := fmt.Sprintf("SELECT %s FROM auth_tokens WHERE user_id = $1", tokenColumns)
	var stored models.AuthToken
	if err := r.db.GetContext(ctx, &stored, query, userID); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Upsert installs a fresh token for the identity, overwriting any previous
// one. The level is only taken from the payload on first insert; a
// regeneration keeps the level already stored.
func (r *TokenRepository) Upsert(ctx context.Context, token *models.AuthToken) (*models.AuthToken, error) {
	now := time.Now().UTC()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO auth_tokens (user_id, token, level, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id)
DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
RETURNING %s`, tokenColumns)
	var stored models.AuthToken
	if err := r.db.GetContext(ctx, &stored, query, token.UserID, token.Token, token.Level, token.ExpiresAt, token.CreatedAt, token.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert auth token: %w", err)
	}
	return &stored, nil
}

// UpdateLevel elevates or demotes the stored permission level.
func (r *TokenRepository) UpdateLevel(ctx context.Context, userID int64, level models.Level) error {
	const query = `UPDATE auth_tokens SET level = $1, updated_at = $2 WHERE user_id = $3`
	if _, err := r.db.ExecContext(ctx, query, level, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("update token level: %w", err)
	}
	return nil
}

// Delete removes the identity's token.
func (r *TokenRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete auth token: %w", err)
	}
	return nil
}
