package models

import "time"

// AuthToken maps an identity to its single active bearer token. Issuing a
// new token for the same user overwrites the previous one; there is no
// revocation list.
type AuthToken struct {
	UserID    int64      `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"token"`
	Level     Level      `db:"level" json:"level"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the token carries an expiry in the past.
func (t *AuthToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// AuthContext is the resolved identity attached to an authorized request.
type AuthContext struct {
	UserID int64 `json:"user_id"`
	Level  Level `json:"level"`
}
