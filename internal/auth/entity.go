// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// BlacklistReason records why a token was revoked; it is stored as the
// value of the blacklist entry for later inspection.
type BlacklistReason string

const (
	ReasonLogout   BlacklistReason = "logout"
	ReasonSecurity BlacklistReason = "security"
	ReasonExpired  BlacklistReason = "expired"
)

// TokenRecord is a row in the active-token list. The raw token is never
// stored; only its SHA-256 hex digest.
type TokenRecord struct {
	ID        string    `db:"id"         json:"id"`
	UserID    string    `db:"user_id"    json:"user_id"`
	TokenHash string    `db:"token_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}
