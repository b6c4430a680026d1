package auth

import (
	"time"

	"github.com/google/uuid"
)

// APIKey identifies a service caller. The plaintext key is shown once at
// issue time; only the bcrypt hash of its secret half is stored. The prefix
// half is kept in clear to locate the row on verification.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	Hash       string     `json:"-"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// Revoked reports whether the key has been withdrawn.
func (k APIKey) Revoked() bool {
	return k.RevokedAt != nil
}
