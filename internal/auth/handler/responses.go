package handler

import (
	"time"

	"datamover/internal/auth"
)

// KeyResponse is the HTTP shape of an API key. The secret never appears.
type KeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// IssuedKeyResponse carries the plaintext key, returned only at issue time.
type IssuedKeyResponse struct {
	KeyResponse
	Key string `json:"key"`
}

// ListResponse wraps the key collection.
type ListResponse struct {
	Keys []KeyResponse `json:"keys"`
}

// FromKey converts a domain key to its response shape.
func FromKey(k auth.APIKey) KeyResponse {
	return KeyResponse{
		ID:         k.ID.String(),
		Name:       k.Name,
		Prefix:     k.Prefix,
		CreatedBy:  k.CreatedBy,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		RevokedAt:  k.RevokedAt,
	}
}

// FromIssuedKey pairs the key metadata with its one-time plaintext.
func FromIssuedKey(k auth.APIKey, plaintext string) IssuedKeyResponse {
	return IssuedKeyResponse{
		KeyResponse: FromKey(k),
		Key:         plaintext,
	}
}

// FromKeys converts a key collection to the list response.
func FromKeys(keys []auth.APIKey) ListResponse {
	out := make([]KeyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, FromKey(k))
	}
	return ListResponse{Keys: out}
}
