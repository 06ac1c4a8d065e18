package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one authenticated login. The caller only ever sees the
// opaque handle; the record stores a SHA-256 digest of the handle's secret,
// never the secret itself.
type Session struct {
	ID         uuid.UUID // Unique ID for this session record, embedded in the handle.
	IdentityID uuid.UUID // Back-reference (by id) to the Identity this session authenticates.
	TokenHash  string    // SHA-256 hex digest of the handle secret.
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Revoked    bool // Once true the session is permanently invalid.
}

// Terminated reports whether the session has reached its absorbing state,
// either by revocation or by passing its expiry at the given instant.
func (s *Session) Terminated(now time.Time) bool {
	return s.Revoked || !s.ExpiresAt.After(now)
}
