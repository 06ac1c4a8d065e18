package service

import (
	"time"

	"github.com/google/uuid"
)

// TokenService mints and validates short-lived access tokens carried alongside
// the opaque session handle. The access gate never consumes these; they are a
// stateless convenience for the transport collaborator.
type TokenService interface {
	// GenerateAccessToken creates a signed token bound to the identity id.
	GenerateAccessToken(identityID uuid.UUID) (string, error)

	// ValidateAccessToken checks signature and expiry and returns the identity
	// id the token was issued for.
	ValidateAccessToken(token string) (uuid.UUID, error)

	// AccessTokenDuration returns the configured token lifetime.
	AccessTokenDuration() time.Duration
}
