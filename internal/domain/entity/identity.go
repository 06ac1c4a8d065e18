// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is a registered account: the durable record a successful
// authentication resolves to.
type Identity struct {
	ID        uuid.UUID // Unique identifier, assigned at creation and never reused.
	Username  string    // Unique login name, 3-20 characters, immutable after creation.
	Email     string    // Unique contact address, also accepted as a login identifier.
	CreatedAt time.Time // Timestamp of when this identity was created.
	UpdatedAt time.Time // Timestamp of the last modification to this identity.

	// Credential is the password-derived secret material proving ownership.
	// It is never serialized into logs or external payloads.
	Credential Credential
}

// Credential holds the derived hash and the salt it was derived with.
// The plaintext password is only ever a parameter to the hasher; it has no
// durable home on any entity. For algorithms that embed the salt in the hash
// encoding (bcrypt), Salt is empty.
type Credential struct {
	PasswordHash string
	Salt         string
}

// Empty reports whether no credential material is present. A persisted
// identity must never satisfy this.
func (c Credential) Empty() bool {
	return c.PasswordHash == "" && c.Salt == ""
}
