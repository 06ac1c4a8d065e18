// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "context"

// CredentialHasher derives and verifies salted password hashes. Implementations
// must use a slow, cost-parameterized algorithm; a bare SHA-family hash, even
// salted, is not an acceptable primitive here.
type CredentialHasher interface {
	// Derive generates a fresh random salt and derives a one-way hash from the
	// plaintext password. The plaintext is never retained or logged. For
	// algorithms that embed the salt in the hash encoding the returned salt is
	// empty.
	Derive(ctx context.Context, password string) (hash, salt string, err error)

	// Verify recomputes the hash with the stored salt and parameters and
	// compares it to the stored hash in constant time.
	Verify(ctx context.Context, password, hash, salt string) (bool, error)

	// DummyHash returns a precomputed credential of normal cost. Callers
	// verify against it when no identity was found so the failure path costs
	// the same as a real mismatch.
	DummyHash() (hash, salt string)
}
