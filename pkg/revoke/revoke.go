// Package revoke tracks token identifiers (jti claims) that must no longer be
// accepted, independent of signature or expiry validity.
package revoke

import "context"

// Store is the revocation capability the auth middleware depends on. It is an
// explicit interface so a shared external backend can be substituted without
// touching any caller; see Memory and Redis for the provided drivers.
type Store interface {
	// Revoke marks a token id as denied. Idempotent.
	Revoke(ctx context.Context, tokenID string) error

	// IsRevoked reports whether a token id has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
