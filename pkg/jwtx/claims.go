package jwtx

import (
	"crypto/rand"
	"encoding/hex"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short access tokens bound the blast radius of a leaked
// token; the refresh token is the durable credential and stays revocable by
// its jti.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the signed payload of both access and refresh tokens. Which kind
// a token is follows from the secret/TTL pair that produced it, not from a
// claim.
type Claims struct {
	jwt.RegisteredClaims

	// Fingerprint is an opaque client-supplied value binding the token to a
	// device/browser instance. Optional, but once embedded it is enforced
	// for the token's lifetime.
	Fingerprint string `json:"fpt,omitempty"`
}

// NewJTI returns a fresh 256-bit crypto-random token identifier in hex.
// Revocation lists key off this value, so it must be unguessable and
// collision-free for any realistic issuance volume.
func NewJTI() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// ValidateIssuer checks the iss claim against the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// RemainingLifetime reports how long until the token expires at the given
// instant. Zero or negative means already expired; tokens without an exp
// claim report a zero duration.
func (c *Claims) RemainingLifetime(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
