package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies tokens with a single symmetric secret. A service
// runs two of these — one per secret — so access and refresh tokens cannot be
// swapped for each other.
type Codec struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	issuer   string
	audience []string
}

// NewCodec builds a Codec for the given HMAC algorithm ("HS256", "HS384",
// "HS512"). The issuer and audience are stamped onto every issued token and
// enforced on every Verify.
func NewCodec(secret, algorithm, issuer string, audience []string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrBadConfig)
	}

	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrBadConfig, algorithm)
	}

	return &Codec{
		secret:   []byte(secret),
		method:   method,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Issue signs a token for subject with the given lifetime. The fingerprint
// may be empty, in which case no device binding applies. Every call mints a
// distinct jti.
func (c *Codec) Issue(subject, fingerprint string, ttl time.Duration) (string, Claims, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(c.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Fingerprint: fingerprint,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: signing failed: %w", err)
	}
	return signed, claims, nil
}

// Verify checks the signature and the standard claims, returning the decoded
// claims on success. The error distinguishes expiry (ErrExpired) from every
// other failure (ErrMalformed, ErrIssuer, ErrAudience) so the HTTP layer can
// map them to 401 vs 403.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrMalformed
		}
		return c.secret, nil
	})
	if err != nil {
		// golang-jwt only reports expiry after the signature checked out,
		// so this branch never masks tampering.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}
	if !parsed.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(c.audience); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// DecodeUnsafe extracts claims WITHOUT verifying the signature. It exists for
// best-effort cleanup paths (logout of a possibly-expired token) and must
// never gate access to anything.
func DecodeUnsafe(token string) (Claims, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, false
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, false
	}
	return claims, true
}
