package jwtx

import "errors"

var (
	// ErrMalformed covers anything that makes the token untrustworthy for a
	// reason other than age: bad signature, wrong algorithm, garbage input.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrExpired means the signature checked out but the token is past its
	// exp claim. Callers distinguish this from ErrMalformed because clients
	// are expected to silently refresh on expiry but not on tampering.
	ErrExpired = errors.New("jwtx: token expired")

	ErrIssuer   = errors.New("jwtx: issuer mismatch")
	ErrAudience = errors.New("jwtx: audience mismatch")

	// ErrBadConfig reports an unusable codec configuration (empty secret,
	// unknown algorithm).
	ErrBadConfig = errors.New("jwtx: invalid codec configuration")
)
