package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
	"github.com/inkwell-app/inkwell/internal/notes/store"
	"github.com/inkwell-app/inkwell/pkg/cryptox"
	"github.com/inkwell-app/inkwell/pkg/jwtx"
	"github.com/inkwell-app/inkwell/pkg/revoke"
	"github.com/inkwell-app/inkwell/pkg/slogx"
)

var (
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrTokenExpired        = errors.New("token_expired")
	ErrTokenMalformed      = errors.New("token_malformed")
	ErrTokenRevoked        = errors.New("token_revoked")
	ErrFingerprintMismatch = errors.New("fingerprint_mismatch")
	ErrUserNotFound        = errors.New("user_not_found")
)

// DefaultRenewThreshold is how close to expiry an access token has to be
// before a verified request gets a fresh token attached to the response.
const DefaultRenewThreshold = 5 * time.Minute

// SessionService issues and verifies the access/refresh token pair. The two
// codecs are configured with distinct secrets so a refresh token can never be
// presented as an access token or vice versa.
type SessionService struct {
	Access       *jwtx.Codec
	RefreshCodec *jwtx.Codec
	Store        store.Store
	Revoked      revoke.Store

	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	RenewThreshold time.Duration
}

func (s *SessionService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *SessionService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (s *SessionService) renewThreshold() time.Duration {
	if s.RenewThreshold > 0 {
		return s.RenewThreshold
	}
	return DefaultRenewThreshold
}

// bindFingerprint hashes the raw client fingerprint header before it is
// embedded in claims. An empty fingerprint issues an unbound token.
func bindFingerprint(fingerprint string) string {
	if fingerprint == "" {
		return ""
	}
	return cryptox.FingerprintToken(fingerprint)
}

// IssuePair mints a fresh access/refresh pair for a user, both bound to the
// client fingerprint when one is presented.
func (s *SessionService) IssuePair(ctx context.Context, userID, fingerprint string) (domain.TokenPair, error) {
	bound := bindFingerprint(fingerprint)

	access, _, err := s.Access.Issue(userID, bound, s.accessTTL())
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, _, err := s.RefreshCodec.Issue(userID, bound, s.refreshTTL())
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL().Seconds()),
	}, nil
}

// VerifyAccess runs the full access token check: signature and expiry,
// revocation, fingerprint binding, and user existence. On success it
// returns the request Principal alongside the verified claims.
//
// A fingerprint mismatch revokes the presented token before returning, so
// a stolen token burns itself on first misuse.
func (s *SessionService) VerifyAccess(ctx context.Context, token, fingerprint string) (domain.Principal, jwtx.Claims, error) {
	claims, err := s.Access.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.Principal{}, jwtx.Claims{}, ErrTokenExpired
		}
		return domain.Principal{}, jwtx.Claims{}, ErrTokenMalformed
	}

	revoked, err := s.Revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Principal{}, jwtx.Claims{}, err
	}
	if revoked {
		return domain.Principal{}, jwtx.Claims{}, ErrTokenRevoked
	}

	if claims.Fingerprint != "" && claims.Fingerprint != bindFingerprint(fingerprint) {
		l := slogx.FromContext(ctx)
		l.Warn("access token fingerprint mismatch, revoking",
			slog.String("jti", claims.ID),
			slog.String("sub", claims.Subject),
		)
		if err := s.Revoked.Revoke(ctx, claims.ID); err != nil {
			return domain.Principal{}, jwtx.Claims{}, err
		}
		return domain.Principal{}, jwtx.Claims{}, ErrFingerprintMismatch
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, jwtx.Claims{}, ErrUserNotFound
		}
		return domain.Principal{}, jwtx.Claims{}, err
	}

	principal := domain.Principal{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		TokenID:     claims.ID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}

	return principal, claims, nil
}

// ShouldRenew reports whether a verified access token is close enough to
// expiry that the response should carry a fresh one.
func (s *SessionService) ShouldRenew(claims jwtx.Claims, now time.Time) bool {
	remaining := claims.RemainingLifetime(now)
	return remaining > 0 && remaining < s.renewThreshold()
}

// RenewAccess issues a replacement access token carrying the same subject and
// fingerprint binding as the verified claims it renews.
func (s *SessionService) RenewAccess(claims jwtx.Claims) (string, error) {
	token, _, err := s.Access.Issue(claims.Subject, claims.Fingerprint, s.accessTTL())
	return token, err
}

// Refresh rotates a refresh token: the presented token is verified, checked
// against the revocation registry and fingerprint binding, then revoked and
// replaced by a fresh pair.
func (s *SessionService) Refresh(ctx context.Context, refreshToken, fingerprint string) (domain.TokenPair, error) {
	claims, err := s.RefreshCodec.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.TokenPair{}, ErrTokenExpired
		}
		return domain.TokenPair{}, ErrTokenMalformed
	}

	revoked, err := s.Revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if revoked {
		return domain.TokenPair{}, ErrTokenRevoked
	}

	if claims.Fingerprint != "" && claims.Fingerprint != bindFingerprint(fingerprint) {
		l := slogx.FromContext(ctx)
		l.Warn("refresh token fingerprint mismatch, revoking",
			slog.String("jti", claims.ID),
			slog.String("sub", claims.Subject),
		)
		if err := s.Revoked.Revoke(ctx, claims.ID); err != nil {
			return domain.TokenPair{}, err
		}
		return domain.TokenPair{}, ErrFingerprintMismatch
	}

	if _, err := s.Store.Users().GetUserByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUserNotFound
		}
		return domain.TokenPair{}, err
	}

	// Rotation: the old refresh token must not be usable again.
	if err := s.Revoked.Revoke(ctx, claims.ID); err != nil {
		return domain.TokenPair{}, err
	}

	return s.IssuePair(ctx, claims.Subject, fingerprint)
}

// Logout revokes the jti of every token presented. Tokens that fail to parse
// are skipped; logout never fails because a token is already expired.
func (s *SessionService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		claims, ok := jwtx.DecodeUnsafe(token)
		if !ok || claims.ID == "" {
			continue
		}
		if err := s.Revoked.Revoke(ctx, claims.ID); err != nil {
			return err
		}
	}
	return nil
}
