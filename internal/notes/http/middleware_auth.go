package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/pkg/httpx"
	"github.com/inkwell-app/inkwell/pkg/slogx"
)

// Request/response headers used by the session layer.
const (
	HeaderFingerprint = "X-Client-Fingerprint"
	HeaderNewToken    = "X-New-Token"
)

type principalCtxKey struct{}

// PrincipalFromContext returns the authenticated principal attached by
// SessionMiddleware, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(domain.Principal)
	return p, ok
}

// SessionMiddleware guards a route behind a verified access token.
//
// The checks run in a fixed order: a missing token is 401; a token that
// fails signature or shape checks is 403, while one that merely expired is
// 401 so clients know to refresh; a revoked token, a fingerprint mismatch
// (which also burns the token), and a token for a deleted user are all 403.
// On success the principal lands in the request context, and when the token
// is close to expiry the response carries a replacement in X-New-Token.
type SessionMiddleware struct {
	Sessions *service.SessionService

	// DevMode adds internal error detail to auth failure responses.
	DevMode bool
}

func (m *SessionMiddleware) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			token := bearerToken(r)
			if token == "" {
				m.fail(w, http.StatusUnauthorized, "missing access token", nil)
				return
			}

			fingerprint := r.Header.Get(HeaderFingerprint)

			principal, claims, err := m.Sessions.VerifyAccess(ctx, token, fingerprint)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					m.fail(w, http.StatusUnauthorized, "access token expired", err)
				case errors.Is(err, service.ErrTokenMalformed):
					log.Warn("rejected malformed access token",
						slog.String("token_prefix", truncateToken(token)),
					)
					m.fail(w, http.StatusForbidden, "invalid access token", err)
				case errors.Is(err, service.ErrTokenRevoked):
					m.fail(w, http.StatusForbidden, "access token revoked", err)
				case errors.Is(err, service.ErrFingerprintMismatch):
					m.fail(w, http.StatusForbidden, "access token revoked", err)
				case errors.Is(err, service.ErrUserNotFound):
					m.fail(w, http.StatusForbidden, "account no longer exists", err)
				default:
					log.Error("session verification failed", slog.Any("err", err))
					m.fail(w, http.StatusInternalServerError, "internal server error", err)
				}
				return
			}

			if m.Sessions.ShouldRenew(claims, time.Now()) {
				renewed, err := m.Sessions.RenewAccess(claims)
				if err != nil {
					// Renewal is best effort; the current token is still valid
					log.Warn("access token renewal failed", slog.Any("err", err))
				} else {
					w.Header().Set(HeaderNewToken, renewed)
				}
			}

			ctx = context.WithValue(ctx, principalCtxKey{}, principal)
			ctx = context.WithValue(ctx, httpx.CtxKeyUserID, principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *SessionMiddleware) fail(w http.ResponseWriter, code int, message string, err error) {
	if m.DevMode && err != nil {
		httpx.ErrorDetail(w, code, message, err.Error())
		return
	}
	httpx.Error(w, code, message)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// truncateToken keeps log lines useful without writing whole credentials
// into the logs.
func truncateToken(token string) string {
	const keep = 12
	if len(token) <= keep {
		return token
	}
	return token[:keep] + "..."
}
