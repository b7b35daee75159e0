package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/pkg/httpx"
	"github.com/inkwell-app/inkwell/pkg/slogx"
)

// AuthHandler serves registration, login, refresh and logout.
type AuthHandler struct {
	Users    *service.UserService
	Sessions *service.SessionService
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// HandleRegister creates an account and immediately issues a session.
//
//	@Summary		Register a new account
//	@Description	Creates a user and returns an access/refresh token pair bound to the client fingerprint header when present.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"email, display_name and password"
//	@Success		201		{object}	sessionResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Invalid email or weak password"
//	@Failure		409		{object}	httpx.ErrorBody	"Email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Users.Register(ctx, req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			httpx.Error(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, service.ErrPasswordTooWeak):
			httpx.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.Error(w, http.StatusConflict, "email already registered")
		default:
			log.Error("registration failed", slog.Any("err", err))
			httpx.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	pair, err := h.Sessions.IssuePair(ctx, user.ID, r.Header.Get(HeaderFingerprint))
	if err != nil {
		log.Error("session issue failed", slog.Any("err", err))
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, sessionResponse{
		User: userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt.UTC().Format(timeLayout),
		},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
}

// HandleLogin verifies credentials and issues a token pair.
//
//	@Summary		Log in
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"email and password"
//	@Success		200		{object}	sessionResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Missing fields"
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid credentials"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		log.Error("login failed", slog.Any("err", err))
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	pair, err := h.Sessions.IssuePair(ctx, user.ID, r.Header.Get(HeaderFingerprint))
	if err != nil {
		log.Error("session issue failed", slog.Any("err", err))
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID))

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		User: userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt.UTC().Format(timeLayout),
		},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// HandleRefresh rotates a refresh token for a fresh pair.
//
//	@Summary		Refresh the session
//	@Description	Exchanges a valid refresh token for a new access/refresh pair. The presented refresh token is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshRequest	true	"refresh_token"
//	@Success		200		{object}	tokenPairResponse
//	@Failure		403		{object}	httpx.ErrorBody	"Refresh token expired, invalid, revoked or bound to a different client"
//	@Router			/v1/auth/refresh-token [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.Sessions.Refresh(ctx, req.RefreshToken, r.Header.Get(HeaderFingerprint))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			// Unlike access tokens there is nothing to silently refresh
			// with, so an expired refresh token is a hard 403.
			httpx.Error(w, http.StatusForbidden, "refresh token expired")
		case errors.Is(err, service.ErrTokenMalformed):
			httpx.Error(w, http.StatusForbidden, "invalid refresh token")
		case errors.Is(err, service.ErrTokenRevoked),
			errors.Is(err, service.ErrFingerprintMismatch):
			httpx.Error(w, http.StatusForbidden, "refresh token revoked")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.Error(w, http.StatusForbidden, "account no longer exists")
		default:
			log.Error("refresh failed", slog.Any("err", err))
			httpx.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleLogout revokes the current session's tokens. The access token comes
// from the Authorization header, the refresh token from the body; both are
// best effort so an expired session can still log out.
//
//	@Summary		Log out
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		200	"Session revoked"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req logoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.Sessions.Logout(ctx, bearerToken(r), req.RefreshToken); err != nil {
		log.Error("logout failed", slog.Any("err", err))
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
}
