package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t)

	t.Run("creates account and issues session", func(t *testing.T) {
		session := ts.register(t, "")
		require.Equal(t, "Bearer", session.TokenType)
		require.Positive(t, session.ExpiresIn)
		require.NotEmpty(t, session.User.ID)
		require.NotEqual(t, session.AccessToken, session.RefreshToken)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		session := ts.register(t, "")

		resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", "", map[string]string{
			"email":        session.User.Email,
			"display_name": "Impostor",
			"password":     testPassword,
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, "email already registered", errorMessage(t, resp))
	})

	t.Run("rejects weak password", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", "", map[string]string{
			"email":        "weak@example.com",
			"display_name": "Weak",
			"password":     "short",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		drain(t, resp)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", "", map[string]string{
			"email":        "not-an-email",
			"display_name": "Nobody",
			"password":     testPassword,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid email address", errorMessage(t, resp))
	})
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)
	registered := ts.register(t, "")

	t.Run("valid credentials", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/login", "", "", map[string]string{
			"email":    registered.User.Email,
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

		var session sessionBody
		decode(t, resp, &session)
		require.Equal(t, registered.User.ID, session.User.ID)
		require.NotEmpty(t, session.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/login", "", "", map[string]string{
			"email":    registered.User.Email,
			"password": "wrong password!",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid email or password", errorMessage(t, resp))
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/login", "", "", map[string]string{
			"email": registered.User.Email,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "email and password are required", errorMessage(t, resp))
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/login", "", "", map[string]string{
			"email":    "ghost@example.com",
			"password": testPassword,
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid email or password", errorMessage(t, resp))
	})
}

func TestMeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	session := ts.register(t, "")

	resp := ts.do(t, http.MethodGet, "/v1/me", session.AccessToken, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}
	decode(t, resp, &me)
	require.Equal(t, session.User.ID, me.ID)
	require.Equal(t, session.User.Email, me.Email)
}

func TestRefreshEndpoint(t *testing.T) {
	ts := newTestServer(t)

	t.Run("rotates the pair and revokes the old refresh token", func(t *testing.T) {
		session := ts.register(t, "")

		resp := ts.do(t, http.MethodPost, "/v1/auth/refresh-token", "", "", map[string]string{
			"refresh_token": session.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var pair struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		}
		decode(t, resp, &pair)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEqual(t, session.RefreshToken, pair.RefreshToken)

		// New access token works
		resp = ts.do(t, http.MethodGet, "/v1/me", pair.AccessToken, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		drain(t, resp)

		// The old refresh token is burned
		resp = ts.do(t, http.MethodPost, "/v1/auth/refresh-token", "", "", map[string]string{
			"refresh_token": session.RefreshToken,
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "refresh token revoked", errorMessage(t, resp))
	})

	t.Run("rejects an access token in the refresh slot", func(t *testing.T) {
		session := ts.register(t, "")

		resp := ts.do(t, http.MethodPost, "/v1/auth/refresh-token", "", "", map[string]string{
			"refresh_token": session.AccessToken,
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "invalid refresh token", errorMessage(t, resp))
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/refresh-token", "", "", map[string]string{})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		drain(t, resp)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)

	t.Run("revokes both tokens", func(t *testing.T) {
		session := ts.register(t, "")

		resp := ts.do(t, http.MethodPost, "/v1/auth/logout", session.AccessToken, "", map[string]string{
			"refresh_token": session.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		drain(t, resp)

		resp = ts.do(t, http.MethodGet, "/v1/me", session.AccessToken, "", nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "access token revoked", errorMessage(t, resp))

		resp = ts.do(t, http.MethodPost, "/v1/auth/refresh-token", "", "", map[string]string{
			"refresh_token": session.RefreshToken,
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		drain(t, resp)
	})

	t.Run("succeeds without any tokens", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/v1/auth/logout", "", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		drain(t, resp)
	})
}
