package http

import (
	"net/http"
	"time"

	"github.com/inkwell-app/inkwell/pkg/httpx"
)

const timeLayout = time.RFC3339

// MeHandler returns the authenticated user's profile.
//
//	@Summary		Get the current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	userResponse
//	@Failure		401	{object}	httpx.ErrorBody	"Missing or expired access token"
//	@Failure		403	{object}	httpx.ErrorBody	"Invalid or revoked access token"
//	@Router			/v1/me [get].
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "missing access token")
			return
		}

		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, userResponse{
			ID:          principal.UserID,
			Email:       principal.Email,
			DisplayName: principal.DisplayName,
		})
	}
}
