package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/internal/notes/store"
	"github.com/inkwell-app/inkwell/pkg/cachex"
	"github.com/inkwell-app/inkwell/pkg/httpx"
)

type TagsHandler struct {
	Notes *service.NotesService
	Cache *cachex.Cache
}

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type tagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func toTagResponse(t domain.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Color: t.Color}
}

func (h *TagsHandler) invalidate() {
	if h.Cache != nil {
		h.Cache.ClearNamespace(ResponseCacheNamespace)
	}
}

// HandleCreate creates a tag.
//
//	@Summary	Create a tag
//	@Tags		Tags
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		tagRequest	true	"name and color"
//	@Success	201		{object}	tagResponse
//	@Failure	409		{object}	httpx.ErrorBody	"Tag name already used"
//	@Router		/v1/tags [post].
func (h *TagsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Notes.CreateTag(r.Context(), principal.UserID, req.Name, req.Color)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			httpx.Error(w, http.StatusConflict, "tag name already used")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	httpx.WriteJSON(w, http.StatusCreated, toTagResponse(t))
}

// HandleList lists the caller's tags.
//
//	@Summary	List tags
//	@Tags		Tags
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	tagResponse
//	@Router		/v1/tags [get].
func (h *TagsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	list, err := h.Notes.ListTags(r.Context(), principal.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tagResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTagResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete removes a tag everywhere it is assigned.
//
//	@Summary	Delete a tag
//	@Tags		Tags
//	@Security	BearerAuth
//	@Param		id	path	string	true	"tag id"
//	@Success	204	"Deleted"
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/v1/tags/{id} [delete].
func (h *TagsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := h.Notes.DeleteTag(r.Context(), principal.UserID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssign attaches a tag to a note.
//
//	@Summary	Assign a tag to a note
//	@Tags		Tags
//	@Security	BearerAuth
//	@Param		id		path	string	true	"note id"
//	@Param		tagID	path	string	true	"tag id"
//	@Success	204		"Assigned"
//	@Failure	404		{object}	httpx.ErrorBody	"Note or tag not found"
//	@Router		/v1/notes/{id}/tags/{tagID} [put].
func (h *TagsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	err := h.Notes.AssignTag(r.Context(), principal.UserID, r.PathValue("id"), r.PathValue("tagID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnassign detaches a tag from a note.
//
//	@Summary	Unassign a tag from a note
//	@Tags		Tags
//	@Security	BearerAuth
//	@Param		id		path	string	true	"note id"
//	@Param		tagID	path	string	true	"tag id"
//	@Success	204		"Unassigned"
//	@Failure	404		{object}	httpx.ErrorBody	"Note not found"
//	@Router		/v1/notes/{id}/tags/{tagID} [delete].
func (h *TagsHandler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	err := h.Notes.UnassignTag(r.Context(), principal.UserID, r.PathValue("id"), r.PathValue("tagID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// HandleListByNote lists the tags attached to a note.
//
//	@Summary	List a note's tags
//	@Tags		Tags
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path	string	true	"note id"
//	@Success	200	{array}	tagResponse
//	@Failure	404	{object}	httpx.ErrorBody	"Note not found"
//	@Router		/v1/notes/{id}/tags [get].
func (h *TagsHandler) HandleListByNote(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	list, err := h.Notes.ListNoteTags(r.Context(), principal.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tagResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTagResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
