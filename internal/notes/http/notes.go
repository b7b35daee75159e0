package http

import (
	"encoding/json"
	"net/http"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/pkg/cachex"
	"github.com/inkwell-app/inkwell/pkg/httpx"
)

type NotesHandler struct {
	Notes *service.NotesService
	Cache *cachex.Cache
}

type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type noteResponse struct {
	ID         string `json:"id"`
	NotebookID string `json:"notebook_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Pinned     bool   `json:"pinned"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toNoteResponse(n domain.Note) noteResponse {
	return noteResponse{
		ID:         n.ID,
		NotebookID: n.NotebookID,
		Title:      n.Title,
		Body:       n.Body,
		Pinned:     n.Pinned,
		CreatedAt:  n.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:  n.UpdatedAt.UTC().Format(timeLayout),
	}
}

func toNoteResponses(notes []domain.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}

func (h *NotesHandler) invalidate() {
	if h.Cache != nil {
		h.Cache.ClearNamespace(ResponseCacheNamespace)
	}
}

// HandleCreate creates a note inside a notebook.
//
//	@Summary	Create a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"notebook id"
//	@Param		request	body		noteRequest	true	"title and body"
//	@Success	201		{object}	noteResponse
//	@Failure	404		{object}	httpx.ErrorBody	"Notebook not found"
//	@Router		/v1/notebooks/{id}/notes [post].
func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Notes.CreateNote(r.Context(), principal.UserID, r.PathValue("id"), req.Title, req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	httpx.WriteJSON(w, http.StatusCreated, toNoteResponse(n))
}

// HandleList lists a notebook's notes, pinned first.
//
//	@Summary	List notes in a notebook
//	@Tags		Notes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path	string	true	"notebook id"
//	@Success	200	{array}	noteResponse
//	@Failure	404	{object}	httpx.ErrorBody	"Notebook not found"
//	@Router		/v1/notebooks/{id}/notes [get].
func (h *NotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	list, err := h.Notes.ListNotes(r.Context(), principal.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNoteResponses(list))
}

// HandleGet fetches one note.
//
//	@Summary	Get a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"note id"
//	@Success	200	{object}	noteResponse
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/v1/notes/{id} [get].
func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	n, err := h.Notes.GetNote(r.Context(), principal.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNoteResponse(n))
}

// HandleUpdate replaces a note's title and body.
//
//	@Summary	Update a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"note id"
//	@Param		request	body		noteRequest	true	"title and body"
//	@Success	200		{object}	noteResponse
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/v1/notes/{id} [put].
func (h *NotesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Notes.UpdateNote(r.Context(), principal.UserID, r.PathValue("id"), req.Title, req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	httpx.WriteJSON(w, http.StatusOK, toNoteResponse(n))
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// HandlePin pins or unpins a note.
//
//	@Summary	Pin or unpin a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"note id"
//	@Param		request	body		pinRequest	true	"pinned flag"
//	@Success	200		{object}	noteResponse
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/v1/notes/{id}/pin [put].
func (h *NotesHandler) HandlePin(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Notes.SetNotePinned(r.Context(), principal.UserID, r.PathValue("id"), req.Pinned)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	httpx.WriteJSON(w, http.StatusOK, toNoteResponse(n))
}

// HandleDelete removes a note.
//
//	@Summary	Delete a note
//	@Tags		Notes
//	@Security	BearerAuth
//	@Param		id	path	string	true	"note id"
//	@Success	204	"Deleted"
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/v1/notes/{id} [delete].
func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := h.Notes.DeleteNote(r.Context(), principal.UserID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// HandleSearch returns the caller's notes matching a substring query.
//
//	@Summary	Search notes
//	@Tags		Notes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		q	query	string	true	"substring to match against title and body"
//	@Success	200	{array}	noteResponse
//	@Failure	400	{object}	httpx.ErrorBody	"Missing query"
//	@Router		/v1/search [get].
func (h *NotesHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	list, err := h.Notes.SearchNotes(r.Context(), principal.UserID, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNoteResponses(list))
}
