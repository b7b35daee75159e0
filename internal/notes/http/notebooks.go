package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwell-app/inkwell/internal/notes/domain"
	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/pkg/cachex"
	"github.com/inkwell-app/inkwell/pkg/httpx"
	"github.com/inkwell-app/inkwell/pkg/slogx"
)

// NotebooksHandler serves notebook CRUD. Write operations invalidate the
// response cache namespace so stale lists never outlive a mutation.
type NotebooksHandler struct {
	Notes *service.NotesService
	Cache *cachex.Cache
}

type notebookRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type notebookResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toNotebookResponse(nb domain.Notebook) notebookResponse {
	return notebookResponse{
		ID:          nb.ID,
		Name:        nb.Name,
		Description: nb.Description,
		CreatedAt:   nb.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   nb.UpdatedAt.UTC().Format(timeLayout),
	}
}

// writeServiceError maps NotesService errors onto the response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrBadInput):
		httpx.Error(w, http.StatusBadRequest, "invalid input")
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *NotebooksHandler) invalidate() {
	if h.Cache != nil {
		h.Cache.ClearNamespace(ResponseCacheNamespace)
	}
}

// HandleCreate creates a notebook.
//
//	@Summary	Create a notebook
//	@Tags		Notebooks
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		notebookRequest	true	"name and description"
//	@Success	201		{object}	notebookResponse
//	@Router		/v1/notebooks [post].
func (h *NotebooksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req notebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	nb, err := h.Notes.CreateNotebook(r.Context(), principal.UserID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	httpx.WriteJSON(w, http.StatusCreated, toNotebookResponse(nb))
}

// HandleList lists the caller's notebooks.
//
//	@Summary	List notebooks
//	@Tags		Notebooks
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	notebookResponse
//	@Router		/v1/notebooks [get].
func (h *NotebooksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	list, err := h.Notes.ListNotebooks(r.Context(), principal.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]notebookResponse, 0, len(list))
	for _, nb := range list {
		out = append(out, toNotebookResponse(nb))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet fetches one notebook.
//
//	@Summary	Get a notebook
//	@Tags		Notebooks
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"notebook id"
//	@Success	200	{object}	notebookResponse
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/v1/notebooks/{id} [get].
func (h *NotebooksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	nb, err := h.Notes.GetNotebook(r.Context(), principal.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNotebookResponse(nb))
}

// HandleUpdate renames a notebook.
//
//	@Summary	Update a notebook
//	@Tags		Notebooks
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"notebook id"
//	@Param		request	body		notebookRequest	true	"new name and description"
//	@Success	200		{object}	notebookResponse
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/v1/notebooks/{id} [put].
func (h *NotebooksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req notebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	nb, err := h.Notes.UpdateNotebook(r.Context(), principal.UserID, r.PathValue("id"), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	httpx.WriteJSON(w, http.StatusOK, toNotebookResponse(nb))
}

// HandleDelete removes a notebook and its notes.
//
//	@Summary	Delete a notebook
//	@Tags		Notebooks
//	@Security	BearerAuth
//	@Param		id	path	string	true	"notebook id"
//	@Success	204	"Deleted"
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/v1/notebooks/{id} [delete].
func (h *NotebooksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := h.Notes.DeleteNotebook(r.Context(), principal.UserID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.invalidate()
	w.WriteHeader(http.StatusNoContent)
}
