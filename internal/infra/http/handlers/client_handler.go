package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ClientHandler struct {
	Browse   *usecase.BrowseUseCase
	Update   *usecase.UpdateClientUseCase
	Comments *usecase.AddCommentUseCase
	Logger   *slog.Logger
}

func NewClientHandler(browse *usecase.BrowseUseCase, update *usecase.UpdateClientUseCase, comments *usecase.AddCommentUseCase, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{Browse: browse, Update: update, Comments: comments, Logger: logger}
}

// List (GET /client)
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Browse.ListClients(r.Context(), middleware.SessionFromContext(r.Context()), listQuery(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := h.Browse.GetClient(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch entity.ClientPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	client, err := h.Update.Execute(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Browse.DeleteClient(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if !deleted {
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", entity.ErrClientNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment (POST /client/{id}/comments)
func (h *ClientHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddCommentInput
	if !decodeJSON(w, r, &input) {
		return
	}

	s := middleware.SessionFromContext(r.Context())
	client, err := h.Comments.OnClient(r.Context(), s, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordComment(s.CRMType, "client")
	writeJSON(w, http.StatusCreated, client)
}
