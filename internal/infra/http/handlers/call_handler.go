package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type CallHandler struct {
	Browse *usecase.BrowseUseCase
	Log    *usecase.LogCallUseCase
	Logger *slog.Logger
}

func NewCallHandler(browse *usecase.BrowseUseCase, logCall *usecase.LogCallUseCase, logger *slog.Logger) *CallHandler {
	return &CallHandler{Browse: browse, Log: logCall, Logger: logger}
}

// List (GET /calls?leadId=&clientId=)
func (h *CallHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	calls, err := h.Browse.ListCalls(r.Context(), middleware.SessionFromContext(r.Context()), q.Get("leadId"), q.Get("clientId"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, calls)
}

// HandleCreate (POST /calls)
func (h *CallHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.LogCallInput
	if !decodeJSON(w, r, &input) {
		return
	}

	call, err := h.Log.Execute(r.Context(), middleware.SessionFromContext(r.Context()), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordCall(call.CRMType, call.Status)
	writeJSON(w, http.StatusCreated, call)
}
