package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/export"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadHandler struct {
	Browse   *usecase.BrowseUseCase
	Create   *usecase.CreateLeadUseCase
	Update   *usecase.UpdateLeadUseCase
	Comments *usecase.AddCommentUseCase
	Convert  *usecase.ConvertLeadUseCase
	Vocab    *entity.Vocabularies
	Logger   *slog.Logger
}

func NewLeadHandler(
	browse *usecase.BrowseUseCase,
	create *usecase.CreateLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	comments *usecase.AddCommentUseCase,
	convert *usecase.ConvertLeadUseCase,
	vocab *entity.Vocabularies,
	logger *slog.Logger,
) *LeadHandler {
	return &LeadHandler{
		Browse:   browse,
		Create:   create,
		Update:   update,
		Comments: comments,
		Convert:  convert,
		Vocab:    vocab,
		Logger:   logger,
	}
}

// List (GET /lead?q=&filter=&page=&pageSize=)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Browse.ListLeads(r.Context(), middleware.SessionFromContext(r.Context()), listQuery(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleCreate (POST /lead)
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Create.Execute(r.Context(), middleware.SessionFromContext(r.Context()), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordLeadCreated(lead.CRMType)
	writeJSON(w, http.StatusCreated, lead)
}

// Get (GET /lead/{id})
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Browse.GetLead(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// HandleUpdate (PUT /lead/{id})
func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch entity.LeadPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	lead, err := h.Update.Execute(r.Context(), middleware.SessionFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Delete (DELETE /lead/{id})
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.Browse.DeleteLead(r.Context(), middleware.SessionFromContext(r.Context()), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if !deleted {
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", entity.ErrLeadNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment (POST /lead/{id}/comments)
func (h *LeadHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddCommentInput
	if !decodeJSON(w, r, &input) {
		return
	}

	s := middleware.SessionFromContext(r.Context())
	lead, err := h.Comments.OnLead(r.Context(), s, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordComment(s.CRMType, "lead")
	writeJSON(w, http.StatusCreated, lead)
}

// HandleConvert (POST /lead/{id}/convert). The body is optional.
func (h *LeadHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var opts usecase.ConversionOptions
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido: "+err.Error())
		return
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &opts); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido: "+err.Error())
			return
		}
	}

	s := middleware.SessionFromContext(r.Context())
	out, err := h.Convert.Execute(r.Context(), s, chi.URLParam(r, "id"), opts)
	if err != nil {
		var converted *entity.AlreadyConvertedError
		if errors.As(err, &converted) {
			middleware.RecordConversion(s.CRMType, "rejected")
		}
		writeError(w, h.Logger, err)
		return
	}

	if out.Existing {
		middleware.RecordConversion(s.CRMType, "existing")
		writeJSON(w, http.StatusOK, out)
		return
	}
	middleware.RecordConversion(s.CRMType, "converted")
	writeJSON(w, http.StatusCreated, out)
}

// Export (GET /lead/export.xlsx) honours the same q and filter parameters as List.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	q := listQuery(r)
	leads, err := h.Browse.AllLeads(r.Context(), s, q.Text, q.Filters)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLeads(&buf, leads, h.Vocab); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leads-%s.xlsx"`, s.CRMType))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
