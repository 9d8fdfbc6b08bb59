package handlers

import (
	"log/slog"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ReportHandler struct {
	Reports *usecase.ReportUseCase
	Logger  *slog.Logger
}

func NewReportHandler(reports *usecase.ReportUseCase, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{Reports: reports, Logger: logger}
}

// Summary (GET /reports/summary)
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.Execute(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type VocabularyHandler struct {
	Vocab *entity.Vocabularies
}

type VocabularyResponse struct {
	Name        string          `json:"name"`
	Initial     string          `json:"initial"`
	Terminal    string          `json:"terminal"`
	Status      []entity.Option `json:"status"`
	Source      []entity.Option `json:"source"`
	CallOutcome []entity.Option `json:"callOutcome"`
}

func NewVocabularyHandler(vocab *entity.Vocabularies) *VocabularyHandler {
	return &VocabularyHandler{Vocab: vocab}
}

// Handle (GET /vocabulary)
func (h *VocabularyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VocabularyResponse{
		Name:        h.Vocab.Name,
		Initial:     h.Vocab.Initial,
		Terminal:    entity.StatusConverted,
		Status:      h.Vocab.Status.Options(),
		Source:      h.Vocab.Source.Options(),
		CallOutcome: h.Vocab.CallOutcome.Options(),
	})
}
