package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido: "+err.Error())
		return false
	}
	return true
}

// writeError maps engine errors onto status codes. Anything unrecognised is
// logged and returned as a 500 without internals.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *entity.ValidationError
		enum       *entity.InvalidEnumValueError
		immutable  *entity.ImmutableFieldError
		converted  *entity.AlreadyConvertedError
		tenant     *entity.CrossTenantAccessError
		domain     *usecase.DomainError
		technical  *usecase.TechnicalError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "VALIDATION_ERROR", Message: validation.Error(), Field: validation.Field})
	case errors.As(err, &enum):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "INVALID_ENUM_VALUE", Message: enum.Error(), Field: enum.Field})
	case errors.Is(err, entity.ErrEmptyComment):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "EMPTY_COMMENT", Message: err.Error(), Field: "content"})
	case errors.As(err, &immutable):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "IMMUTABLE_FIELD", Message: immutable.Error(), Field: immutable.Field})
	case errors.As(err, &converted):
		writeErrorResponse(w, http.StatusConflict, "ALREADY_CONVERTED", converted.Error())
	case errors.As(err, &tenant):
		writeErrorResponse(w, http.StatusForbidden, "CROSS_TENANT_ACCESS", "entity belongs to another crm")
	case entity.IsNotFound(err):
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &domain) && (domain.Code == usecase.CodeConversionInProgress || domain.Code == usecase.CodeWriteConflict):
		writeErrorResponse(w, http.StatusConflict, domain.Code, domain.Message)
	case errors.As(err, &domain):
		writeErrorResponse(w, http.StatusUnprocessableEntity, domain.Code, domain.Message)
	case errors.As(err, &technical):
		logger.Error("falha na requisição", "code", technical.Code, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, technical.Code, technical.Message)
	default:
		logger.Error("falha na requisição", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno")
	}
}

// listQuery reads ?q=&filter=a,b&filter=c&page=&pageSize=.
func listQuery(r *http.Request) usecase.Query {
	v := r.URL.Query()
	q := usecase.Query{Text: v.Get("q")}
	for _, raw := range v["filter"] {
		for _, token := range strings.Split(raw, ",") {
			if token = strings.TrimSpace(token); token != "" {
				q.Filters = append(q.Filters, token)
			}
		}
	}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	q.PageSize, _ = strconv.Atoi(v.Get("pageSize"))
	return q
}
