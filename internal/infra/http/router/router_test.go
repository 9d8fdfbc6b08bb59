package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/cache"
	"github.com/xavierca1/ligue-crm/internal/infra/export"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
	"github.com/xuri/excelize/v2"
)

var (
	gold  = entity.Session{UserID: "u1", AgentName: "Priya", CRMType: "gold"}
	clock = entity.Session{UserID: "u2", AgentName: "Ravi", CRMType: "clock-stock"}
)

type testEnv struct {
	handler http.Handler
	issuer  *auth.Issuer
	leads   *memory.LeadRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	vocab, err := entity.PresetVocabularies("short")
	require.NoError(t, err)
	log := logger.Nop()

	leads := memory.NewLeadRepository()
	clients := memory.NewClientRepository()
	calls := memory.NewCallRepository()

	browse := usecase.NewBrowseUseCase(leads, clients, calls, log)
	comments := usecase.NewAddCommentUseCase(leads, clients, log)
	convert := usecase.NewConvertLeadUseCase(leads, clients, queue.NopPublisher{}, cache.NewLocalGuard(), vocab, usecase.PolicyReject, log)

	issuer := auth.NewIssuer("test-secret", time.Hour)
	h := Handlers{
		Health:     handlers.NewHealthHandler(nil, nil, nil, "memory"),
		Vocabulary: handlers.NewVocabularyHandler(vocab),
		Lead: handlers.NewLeadHandler(browse,
			usecase.NewCreateLeadUseCase(leads, vocab, log),
			usecase.NewUpdateLeadUseCase(leads, vocab, log),
			comments, convert, vocab, log),
		Client: handlers.NewClientHandler(browse, usecase.NewUpdateClientUseCase(clients, vocab, log), comments, log),
		Call:   handlers.NewCallHandler(browse, usecase.NewLogCallUseCase(calls, leads, clients, vocab, log), log),
		Report: handlers.NewReportHandler(usecase.NewReportUseCase(leads, clients, calls, vocab, log), log),
	}
	return &testEnv{
		handler: New(h, Options{AllowedOrigins: []string{"*"}, Issuer: issuer}),
		issuer:  issuer,
		leads:   leads,
	}
}

func (e *testEnv) do(t *testing.T, s *entity.Session, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s != nil {
		token, err := e.issuer.Issue(*s)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func leadBody(name string) map[string]any {
	return map[string]any{
		"name":    name,
		"phone":   "555-0100",
		"email":   "contact@example.com",
		"address": "Rua A, 1",
		"type":    "individual",
	}
}

func (e *testEnv) createLead(t *testing.T, s entity.Session, name string) *entity.Lead {
	t.Helper()
	rec := e.do(t, &s, http.MethodPost, "/lead", leadBody(name))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*entity.Lead](t, rec)
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	health := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "in-memory", health.Dependencies["database"])

	rec = e.do(t, nil, http.MethodGet, "/lead", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, &gold, http.MethodGet, "/vocabulary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vocab := decode[handlers.VocabularyResponse](t, rec)
	assert.Equal(t, "converted", vocab.Terminal)
	assert.Equal(t, "pending", vocab.Initial)
}

func TestLeadLifecycle(t *testing.T) {
	e := newTestEnv(t)
	lead := e.createLead(t, gold, "Ana Souza")
	assert.Equal(t, "gold", lead.CRMType)
	assert.Equal(t, "pending", lead.Status)

	e.createLead(t, clock, "Other Tenant")

	rec := e.do(t, &gold, http.MethodGet, "/lead?q=ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[usecase.Page[*entity.Lead]](t, rec)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, lead.ID, page.Items[0].ID)

	rec = e.do(t, &gold, http.MethodGet, "/lead/"+lead.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, &clock, http.MethodGet, "/lead/"+lead.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, &gold, http.MethodGet, "/lead/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, &gold, http.MethodPut, "/lead/"+lead.ID, map[string]any{"status": "answered", "name": "Ana S."})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[*entity.Lead](t, rec)
	assert.Equal(t, "answered", updated.Status)
	assert.Equal(t, "Ana S.", updated.Name)

	rec = e.do(t, &gold, http.MethodPut, "/lead/"+lead.ID, map[string]any{"crm_type": "clock-stock"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "crm_type", decode[handlers.ErrorResponse](t, rec).Field)

	rec = e.do(t, &gold, http.MethodDelete, "/lead/"+lead.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, &gold, http.MethodDelete, "/lead/"+lead.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLead_Validation(t *testing.T) {
	e := newTestEnv(t)

	body := leadBody("No Email")
	delete(body, "email")
	rec := e.do(t, &gold, http.MethodPost, "/lead", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error)
	assert.Equal(t, "email", resp.Field)

	body = leadBody("Bad Source")
	body["type"] = "carrier-pigeon"
	rec = e.do(t, &gold, http.MethodPost, "/lead", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ENUM_VALUE", decode[handlers.ErrorResponse](t, rec).Error)

	body = leadBody("Wrong CRM")
	body["crm_type"] = "clock-stock"
	rec = e.do(t, &gold, http.MethodPost, "/lead", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/lead", bytes.NewBufferString("{"))
	token, _ := e.issuer.Issue(gold)
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	e.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestComments(t *testing.T) {
	e := newTestEnv(t)
	lead := e.createLead(t, gold, "Ana Souza")

	rec := e.do(t, &gold, http.MethodPost, "/lead/"+lead.ID+"/comments", map[string]string{"content": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_COMMENT", decode[handlers.ErrorResponse](t, rec).Error)

	rec = e.do(t, &gold, http.MethodPost, "/lead/"+lead.ID+"/comments", map[string]string{"content": "called back"})
	require.Equal(t, http.StatusCreated, rec.Code)
	withComment := decode[*entity.Lead](t, rec)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "Priya", withComment.Comments[0].Author)

	rec = e.do(t, &clock, http.MethodPost, "/lead/"+lead.ID+"/comments", map[string]string{"content": "sneaky"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConvertLead(t *testing.T) {
	e := newTestEnv(t)
	lead := e.createLead(t, gold, "Ana Souza")

	rec := e.do(t, &gold, http.MethodPost, "/lead/"+lead.ID+"/convert", map[string]any{"company": "Acme", "value": 1500})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[usecase.ConvertLeadOutput](t, rec)
	assert.Equal(t, entity.StatusConverted, out.Lead.Status)
	assert.Equal(t, lead.ID, out.Client.LeadID)
	assert.Equal(t, 1500.0, out.Client.Value)

	rec = e.do(t, &gold, http.MethodPost, "/lead/"+lead.ID+"/convert", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_CONVERTED", decode[handlers.ErrorResponse](t, rec).Error)

	rec = e.do(t, &gold, http.MethodPut, "/lead/"+lead.ID, map[string]any{"name": "Edited"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, &gold, http.MethodGet, "/client", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	clients := decode[usecase.Page[*entity.Client]](t, rec)
	require.Equal(t, 1, clients.Total)

	clientPath := "/client/" + out.Client.ID
	rec = e.do(t, &gold, http.MethodPost, clientPath+"/comments", map[string]string{"content": "welcome aboard"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, &gold, http.MethodPut, clientPath, map[string]any{"value": 2000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2000.0, decode[*entity.Client](t, rec).Value)

	rec = e.do(t, &clock, http.MethodGet, clientPath, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, &gold, http.MethodDelete, clientPath, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCallsAndReport(t *testing.T) {
	e := newTestEnv(t)
	lead := e.createLead(t, gold, "Ana Souza")

	rec := e.do(t, &gold, http.MethodPost, "/calls", map[string]any{
		"leadId": lead.ID, "employeeId": "Priya", "duration": 120, "status": "completed",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, &gold, http.MethodPost, "/calls", map[string]any{
		"employeeId": "Priya", "status": "completed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, &gold, http.MethodGet, "/calls?leadId="+lead.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*entity.Call](t, rec), 1)

	rec = e.do(t, &clock, http.MethodGet, "/calls", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]*entity.Call](t, rec))

	rec = e.do(t, &gold, http.MethodGet, "/reports/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[usecase.Report](t, rec)
	assert.Equal(t, 1, report.TotalLeads)
	assert.Equal(t, 1, report.TotalCalls)
	assert.Equal(t, "gold", report.CRMType)
}

func TestExportLeads(t *testing.T) {
	e := newTestEnv(t)
	e.createLead(t, gold, "Ana Souza")
	e.createLead(t, gold, "Bruno Lima")
	e.createLead(t, clock, "Other Tenant")

	rec := e.do(t, &gold, http.MethodGet, "/lead/export.xlsx?q=bruno", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.LeadsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bruno Lima", rows[1][1])
}
