package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiscal-bridge/internal/application/dto"
	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	apphttp "github.com/jhoicas/fiscal-bridge/internal/interfaces/http"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/pdf"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// ── Repositorios en memoria ───────────────────────────────────────────────────

type memCompanies map[string]*entity.Company

func (m memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return m[id], nil
}

type memClosings map[string]*entity.Closing

func (m memClosings) GetByID(_ context.Context, id string) (*entity.Closing, error) {
	c, ok := m[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m memClosings) GetForUpdate(ctx context.Context, id string) (*entity.Closing, error) {
	return m.GetByID(ctx, id)
}

func (m memClosings) MarkClosed(_ context.Context, id string, closedAt time.Time) error {
	m[id].State = entity.ClosingStateClosed
	m[id].ClosedAt = &closedAt
	return nil
}

func (m memClosings) RunClosing(_ context.Context, fn func(repository.ClosingRepository) error) error {
	return fn(m)
}

type memDocs []*entity.FiscalDocument

func (m memDocs) GetByID(_ context.Context, id string) (*entity.FiscalDocument, error) {
	for _, d := range m {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (m memDocs) ListByClosing(_ context.Context, closingID string) ([]*entity.FiscalDocument, error) {
	var out []*entity.FiscalDocument
	for _, d := range m {
		if d.ClosingID == closingID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m memDocs) GetDominioState(_ context.Context, _ string) (entity.DominioState, error) {
	return entity.DominioStateUnset, nil
}

func (m memDocs) UpdateDominioStatus(_ context.Context, _ string, _ entity.DominioStatus) error {
	return nil
}

type memLines []*entity.PaymentLine

func (m memLines) ListByClosing(_ context.Context, closingID string) ([]*entity.PaymentLine, error) {
	var out []*entity.PaymentLine
	for _, l := range m {
		if l.ClosingID == closingID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m memLines) GetDominioState(_ context.Context, _ string) (entity.DominioState, error) {
	return entity.DominioStateUnset, nil
}

func (m memLines) UpdateDominioStatus(_ context.Context, _ string, _ entity.DominioStatus) error {
	return nil
}

// ── App de test ───────────────────────────────────────────────────────────────

type testEnv struct {
	app      *fiber.App
	closings memClosings
}

func newTestEnv(docs memDocs) *testEnv {
	companies := memCompanies{
		testCompanyID: {ID: testCompanyID, Name: "Transportes Teste Ltda", CNPJ: "12.345.678/0001-99"},
	}
	closings := memClosings{
		"cl-1":     {ID: "cl-1", CompanyID: testCompanyID, Year: 2026, Month: 9, State: entity.ClosingStateOpen},
		"cl-otra":  {ID: "cl-otra", CompanyID: "otra-empresa", Year: 2026, Month: 9, State: entity.ClosingStateOpen},
		"cl-vacio": {ID: "cl-vacio", CompanyID: testCompanyID, Year: 2026, Month: 8, State: entity.ClosingStateOpen},
	}
	closingUC := fiscal.NewClosingUseCase(closings, docs, memLines{}, closings, logger.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:      "fiscal-bridge",
		Closing:      closingUC,
		Report:       fiscal.NewClosingReportUseCase(companies, closingUC, pdf.NewClosingReportGenerator()),
		Integrations: fiscal.NewIntegrationChecker(companies),
		JWTSecret:    testJWTSecret,
	})
	return &testEnv{app: app, closings: closings}
}

func (e *testEnv) do(t *testing.T, method, path, role string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func pendingDocs() memDocs {
	return memDocs{
		{ID: "d1", ClosingID: "cl-1", Category: entity.CategoryNFe, Number: "1001", Serie: "1",
			Dominio: entity.DominioStatus{State: entity.DominioStateStored, Code: "SA2"}},
		{ID: "d2", ClosingID: "cl-1", Category: entity.CategoryNFCe, Number: "77", Serie: "2",
			Dominio: entity.DominioStatus{State: entity.DominioStateError, Code: "EA03", Message: "estrutura inválida"}},
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(nil)
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}

func TestRouter_StatusDelCierre(t *testing.T) {
	env := newTestEnv(pendingDocs())
	resp := env.do(t, http.MethodGet, "/api/closings/cl-1/status", "operador")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.ClosingStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.ReadyToClose)
	assert.Equal(t, "09/2026", body.Closing.Period)
	require.Len(t, body.Pending, 1)
	assert.Equal(t, "document:d2", body.Pending[0].Record)
	assert.Equal(t, "EA03", body.Pending[0].Status.Code)
}

func TestRouter_CierreBloqueado_Retorna409ConPendientes(t *testing.T) {
	env := newTestEnv(pendingDocs())
	resp := env.do(t, http.MethodPost, "/api/closings/cl-1/close", "fiscal")
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ClosingBlockedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "CLOSING_BLOCKED", body.Code)
	require.Len(t, body.Pending, 1)
	assert.Equal(t, entity.CategoryNFCe, body.Pending[0].Category)
	assert.Equal(t, 1, body.Pending[0].Count)
	assert.Equal(t, entity.ClosingStateOpen, env.closings["cl-1"].State)
}

func TestRouter_CierreVacio_SeCierra(t *testing.T) {
	env := newTestEnv(nil)
	resp := env.do(t, http.MethodPost, "/api/closings/cl-vacio/close", "admin")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.ClosingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, entity.ClosingStateClosed, body.State)
	assert.NotNil(t, body.ClosedAt)
}

func TestRouter_CerrarRequiereRolFiscal(t *testing.T) {
	env := newTestEnv(nil)
	resp := env.do(t, http.MethodPost, "/api/closings/cl-vacio/close", "operador")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, entity.ClosingStateOpen, env.closings["cl-vacio"].State)
}

func TestRouter_CierreInexistente_Retorna404(t *testing.T) {
	env := newTestEnv(nil)
	resp := env.do(t, http.MethodGet, "/api/closings/no-existe/status", "admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_CierreDeOtraEmpresa_Retorna403(t *testing.T) {
	env := newTestEnv(nil)
	resp := env.do(t, http.MethodGet, "/api/closings/cl-otra/status", "admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRouter_EnvioDominioSinIntegracion_Retorna403(t *testing.T) {
	env := newTestEnv(nil)
	resp := env.do(t, http.MethodPost, "/api/closings/cl-1/dominio", "fiscal")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INTEGRATION_DISABLED")
}

func TestRouter_ReportePDF(t *testing.T) {
	env := newTestEnv(pendingDocs())
	resp := env.do(t, http.MethodGet, "/api/closings/cl-1/report", "operador")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cierre-2026-09.pdf")
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, len(body) > 4 && string(body[:4]) == "%PDF")
}
