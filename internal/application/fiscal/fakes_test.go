package fiscal_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/settings"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type companyRepo map[string]*entity.Company

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r[id], nil
}

type closingRepo struct {
	items map[string]*entity.Closing
}

func newClosingRepo(cs ...*entity.Closing) *closingRepo {
	r := &closingRepo{items: map[string]*entity.Closing{}}
	for _, c := range cs {
		r.items[c.ID] = c
	}
	return r
}

func (r *closingRepo) GetByID(_ context.Context, id string) (*entity.Closing, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *closingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Closing, error) {
	return r.GetByID(ctx, id)
}

func (r *closingRepo) MarkClosed(_ context.Context, id string, closedAt time.Time) error {
	c, ok := r.items[id]
	if !ok {
		return errors.New("no existe")
	}
	c.State = entity.ClosingStateClosed
	c.ClosedAt = &closedAt
	return nil
}

// txRunner ejecuta fn directamente sobre el repositorio en memoria.
type txRunner struct {
	closings repository.ClosingRepository
	calls    int
}

func (t *txRunner) RunClosing(_ context.Context, fn func(repository.ClosingRepository) error) error {
	t.calls++
	return fn(t.closings)
}

// docRepo devuelve copias para que solo UpdateDominioStatus cambie el estado guardado.
type docRepo struct {
	mu      sync.Mutex
	order   []string
	items   map[string]*entity.FiscalDocument
	updates int
}

func newDocRepo(ds ...*entity.FiscalDocument) *docRepo {
	r := &docRepo{items: map[string]*entity.FiscalDocument{}}
	for _, d := range ds {
		r.order = append(r.order, d.ID)
		r.items[d.ID] = d
	}
	return r
}

func (r *docRepo) GetByID(_ context.Context, id string) (*entity.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *docRepo) ListByClosing(_ context.Context, closingID string) ([]*entity.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.FiscalDocument
	for _, id := range r.order {
		if d := r.items[id]; d.ClosingID == closingID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *docRepo) GetDominioState(_ context.Context, id string) (entity.DominioState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Dominio.State, nil
}

func (r *docRepo) UpdateDominioStatus(_ context.Context, id string, st entity.DominioStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.items[id].Dominio = st
	return nil
}

// setState simula otra ejecución que cambió el estado entre el envío y la consulta.
func (r *docRepo) setState(id string, state entity.DominioState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id].Dominio.State = state
}

func (r *docRepo) status(id string) entity.DominioStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Dominio
}

type lineRepo struct {
	order []string
	items map[string]*entity.PaymentLine
}

func newLineRepo(ls ...*entity.PaymentLine) *lineRepo {
	r := &lineRepo{items: map[string]*entity.PaymentLine{}}
	for _, l := range ls {
		r.order = append(r.order, l.ID)
		r.items[l.ID] = l
	}
	return r
}

func (r *lineRepo) ListByClosing(_ context.Context, closingID string) ([]*entity.PaymentLine, error) {
	var out []*entity.PaymentLine
	for _, id := range r.order {
		if l := r.items[id]; l.ClosingID == closingID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *lineRepo) GetDominioState(_ context.Context, id string) (entity.DominioState, error) {
	return r.items[id].Dominio.State, nil
}

func (r *lineRepo) UpdateDominioStatus(_ context.Context, id string, st entity.DominioStatus) error {
	r.items[id].Dominio = st
	return nil
}

type typeRepo []*entity.DocumentType

func (r typeRepo) List(context.Context) ([]*entity.DocumentType, error) { return r, nil }
func (r typeRepo) Upsert(context.Context, *entity.DocumentType) error   { return nil }

type eventRepo struct {
	events []*entity.EndorsementEvent
}

func (r *eventRepo) Create(_ context.Context, ev *entity.EndorsementEvent) error {
	ev.ID = fmt.Sprintf("ev-%d", len(r.events)+1)
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRepo) ListByDocument(_ context.Context, documentID string) ([]*entity.EndorsementEvent, error) {
	var out []*entity.EndorsementEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].DocumentID == documentID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolver y renderer
// ──────────────────────────────────────────────────────────────────────────────

type staticResolver struct {
	endpoints settings.DominioEndpoints
	nddURL    string
	err       error
}

func (s staticResolver) ResolveDominio(context.Context) (settings.DominioEndpoints, error) {
	return s.endpoints, s.err
}

func (s staticResolver) ResolveNDD(context.Context, entity.Environment) (string, error) {
	return s.nddURL, s.err
}

type stubRenderer struct{}

func (stubRenderer) RenderPayment(line *entity.PaymentLine) ([]byte, error) {
	return []byte("<BaixaTitulo especie=\"" + line.Species + "\"/>"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Servidor Dominio falso
// ──────────────────────────────────────────────────────────────────────────────

// fakeDominio simula token, activación, envío y consulta de estado.
// codes asigna el código de apiStatus por nombre de archivo (SA2 por defecto).
type fakeDominio struct {
	mu        sync.Mutex
	srv       *httptest.Server
	failStage string // token | activation | submit | status
	failAfter int    // envíos exitosos antes de fallar en submit
	codes     map[string]string

	tokenCalls      int
	activationCalls int
	activationKey   string   // x-integration-key recibido en la activación
	customerKey     string   // x-integration-key recibido en activation/info
	credentials     []string // "Authorization|x-integration-key" de cada envío y consulta
	submitted       []string // nombres de archivo recibidos
	statusCalls     int
	idToFile        map[string]string
	boxE            []string
	afterSubmit     func(filename string)
}

func newFakeDominio(t *testing.T) *fakeDominio {
	t.Helper()
	f := &fakeDominio{codes: map[string]string{}, idToFile: map[string]string{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDominio) endpoints() settings.DominioEndpoints {
	return settings.DominioEndpoints{
		TokenURL:          f.srv.URL + "/token",
		KeyIntegrationURL: f.srv.URL + "/activation",
		CheckCustomerURL:  f.srv.URL + "/activation/info",
		XMLURL:            f.srv.URL + "/xml",
	}
}

func (f *fakeDominio) factory() fiscal.DominioGatewayFactory {
	return func(e settings.DominioEndpoints) fiscal.DominioGateway {
		return dominio.NewClient(e, dominio.WithHTTPClient(f.srv.Client()))
	}
}

func (f *fakeDominio) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fail := func(stage string) bool {
		if f.failStage == stage {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
			return true
		}
		return false
	}

	switch {
	case r.URL.Path == "/token":
		f.tokenCalls++
		if fail("token") {
			return
		}
		reply(w, map[string]any{"access_token": "T"})
	case r.URL.Path == "/activation":
		f.activationCalls++
		f.activationKey = r.Header.Get("x-integration-key")
		if fail("activation") {
			return
		}
		reply(w, map[string]any{"integrationKey": "K"})
	case r.URL.Path == "/activation/info":
		f.customerKey = r.Header.Get("x-integration-key")
		reply(w, map[string]any{"cnpj": "12345678000199", "active": true})
	case r.URL.Path == "/xml" && r.Method == http.MethodPost:
		f.credentials = append(f.credentials, credentialsOf(r))
		if f.failStage == "submit" && len(f.submitted) >= f.failAfter {
			fail("submit")
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := r.MultipartForm.File["file[]"][0].Filename
		f.boxE = append(f.boxE, r.MultipartForm.Value["query"][0])
		f.submitted = append(f.submitted, name)
		id := fmt.Sprintf("%d", 40+len(f.submitted))
		f.idToFile[id] = name
		if f.afterSubmit != nil {
			f.afterSubmit(name)
		}
		reply(w, map[string]any{"id": json.Number(id)})
	case strings.HasPrefix(r.URL.Path, "/xml/"):
		f.statusCalls++
		f.credentials = append(f.credentials, credentialsOf(r))
		if fail("status") {
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/xml/")
		code := f.codes[f.idToFile[id]]
		if code == "" {
			code = "SA2"
		}
		reply(w, map[string]any{
			"id": id,
			"filesExpanded": []any{
				map[string]any{"apiStatus": map[string]any{"code": code, "message": "mensaje " + code}},
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func credentialsOf(r *http.Request) string {
	return r.Header.Get("Authorization") + "|" + r.Header.Get("x-integration-key")
}

func reply(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
