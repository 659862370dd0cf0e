package fiscal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/nddaverba"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// EndorsementHistory historial de averbação de un documento.
type EndorsementHistory struct {
	DocumentID string
	Summary    entity.EndorsementSummary
	Events     []*entity.EndorsementEvent
}

// EndorsementUseCase averbação de CT-e en NDD Averba.
type EndorsementUseCase struct {
	companyRepo repository.CompanyRepository
	docRepo     repository.FiscalDocumentRepository
	eventRepo   repository.EndorsementEventRepository
	resolver    EndpointResolver
	gateway     EndorsementGateway
	now         func() time.Time
	log         *logger.Logger
}

// NewEndorsementUseCase construye el caso de uso.
func NewEndorsementUseCase(
	companyRepo repository.CompanyRepository,
	docRepo repository.FiscalDocumentRepository,
	eventRepo repository.EndorsementEventRepository,
	resolver EndpointResolver,
	gateway EndorsementGateway,
	log *logger.Logger,
) *EndorsementUseCase {
	return &EndorsementUseCase{
		companyRepo: companyRepo,
		docRepo:     docRepo,
		eventRepo:   eventRepo,
		resolver:    resolver,
		gateway:     gateway,
		now:         time.Now,
		log:         log.Component("ndd_averba"),
	}
}

// Endorse envía el XML del CT-e para averbação y registra el evento resultante.
func (uc *EndorsementUseCase) Endorse(ctx context.Context, companyID, documentID string) (*entity.EndorsementEvent, error) {
	// ── 1. Empresa, documento y estado derivado ─────────────────────────────
	company, doc, err := uc.loadDocument(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	summary, err := uc.summary(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if summary.State == entity.EndorsementStateEndorsed || summary.State == entity.EndorsementStateCancel {
		return nil, fmt.Errorf("%w: el CT-e %s ya tiene averbação (%s)", domain.ErrConflict, doc.Number, summary.State)
	}

	// ── 2. XML a enviar ─────────────────────────────────────────────────────
	xml := doc.AuthorizationXML
	if len(xml) == 0 {
		xml = doc.SendXML
	}
	if len(xml) == 0 {
		return nil, &domain.MissingPayloadError{Record: "document:" + doc.ID}
	}

	// ── 3. Envío ────────────────────────────────────────────────────────────
	baseURL, token, err := uc.login(ctx, company)
	if err != nil {
		return nil, err
	}
	resp, err := uc.gateway.Endorse(ctx, baseURL, token, xml)
	if err != nil {
		return nil, err
	}

	// ── 4. Evento ───────────────────────────────────────────────────────────
	return uc.record(ctx, doc, resp, false)
}

// CancelEndorsement envía el XML de cancelación de un CT-e averbado y cancelado ante la SEFAZ.
func (uc *EndorsementUseCase) CancelEndorsement(ctx context.Context, companyID, documentID string) (*entity.EndorsementEvent, error) {
	company, doc, err := uc.loadDocument(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsCancelled() {
		return nil, fmt.Errorf("%w: el CT-e %s no está cancelado", domain.ErrInvalidInput, doc.Number)
	}
	summary, err := uc.summary(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if summary.State != entity.EndorsementStateEndorsed {
		return nil, fmt.Errorf("%w: el CT-e %s no está averbado", domain.ErrConflict, doc.Number)
	}
	if len(doc.CancelXML) == 0 {
		return nil, &domain.MissingPayloadError{Record: "document:" + doc.ID}
	}

	baseURL, token, err := uc.login(ctx, company)
	if err != nil {
		return nil, err
	}
	resp, err := uc.gateway.Cancel(ctx, baseURL, token, doc.CancelXML)
	if err != nil {
		return nil, err
	}
	return uc.record(ctx, doc, resp, true)
}

// Retrieve descarga el XML averbado del CT-e, indentado.
func (uc *EndorsementUseCase) Retrieve(ctx context.Context, companyID, documentID string) ([]byte, error) {
	company, doc, err := uc.loadDocument(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.DocumentKey == "" {
		return nil, fmt.Errorf("%w: el CT-e %s no tiene chave de acesso", domain.ErrInvalidInput, doc.Number)
	}
	baseURL, token, err := uc.login(ctx, company)
	if err != nil {
		return nil, err
	}
	return uc.gateway.Retrieve(ctx, baseURL, token, doc.DocumentKey)
}

// Events devuelve el historial del documento (más reciente primero) y su estado derivado.
func (uc *EndorsementUseCase) Events(ctx context.Context, companyID, documentID string) (*EndorsementHistory, error) {
	doc, err := uc.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("averbação: obtener documento: %w", err)
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	events, err := uc.eventRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("averbação: listar eventos: %w", err)
	}
	return &EndorsementHistory{
		DocumentID: doc.ID,
		Summary:    entity.SummarizeEndorsement(events),
		Events:     events,
	}, nil
}

// CheckUser valida las credenciales de la empresa y devuelve los datos del usuario NDD.
func (uc *EndorsementUseCase) CheckUser(ctx context.Context, companyID string) (map[string]any, error) {
	company, err := uc.loadCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	baseURL, token, err := uc.login(ctx, company)
	if err != nil {
		return nil, err
	}
	return uc.gateway.CheckUser(ctx, baseURL, token)
}

func (uc *EndorsementUseCase) loadCompany(ctx context.Context, companyID string) (*entity.Company, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("averbação: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if !company.HasIntegration(entity.IntegrationNDD) {
		return nil, fmt.Errorf("%w: la empresa no tiene credenciales NDD Averba para %s", domain.ErrInvalidInput, company.NDD.Environment)
	}
	return company, nil
}

// loadDocument carga empresa y documento; solo se aceptan CT-e de la empresa.
func (uc *EndorsementUseCase) loadDocument(ctx context.Context, companyID, documentID string) (*entity.Company, *entity.FiscalDocument, error) {
	company, err := uc.loadCompany(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := uc.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("averbação: obtener documento: %w", err)
	}
	if doc == nil {
		return nil, nil, domain.ErrNotFound
	}
	if doc.CompanyID != company.ID {
		return nil, nil, domain.ErrForbidden
	}
	if !doc.IsCTe() {
		return nil, nil, fmt.Errorf("%w: solo se averban CT-e (modelo %s)", domain.ErrInvalidInput, entity.DocumentTypeCTe)
	}
	return company, doc, nil
}

func (uc *EndorsementUseCase) summary(ctx context.Context, documentID string) (entity.EndorsementSummary, error) {
	events, err := uc.eventRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return entity.EndorsementSummary{}, fmt.Errorf("averbação: listar eventos: %w", err)
	}
	return entity.SummarizeEndorsement(events), nil
}

// login resuelve la URL del ambiente de la empresa y obtiene el token de acceso.
func (uc *EndorsementUseCase) login(ctx context.Context, company *entity.Company) (string, string, error) {
	baseURL, err := uc.resolver.ResolveNDD(ctx, company.NDD.Environment)
	if err != nil {
		return "", "", err
	}
	token, err := uc.gateway.Login(ctx, baseURL, company.NDDCredentials())
	if err != nil {
		return "", "", err
	}
	return baseURL, token, nil
}

func (uc *EndorsementUseCase) record(ctx context.Context, doc *entity.FiscalDocument, resp *nddaverba.Response, cancel bool) (*entity.EndorsementEvent, error) {
	ev := eventFromResponse(doc, resp, cancel, uc.now())
	if err := uc.eventRepo.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("averbação: guardar evento: %w", err)
	}
	uc.log.Info().
		Str("document_id", doc.ID).
		Str("status", resp.Status).
		Str("state", string(ev.State)).
		Msg(resp.Message)
	return ev, nil
}

// eventFromResponse traduce la respuesta de NDD Averba a un evento del documento.
func eventFromResponse(doc *entity.FiscalDocument, resp *nddaverba.Response, cancel bool, now time.Time) *entity.EndorsementEvent {
	ev := &entity.EndorsementEvent{
		CompanyID:  doc.CompanyID,
		DocumentID: doc.ID,
		Message:    resp.Message,
		Date:       now,
	}
	first, hasFirst := resp.FirstEndorsement()

	switch {
	case resp.Status == nddaverba.StatusSuccess && cancel:
		ev.State = entity.EndorsementStateCancel
		ev.Amount = first.TotalInsured
		ev.TotalInsured = first.TotalInsured
	case resp.Status == nddaverba.StatusSuccess:
		ev.State = entity.EndorsementStateEndorsed
		ev.DocumentNumber = resp.DocumentNumber()
		if hasFirst {
			ev.CteID = first.CteID
			ev.ProtocolNumber = first.Protocol
			ev.EndorsementNumber = first.EndorsementNumber
			ev.Amount = first.CargoValue
			ev.TotalInsured = first.TotalInsured
			ev.InsuranceCompany = first.InsurerID
			ev.PolicyNumber = first.PolicyID
		}
	case resp.Status == nddaverba.StatusError && len(resp.Errors) > 0:
		ev.State = entity.EndorsementStateError
		ev.ErrorMessage = strings.Join(resp.Errors, "\n")
		ev.Amount = doc.AmountTotal
	default:
		ev.State = entity.EndorsementStateError
		ev.Amount = doc.AmountTotal
	}
	return ev
}
