package fiscal

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// SyncReport resultado de enviar un cierre a Dominio.
type SyncReport struct {
	ClosingID string
	Submitted int
	Skipped   int
	Unmapped  int
	Stored    int
	Existing  int
	Errors    int
	Outcomes  []Outcome
}

// DominioSyncUseCase orquesta el envío de los XML de un cierre a Dominio.
type DominioSyncUseCase struct {
	companyRepo repository.CompanyRepository
	closingRepo repository.ClosingRepository
	docRepo     repository.FiscalDocumentRepository
	lineRepo    repository.PaymentLineRepository
	typeRepo    repository.DocumentTypeRepository
	resolver    EndpointResolver
	newGateway  DominioGatewayFactory
	renderer    submission.PaymentRenderer
	submitter   *Submitter
	reconciler  *Reconciler
	log         *logger.Logger
}

// NewDominioSyncUseCase construye el caso de uso con sus dependencias.
func NewDominioSyncUseCase(
	companyRepo repository.CompanyRepository,
	closingRepo repository.ClosingRepository,
	docRepo repository.FiscalDocumentRepository,
	lineRepo repository.PaymentLineRepository,
	typeRepo repository.DocumentTypeRepository,
	resolver EndpointResolver,
	newGateway DominioGatewayFactory,
	renderer submission.PaymentRenderer,
	log *logger.Logger,
) *DominioSyncUseCase {
	return &DominioSyncUseCase{
		companyRepo: companyRepo,
		closingRepo: closingRepo,
		docRepo:     docRepo,
		lineRepo:    lineRepo,
		typeRepo:    typeRepo,
		resolver:    resolver,
		newGateway:  newGateway,
		renderer:    renderer,
		submitter:   NewSubmitter(log),
		reconciler:  NewReconciler(NewRepositoryStatusStore(docRepo, lineRepo), log),
		log:         log.Component("dominio_sync"),
	}
}

// SendClosing envía documentos fiscales y líneas de pago del cierre y reconcilia su estado.
func (uc *DominioSyncUseCase) SendClosing(ctx context.Context, companyID, closingID string) (*SyncReport, error) {
	// ── 1. Empresa y cierre ─────────────────────────────────────────────────
	company, err := uc.loadCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	closing, err := loadClosing(ctx, uc.closingRepo, companyID, closingID)
	if err != nil {
		return nil, err
	}
	if closing.IsClosed() {
		return nil, fmt.Errorf("%w: el cierre %s ya está cerrado", domain.ErrConflict, closing.Period())
	}

	// ── 2. URLs de la API (falla antes de cualquier llamada de red) ─────────
	endpoints, err := uc.resolver.ResolveDominio(ctx)
	if err != nil {
		return nil, err
	}

	// ── 3. Registros del cierre ─────────────────────────────────────────────
	records, err := uc.loadRecords(ctx, closing.ID)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{ClosingID: closing.ID}
	if submission.CountNotStored(records) == 0 {
		report.Skipped = len(records)
		uc.log.Info().Str("closing_id", closing.ID).Msg("todos los registros ya están en Dominio")
		return report, nil
	}

	// ── 4. Sesión: token + activación de la clave de integración ────────────
	gw := uc.newGateway(endpoints)
	session, err := openSession(ctx, gw, company)
	if err != nil {
		return nil, err
	}

	// ── 5. Envío y reconciliación ───────────────────────────────────────────
	batch, err := uc.submitter.SubmitAll(ctx, gw, session, records, company.Dominio.BoxE)
	if err != nil {
		uc.log.Error().Err(err).Str("closing_id", closing.ID).Str("stage", domain.UpstreamStage(err)).Msg("envío a Dominio abortado")
		return nil, err
	}
	report.Submitted = len(batch.Results)
	report.Skipped = batch.Skipped
	report.Unmapped = batch.Unmapped

	rec, err := uc.reconciler.Reconcile(ctx, gw, batch.Results)
	if err != nil {
		uc.log.Error().Err(err).Str("closing_id", closing.ID).Str("stage", domain.UpstreamStage(err)).Msg("consulta de estado abortada")
		return nil, err
	}
	report.Stored = rec.Stored
	report.Existing = rec.Existing
	report.Errors = rec.Rejected
	report.Skipped += rec.Skipped
	report.Outcomes = rec.Outcomes

	uc.log.Info().
		Str("closing_id", closing.ID).
		Int("submitted", report.Submitted).
		Int("stored", report.Stored).
		Int("errors", report.Errors).
		Msg("cierre enviado a Dominio")
	return report, nil
}

// CheckCustomer consulta la información de activación de la empresa en Dominio.
// Solo obtiene el token: la clave del ambiente se envía sin activarla.
func (uc *DominioSyncUseCase) CheckCustomer(ctx context.Context, companyID string) (map[string]any, error) {
	company, err := uc.loadCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	endpoints, err := uc.resolver.ResolveDominio(ctx)
	if err != nil {
		return nil, err
	}
	gw := uc.newGateway(endpoints)
	token, err := gw.Token(ctx, company.DominioCredentials())
	if err != nil {
		return nil, err
	}
	return gw.CheckCustomer(ctx, token.AccessToken, company.DominioIntegrationKey())
}

func (uc *DominioSyncUseCase) loadCompany(ctx context.Context, companyID string) (*entity.Company, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("dominio: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if !company.HasIntegration(entity.IntegrationDominio) {
		return nil, fmt.Errorf("%w: la empresa no tiene credenciales Dominio para %s", domain.ErrInvalidInput, company.Dominio.Environment)
	}
	return company, nil
}

// loadRecords carga documentos y líneas de pago; resuelve la espécie de cada línea.
func (uc *DominioSyncUseCase) loadRecords(ctx context.Context, closingID string) ([]submission.Record, error) {
	docs, err := uc.docRepo.ListByClosing(ctx, closingID)
	if err != nil {
		return nil, fmt.Errorf("dominio: listar documentos: %w", err)
	}
	lines, err := uc.lineRepo.ListByClosing(ctx, closingID)
	if err != nil {
		return nil, fmt.Errorf("dominio: listar líneas de pago: %w", err)
	}
	species, err := uc.speciesByType(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if l.Species == "" {
			l.Species = species[l.DocumentTypeCode]
		}
	}

	records := submission.Documents(docs)
	return append(records, submission.Payments(lines, uc.renderer)...), nil
}

func (uc *DominioSyncUseCase) speciesByType(ctx context.Context) (map[string]string, error) {
	types, err := uc.typeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("dominio: listar tipos de documento: %w", err)
	}
	m := make(map[string]string, len(types))
	for _, t := range types {
		if t.DominioSpecies != "" {
			m[t.Code] = t.DominioSpecies
		}
	}
	return m, nil
}

// openSession obtiene el token y activa la clave de integración del ambiente de la empresa.
func openSession(ctx context.Context, gw DominioGateway, company *entity.Company) (dominio.Session, error) {
	token, err := gw.Token(ctx, company.DominioCredentials())
	if err != nil {
		return dominio.Session{}, err
	}
	session, err := gw.Activate(ctx, token.AccessToken, company.DominioIntegrationKey())
	if err != nil {
		return dominio.Session{}, err
	}
	return *session, nil
}

// loadClosing carga el cierre y verifica que pertenezca a la empresa.
func loadClosing(ctx context.Context, repo repository.ClosingRepository, companyID, closingID string) (*entity.Closing, error) {
	closing, err := repo.GetByID(ctx, closingID)
	if err != nil {
		return nil, fmt.Errorf("obtener cierre: %w", err)
	}
	if closing == nil {
		return nil, domain.ErrNotFound
	}
	if closing.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return closing, nil
}
