package fiscal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// CategoryStatus agregado de una categoría del cierre.
type CategoryStatus struct {
	Category string
	Total    int
	Stored   int
	Errors   int
	Pending  int
}

// PendingRecord registro que todavía no está almacenado en Dominio.
type PendingRecord struct {
	Ref      submission.Ref
	Category string
	Number   string
	Status   entity.DominioStatus
}

// ClosingStatus estado de conciliación de un cierre con Dominio.
type ClosingStatus struct {
	Closing      *entity.Closing
	Categories   []CategoryStatus
	Pending      []PendingRecord
	ReadyToClose bool
}

// categoryUnknown agrupa documentos sin categoría informada por el ERP.
const categoryUnknown = "otros"

// ClosingUseCase consulta y finaliza cierres fiscales.
type ClosingUseCase struct {
	closingRepo repository.ClosingRepository
	docRepo     repository.FiscalDocumentRepository
	lineRepo    repository.PaymentLineRepository
	txRunner    ClosingTxRunner
	now         func() time.Time
	log         *logger.Logger
}

// NewClosingUseCase construye el caso de uso.
func NewClosingUseCase(
	closingRepo repository.ClosingRepository,
	docRepo repository.FiscalDocumentRepository,
	lineRepo repository.PaymentLineRepository,
	txRunner ClosingTxRunner,
	log *logger.Logger,
) *ClosingUseCase {
	return &ClosingUseCase{
		closingRepo: closingRepo,
		docRepo:     docRepo,
		lineRepo:    lineRepo,
		txRunner:    txRunner,
		now:         time.Now,
		log:         log.Component("closing"),
	}
}

// Status devuelve el agregado por categoría y los registros pendientes.
func (uc *ClosingUseCase) Status(ctx context.Context, companyID, closingID string) (*ClosingStatus, error) {
	closing, err := loadClosing(ctx, uc.closingRepo, companyID, closingID)
	if err != nil {
		return nil, err
	}
	cats, err := uc.categorize(ctx, closing.ID)
	if err != nil {
		return nil, err
	}

	st := &ClosingStatus{Closing: closing, ReadyToClose: true}
	for _, name := range categoryOrder(cats) {
		cs := CategoryStatus{Category: name}
		for _, r := range cats[name] {
			cs.Total++
			status := r.Status()
			switch {
			case status.State.IsTerminal():
				cs.Stored++
				continue
			case status.State == entity.DominioStateError:
				cs.Errors++
			default:
				cs.Pending++
			}
			st.Pending = append(st.Pending, PendingRecord{
				Ref:      r.Ref(),
				Category: name,
				Number:   recordNumber(r),
				Status:   status,
			})
		}
		if cs.Errors+cs.Pending > 0 {
			st.ReadyToClose = false
		}
		st.Categories = append(st.Categories, cs)
	}
	return st, nil
}

// Close finaliza el cierre si todos sus registros están almacenados en Dominio.
// La fila del cierre queda bloqueada durante la verificación.
func (uc *ClosingUseCase) Close(ctx context.Context, companyID, closingID string) (*entity.Closing, error) {
	var closed *entity.Closing
	err := uc.txRunner.RunClosing(ctx, func(closings repository.ClosingRepository) error {
		closing, err := closings.GetForUpdate(ctx, closingID)
		if err != nil {
			return fmt.Errorf("cerrar: obtener cierre: %w", err)
		}
		if closing == nil {
			return domain.ErrNotFound
		}
		if closing.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if closing.IsClosed() {
			return fmt.Errorf("%w: el cierre %s ya está cerrado", domain.ErrConflict, closing.Period())
		}

		cats, err := uc.categorize(ctx, closing.ID)
		if err != nil {
			return err
		}
		if err := submission.CheckReadyToClose(cats); err != nil {
			return err
		}

		now := uc.now()
		if err := closings.MarkClosed(ctx, closing.ID, now); err != nil {
			return fmt.Errorf("cerrar: marcar cerrado: %w", err)
		}
		closing.State = entity.ClosingStateClosed
		closing.ClosedAt = &now
		closed = closing
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("closing_id", closed.ID).Str("period", closed.Period()).Msg("cierre finalizado")
	return closed, nil
}

// categorize agrupa los registros del cierre por categoría. Todas las categorías
// conocidas están presentes aunque no tengan registros.
func (uc *ClosingUseCase) categorize(ctx context.Context, closingID string) (map[string][]submission.Record, error) {
	docs, err := uc.docRepo.ListByClosing(ctx, closingID)
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	lines, err := uc.lineRepo.ListByClosing(ctx, closingID)
	if err != nil {
		return nil, fmt.Errorf("listar líneas de pago: %w", err)
	}

	cats := make(map[string][]submission.Record, len(entity.DocumentCategories)+1)
	for _, c := range entity.DocumentCategories {
		cats[c] = nil
	}
	for _, d := range docs {
		cat := d.Category
		if cat == "" {
			cat = categoryUnknown
		}
		cats[cat] = append(cats[cat], submission.Document{Doc: d})
	}
	cats[submission.CategoryPayments] = submission.Payments(lines, nil)
	return cats, nil
}

// categoryOrder categorías conocidas primero, luego las demás y al final los pagos.
func categoryOrder(cats map[string][]submission.Record) []string {
	out := make([]string, 0, len(cats))
	seen := make(map[string]bool, len(cats))
	for _, c := range entity.DocumentCategories {
		out = append(out, c)
		seen[c] = true
	}
	seen[submission.CategoryPayments] = true
	var extra []string
	for c := range cats {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	out = append(out, extra...)
	return append(out, submission.CategoryPayments)
}

func recordNumber(r submission.Record) string {
	switch v := r.(type) {
	case submission.Document:
		if v.Doc.Serie != "" {
			return v.Doc.Serie + "-" + v.Doc.Number
		}
		return v.Doc.Number
	case submission.Payment:
		return v.Line.MoveName
	}
	return ""
}
