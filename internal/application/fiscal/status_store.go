package fiscal

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
)

// StatusStore lee y persiste el estado Dominio de un registro por su referencia.
type StatusStore interface {
	CurrentState(ctx context.Context, ref submission.Ref) (entity.DominioState, error)
	SaveStatus(ctx context.Context, ref submission.Ref, st entity.DominioStatus) error
}

// RepositoryStatusStore despacha por tipo de registro a los repositorios de documentos y pagos.
type RepositoryStatusStore struct {
	docs  repository.FiscalDocumentRepository
	lines repository.PaymentLineRepository
}

// NewRepositoryStatusStore construye el store.
func NewRepositoryStatusStore(docs repository.FiscalDocumentRepository, lines repository.PaymentLineRepository) *RepositoryStatusStore {
	return &RepositoryStatusStore{docs: docs, lines: lines}
}

func (s *RepositoryStatusStore) CurrentState(ctx context.Context, ref submission.Ref) (entity.DominioState, error) {
	switch ref.Kind {
	case submission.KindDocument:
		return s.docs.GetDominioState(ctx, ref.ID)
	case submission.KindPayment:
		return s.lines.GetDominioState(ctx, ref.ID)
	default:
		return "", fmt.Errorf("tipo de registro desconocido %q", ref.Kind)
	}
}

func (s *RepositoryStatusStore) SaveStatus(ctx context.Context, ref submission.Ref, st entity.DominioStatus) error {
	switch ref.Kind {
	case submission.KindDocument:
		return s.docs.UpdateDominioStatus(ctx, ref.ID, st)
	case submission.KindPayment:
		return s.lines.UpdateDominioStatus(ctx, ref.ID, st)
	default:
		return fmt.Errorf("tipo de registro desconocido %q", ref.Kind)
	}
}
