package repository

import (
	"context"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// EndorsementEventRepository historial de respuestas de NDD Averba por documento.
type EndorsementEventRepository interface {
	Create(ctx context.Context, ev *entity.EndorsementEvent) error
	// ListByDocument devuelve los eventos del más reciente al más antiguo.
	ListByDocument(ctx context.Context, documentID string) ([]*entity.EndorsementEvent, error)
}
