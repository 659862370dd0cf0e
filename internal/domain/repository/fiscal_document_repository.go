package repository

import (
	"context"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// FiscalDocumentRepository define el puerto de acceso a documentos fiscales.
// El ERP es dueño de los documentos; el servicio solo escribe el estado Dominio.
type FiscalDocumentRepository interface {
	// GetByID devuelve nil, nil si el documento no existe.
	GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error)
	ListByClosing(ctx context.Context, closingID string) ([]*entity.FiscalDocument, error)
	// GetDominioState lectura ligera del estado actual (para reconciliar sin pisar cierres concurrentes).
	GetDominioState(ctx context.Context, id string) (entity.DominioState, error)
	UpdateDominioStatus(ctx context.Context, id string, st entity.DominioStatus) error
}
