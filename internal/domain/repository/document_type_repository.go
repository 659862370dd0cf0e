package repository

import (
	"context"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// DocumentTypeRepository catálogo de tipos de documento con su espécie Dominio.
type DocumentTypeRepository interface {
	List(ctx context.Context) ([]*entity.DocumentType, error)
	// Upsert lo usa el importador del catálogo de espécies.
	Upsert(ctx context.Context, dt *entity.DocumentType) error
}
