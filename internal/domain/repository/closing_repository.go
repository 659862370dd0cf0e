package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// ClosingRepository define el puerto de persistencia para cierres fiscales.
type ClosingRepository interface {
	// GetByID devuelve nil, nil si el cierre no existe.
	GetByID(ctx context.Context, id string) (*entity.Closing, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Closing, error)
	MarkClosed(ctx context.Context, id string, closedAt time.Time) error
}
