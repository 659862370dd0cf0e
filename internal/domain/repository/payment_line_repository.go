package repository

import (
	"context"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// PaymentLineRepository define el puerto de acceso a líneas de pago de un cierre.
type PaymentLineRepository interface {
	ListByClosing(ctx context.Context, closingID string) ([]*entity.PaymentLine, error)
	GetDominioState(ctx context.Context, id string) (entity.DominioState, error)
	UpdateDominioStatus(ctx context.Context, id string, st entity.DominioStatus) error
}
