package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

var _ repository.ClosingRepository = (*ClosingRepo)(nil)

// ClosingRepo implementación de ClosingRepository (usable con pool o tx).
type ClosingRepo struct {
	q Querier
}

// NewClosingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClosingRepository(q Querier) *ClosingRepo {
	return &ClosingRepo{q: q}
}

const closingColumns = `id, company_id, year, month, state, closed_at, created_at, updated_at`

func (r *ClosingRepo) GetByID(ctx context.Context, id string) (*entity.Closing, error) {
	return r.get(ctx, `SELECT `+closingColumns+` FROM closings WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE); solo tiene efecto dentro de una tx.
func (r *ClosingRepo) GetForUpdate(ctx context.Context, id string) (*entity.Closing, error) {
	return r.get(ctx, `SELECT `+closingColumns+` FROM closings WHERE id = $1 FOR UPDATE`, id)
}

func (r *ClosingRepo) get(ctx context.Context, query, id string) (*entity.Closing, error) {
	var c entity.Closing
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CompanyID, &c.Year, &c.Month, &c.State, &c.ClosedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get closing: %w", err)
	}
	return &c, nil
}

// MarkClosed pasa el cierre a closed. Devuelve ErrNotFound si no existe.
func (r *ClosingRepo) MarkClosed(ctx context.Context, id string, closedAt time.Time) error {
	const query = `UPDATE closings SET state = $2, closed_at = $3, updated_at = $3 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id, entity.ClosingStateClosed, closedAt)
	if err != nil {
		return fmt.Errorf("close closing: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
