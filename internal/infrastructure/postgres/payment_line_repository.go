package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

var _ repository.PaymentLineRepository = (*PaymentLineRepo)(nil)

// PaymentLineRepo líneas de pago (baixas) de los asientos del cierre.
type PaymentLineRepo struct {
	q Querier
}

// NewPaymentLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentLineRepository(q Querier) *PaymentLineRepo {
	return &PaymentLineRepo{q: q}
}

// ListByClosing devuelve las líneas del cierre. La espécie se resuelve por join
// con document_types; queda vacía si el tipo no está mapeado.
func (r *PaymentLineRepo) ListByClosing(ctx context.Context, closingID string) ([]*entity.PaymentLine, error) {
	const query = `
		SELECT pl.id, pl.company_id, pl.closing_id, pl.move_name, pl.document_type_code,
		       COALESCE(dt.dominio_species, ''), COALESCE(pl.document_number, ''), COALESCE(pl.document_serie, ''),
		       COALESCE(pl.partner_name, ''), COALESCE(pl.partner_cnpj, ''), pl.amount,
		       pl.issue_date, pl.due_date, pl.payment_date,
		       pl.xml,
		       COALESCE(pl.dominio_state, ''), COALESCE(pl.dominio_transaction_id, ''),
		       COALESCE(pl.dominio_code, ''), COALESCE(pl.dominio_message, '')
		FROM payment_lines pl
		LEFT JOIN document_types dt ON dt.code = pl.document_type_code
		WHERE pl.closing_id = $1
		ORDER BY pl.payment_date, pl.move_name`
	rows, err := r.q.Query(ctx, query, closingID)
	if err != nil {
		return nil, fmt.Errorf("list payment lines: %w", err)
	}
	defer rows.Close()

	var list []*entity.PaymentLine
	for rows.Next() {
		l, err := scanPaymentLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *PaymentLineRepo) GetDominioState(ctx context.Context, id string) (entity.DominioState, error) {
	if !isUUID(id) {
		return "", domain.ErrNotFound
	}
	var state string
	err := r.q.QueryRow(ctx, `SELECT COALESCE(dominio_state, '') FROM payment_lines WHERE id = $1`, id).Scan(&state)
	if err != nil {
		if isNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get payment line dominio state: %w", err)
	}
	return entity.DominioState(state), nil
}

func (r *PaymentLineRepo) UpdateDominioStatus(ctx context.Context, id string, st entity.DominioStatus) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	const query = `
		UPDATE payment_lines
		   SET dominio_state = $2, dominio_transaction_id = $3, dominio_code = $4, dominio_message = $5, updated_at = now()
		 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id,
		nullIfEmpty(string(st.State)), nullIfEmpty(st.TransactionID), nullIfEmpty(st.Code), nullIfEmpty(st.Message),
	)
	if err != nil {
		return fmt.Errorf("update payment line dominio status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPaymentLine(row pgx.Row) (*entity.PaymentLine, error) {
	var (
		l          entity.PaymentLine
		state      string
		issue, due *time.Time
	)
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.ClosingID, &l.MoveName, &l.DocumentTypeCode,
		&l.Species, &l.DocumentNumber, &l.DocumentSerie,
		&l.PartnerName, &l.PartnerCNPJ, &l.Amount,
		&issue, &due, &l.PaymentDate,
		&l.XML,
		&state, &l.Dominio.TransactionID, &l.Dominio.Code, &l.Dominio.Message,
	)
	if err != nil {
		return nil, err
	}
	l.Dominio.State = entity.DominioState(state)
	if issue != nil {
		l.IssueDate = *issue
	}
	if due != nil {
		l.DueDate = *due
	}
	return &l, nil
}
