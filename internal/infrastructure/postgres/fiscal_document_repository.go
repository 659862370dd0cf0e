package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

var _ repository.FiscalDocumentRepository = (*FiscalDocumentRepo)(nil)

// FiscalDocumentRepo documentos fiscales sincronizados desde el ERP.
type FiscalDocumentRepo struct {
	q Querier
}

// NewFiscalDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalDocumentRepository(q Querier) *FiscalDocumentRepo {
	return &FiscalDocumentRepo{q: q}
}

const fiscalDocumentColumns = `
	id, company_id, closing_id, category, document_type_code, COALESCE(document_key, ''),
	number, COALESCE(serie, ''), COALESCE(state_edoc, ''), amount_total, issued_at,
	authorization_xml, send_xml, cancel_xml,
	COALESCE(dominio_state, ''), COALESCE(dominio_transaction_id, ''),
	COALESCE(dominio_code, ''), COALESCE(dominio_message, '')`

func (r *FiscalDocumentRepo) GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + fiscalDocumentColumns + ` FROM fiscal_documents WHERE id = $1`
	d, err := scanFiscalDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal document: %w", err)
	}
	return d, nil
}

// ListByClosing devuelve los documentos del cierre en orden de emisión.
func (r *FiscalDocumentRepo) ListByClosing(ctx context.Context, closingID string) ([]*entity.FiscalDocument, error) {
	query := `SELECT ` + fiscalDocumentColumns + `
		FROM fiscal_documents WHERE closing_id = $1 ORDER BY issued_at, number`
	rows, err := r.q.Query(ctx, query, closingID)
	if err != nil {
		return nil, fmt.Errorf("list fiscal documents: %w", err)
	}
	defer rows.Close()

	var list []*entity.FiscalDocument
	for rows.Next() {
		d, err := scanFiscalDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal document: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *FiscalDocumentRepo) GetDominioState(ctx context.Context, id string) (entity.DominioState, error) {
	if !isUUID(id) {
		return "", domain.ErrNotFound
	}
	var state string
	err := r.q.QueryRow(ctx, `SELECT COALESCE(dominio_state, '') FROM fiscal_documents WHERE id = $1`, id).Scan(&state)
	if err != nil {
		if isNoRows(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get fiscal document dominio state: %w", err)
	}
	return entity.DominioState(state), nil
}

func (r *FiscalDocumentRepo) UpdateDominioStatus(ctx context.Context, id string, st entity.DominioStatus) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	const query = `
		UPDATE fiscal_documents
		   SET dominio_state = $2, dominio_transaction_id = $3, dominio_code = $4, dominio_message = $5, updated_at = now()
		 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id,
		nullIfEmpty(string(st.State)), nullIfEmpty(st.TransactionID), nullIfEmpty(st.Code), nullIfEmpty(st.Message),
	)
	if err != nil {
		return fmt.Errorf("update fiscal document dominio status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanFiscalDocument(row pgx.Row) (*entity.FiscalDocument, error) {
	var (
		d     entity.FiscalDocument
		state string
	)
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.ClosingID, &d.Category, &d.DocumentTypeCode, &d.DocumentKey,
		&d.Number, &d.Serie, &d.StateEdoc, &d.AmountTotal, &d.IssuedAt,
		&d.AuthorizationXML, &d.SendXML, &d.CancelXML,
		&state, &d.Dominio.TransactionID, &d.Dominio.Code, &d.Dominio.Message,
	)
	if err != nil {
		return nil, err
	}
	d.Dominio.State = entity.DominioState(state)
	return &d, nil
}
