package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

var _ repository.EndorsementEventRepository = (*EndorsementEventRepo)(nil)

// EndorsementEventRepo historial de averbação por documento.
type EndorsementEventRepo struct {
	q Querier
}

// NewEndorsementEventRepository construye el adaptador.
func NewEndorsementEventRepository(q Querier) *EndorsementEventRepo {
	return &EndorsementEventRepo{q: q}
}

// Create persiste el evento; asigna ID si viene vacío.
func (r *EndorsementEventRepo) Create(ctx context.Context, ev *entity.EndorsementEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO endorsement_events (
			id, company_id, document_id, state, message, error_message, cte_id, document_number,
			protocol_number, endorsement_number, insurance_company, policy_number, amount, total_insured, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.CompanyID, ev.DocumentID, string(ev.State),
		nullIfEmpty(ev.Message), nullIfEmpty(ev.ErrorMessage), nullIfEmpty(ev.CteID), nullIfEmpty(ev.DocumentNumber),
		nullIfEmpty(ev.ProtocolNumber), nullIfEmpty(ev.EndorsementNumber), nullIfEmpty(ev.InsuranceCompany), nullIfEmpty(ev.PolicyNumber),
		ev.Amount, ev.TotalInsured, ev.Date,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("endorsement event already exists: %w", err)
		}
		return fmt.Errorf("insert endorsement event: %w", err)
	}
	return nil
}

func (r *EndorsementEventRepo) ListByDocument(ctx context.Context, documentID string) ([]*entity.EndorsementEvent, error) {
	const query = `
		SELECT id, company_id, document_id, state, COALESCE(message, ''), COALESCE(error_message, ''),
		       COALESCE(cte_id, ''), COALESCE(document_number, ''), COALESCE(protocol_number, ''),
		       COALESCE(endorsement_number, ''), COALESCE(insurance_company, ''), COALESCE(policy_number, ''),
		       amount, total_insured, date
		FROM endorsement_events
		WHERE document_id = $1
		ORDER BY date DESC`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list endorsement events: %w", err)
	}
	defer rows.Close()

	var list []*entity.EndorsementEvent
	for rows.Next() {
		var (
			ev    entity.EndorsementEvent
			state string
		)
		if err := rows.Scan(
			&ev.ID, &ev.CompanyID, &ev.DocumentID, &state, &ev.Message, &ev.ErrorMessage,
			&ev.CteID, &ev.DocumentNumber, &ev.ProtocolNumber,
			&ev.EndorsementNumber, &ev.InsuranceCompany, &ev.PolicyNumber,
			&ev.Amount, &ev.TotalInsured, &ev.Date,
		); err != nil {
			return nil, fmt.Errorf("scan endorsement event: %w", err)
		}
		ev.State = entity.EndorsementState(state)
		list = append(list, &ev)
	}
	return list, rows.Err()
}
