package fiscal

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// Outcome estado final de un registro tras la reconciliación.
type Outcome struct {
	Ref    submission.Ref
	Status entity.DominioStatus
}

// Reconciliation resumen de la consulta de estado de un lote.
type Reconciliation struct {
	Stored   int
	Existing int // EA10: ya existía en Dominio
	Rejected int
	Skipped  int // pasaron a terminal entre el envío y la consulta
	Outcomes []Outcome
}

// Reconciler consulta el estado de cada envío y lo persiste sobre el registro.
type Reconciler struct {
	store StatusStore
	log   *logger.Logger
}

// NewReconciler construye el reconciliador.
func NewReconciler(store StatusStore, log *logger.Logger) *Reconciler {
	return &Reconciler{store: store, log: log.Component("dominio_reconciler")}
}

// Reconcile procesa los resultados en orden. Antes de consultar relee el estado
// actual del registro y omite los que ya son terminales. Un error de upstream
// aborta el resto; los registros ya reconciliados quedan persistidos.
func (r *Reconciler) Reconcile(ctx context.Context, gw DominioGateway, results []submission.Result) (*Reconciliation, error) {
	out := &Reconciliation{Outcomes: make([]Outcome, 0, len(results))}
	for _, res := range results {
		ref := res.Record.Ref()

		current, err := r.store.CurrentState(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("reconciliar: leer estado de %s: %w", ref, err)
		}
		if current.IsTerminal() {
			out.Skipped++
			continue
		}

		session := dominio.Session{IntegrationKey: res.IntegrationKey, AccessToken: res.AccessToken}
		resp, err := gw.FetchStatus(ctx, session, res.ExternalID)
		if err != nil {
			return nil, withRecord(err, ref)
		}
		api, ok := resp.First()
		if !ok {
			return nil, &domain.UpstreamError{
				Stage:   domain.StageStatus,
				Record:  ref.String(),
				Message: "respuesta sin filesExpanded",
			}
		}

		txID := resp.TransactionID()
		if txID == "" {
			txID = res.ExternalID
		}
		st, outcome := submission.Apply(res.Record, txID, api.Code, api.Message)
		if err := r.store.SaveStatus(ctx, ref, st); err != nil {
			return nil, fmt.Errorf("reconciliar: guardar estado de %s: %w", ref, err)
		}

		ev := r.log.Info()
		switch outcome {
		case submission.OutcomeStored:
			out.Stored++
		case submission.OutcomeAlreadyExists:
			out.Existing++
			ev = r.log.Warn()
		case submission.OutcomeRejected:
			out.Rejected++
			ev = r.log.Warn()
		}
		ev.Str("record", ref.String()).Str("code", api.Code).Str("state", string(st.State)).Msg(api.Message)

		out.Outcomes = append(out.Outcomes, Outcome{Ref: ref, Status: st})
	}
	return out, nil
}
