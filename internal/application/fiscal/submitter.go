package fiscal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

// Batch resultado del envío de un lote.
type Batch struct {
	Results  []submission.Result
	Skipped  int // ya almacenados en Dominio
	Unmapped int // líneas de pago sin espécie Dominio
}

// Submitter envía los XML de un lote a Dominio, uno por request, con la misma sesión.
type Submitter struct {
	log *logger.Logger
}

// NewSubmitter construye el submitter.
func NewSubmitter(log *logger.Logger) *Submitter {
	return &Submitter{log: log.Component("dominio_submitter")}
}

// SubmitAll envía cada registro no terminal en orden. Un error de upstream o un
// registro sin XML aborta el lote y descarta los resultados ya obtenidos; los
// registros enviados hasta ese punto quedan sin estado y se reenvían en la
// siguiente ejecución.
func (s *Submitter) SubmitAll(ctx context.Context, gw DominioGateway, session dominio.Session, records []submission.Record, boxE bool) (*Batch, error) {
	batch := &Batch{Results: make([]submission.Result, 0, len(records))}
	for _, rec := range records {
		ref := rec.Ref()
		if rec.Status().State.IsTerminal() {
			batch.Skipped++
			s.log.Info().Str("record", ref.String()).Str("state", string(rec.Status().State)).Msg("ya almacenado en Dominio, se omite")
			continue
		}

		payload, err := rec.Payload()
		if errors.Is(err, submission.ErrUnmappedSpecies) {
			batch.Unmapped++
			s.log.Warn().Str("record", ref.String()).Msg("línea de pago sin espécie Dominio, se omite")
			continue
		}
		if err != nil {
			return nil, err
		}

		filename := fmt.Sprintf("%s-%s.xml", ref.Kind, ref.ID)
		externalID, err := gw.SubmitXML(ctx, session, filename, payload, boxE)
		if err != nil {
			return nil, withRecord(err, ref)
		}
		s.log.Debug().Str("record", ref.String()).Str("external_id", externalID).Msg("XML enviado a Dominio")

		batch.Results = append(batch.Results, submission.Result{
			IntegrationKey: session.IntegrationKey,
			AccessToken:    session.AccessToken,
			ExternalID:     externalID,
			Record:         rec,
		})
	}
	return batch, nil
}

// withRecord completa la referencia del registro en un UpstreamError.
func withRecord(err error, ref submission.Ref) error {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Record == "" {
		ue.Record = ref.String()
	}
	return err
}
