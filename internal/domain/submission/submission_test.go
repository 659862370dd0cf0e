package submission_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func doc(id string, state entity.DominioState) *entity.FiscalDocument {
	return &entity.FiscalDocument{ID: id, Dominio: entity.DominioStatus{State: state}}
}

func docs(states ...entity.DominioState) []submission.Record {
	out := make([]submission.Record, 0, len(states))
	for i, s := range states {
		out = append(out, submission.Document{Doc: doc(string(rune('a'+i)), s)})
	}
	return out
}

type stubRenderer struct {
	calls int
}

func (r *stubRenderer) RenderPayment(line *entity.PaymentLine) ([]byte, error) {
	r.calls++
	return []byte("<BaixaTitulo>" + line.Species + "</BaixaTitulo>"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Payload
// ──────────────────────────────────────────────────────────────────────────────

func TestDocumentPayload_PrefiereXMLDeAutorizacion(t *testing.T) {
	d := doc("1", entity.DominioStateUnset)
	d.AuthorizationXML = []byte("<auth/>")
	d.SendXML = []byte("<send/>")

	p, err := submission.Document{Doc: d}.Payload()
	require.NoError(t, err)
	assert.Equal(t, "<auth/>", string(p))
}

func TestDocumentPayload_UsaXMLDeEnvioSiNoHayAutorizacion(t *testing.T) {
	d := doc("1", entity.DominioStateUnset)
	d.SendXML = []byte("<send/>")

	p, err := submission.Document{Doc: d}.Payload()
	require.NoError(t, err)
	assert.Equal(t, "<send/>", string(p))
}

func TestDocumentPayload_SinXML_MissingPayloadError(t *testing.T) {
	_, err := submission.Document{Doc: doc("7", entity.DominioStateUnset)}.Payload()

	var mp *domain.MissingPayloadError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, "document:7", mp.Record)
}

func TestPaymentPayload_SintetizaConRenderer(t *testing.T) {
	r := &stubRenderer{}
	line := &entity.PaymentLine{ID: "p1", Species: "DP", Amount: decimal.NewFromInt(10)}

	p, err := submission.Payment{Line: line, Renderer: r}.Payload()
	require.NoError(t, err)
	assert.Equal(t, "<BaixaTitulo>DP</BaixaTitulo>", string(p))
	assert.Equal(t, 1, r.calls)
}

func TestPaymentPayload_XMLPropioNoUsaRenderer(t *testing.T) {
	r := &stubRenderer{}
	line := &entity.PaymentLine{ID: "p1", XML: []byte("<own/>")}

	p, err := submission.Payment{Line: line, Renderer: r}.Payload()
	require.NoError(t, err)
	assert.Equal(t, "<own/>", string(p))
	assert.Zero(t, r.calls)
}

func TestPaymentPayload_SinEspecie_SeOmite(t *testing.T) {
	_, err := submission.Payment{Line: &entity.PaymentLine{ID: "p1"}, Renderer: &stubRenderer{}}.Payload()
	assert.True(t, errors.Is(err, submission.ErrUnmappedSpecies))
}

// ──────────────────────────────────────────────────────────────────────────────
// Códigos de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestInterpret_CodigosDeEstado(t *testing.T) {
	cases := []struct {
		code    string
		state   entity.DominioState
		outcome submission.Outcome
	}{
		{"SA2", entity.DominioStateStored, submission.OutcomeStored},
		{"EA10", entity.DominioStateStored, submission.OutcomeAlreadyExists},
		{"EA01", entity.DominioStateError, submission.OutcomeRejected},
		{"", entity.DominioStateError, submission.OutcomeRejected},
	}
	for _, tc := range cases {
		state, outcome := submission.Interpret(tc.code)
		assert.Equal(t, tc.state, state, "código %q", tc.code)
		assert.Equal(t, tc.outcome, outcome, "código %q", tc.code)
	}
}

func TestApply_MutaElRegistro(t *testing.T) {
	d := doc("1", entity.DominioStateUnset)
	rec := submission.Document{Doc: d}

	st, outcome := submission.Apply(rec, "42", "SA2", "ok")

	assert.Equal(t, submission.OutcomeStored, outcome)
	assert.Equal(t, entity.DominioStatus{State: entity.DominioStateStored, TransactionID: "42", Code: "SA2", Message: "ok"}, st)
	assert.Equal(t, st, d.Dominio)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckReadyToClose_BloqueaConConteoPorCategoria(t *testing.T) {
	err := submission.CheckReadyToClose(map[string][]submission.Record{
		"A": docs(entity.DominioStateStored, entity.DominioStateStored, entity.DominioStateError),
		"B": docs(entity.DominioStateStored, entity.DominioStateStored, entity.DominioStateStored),
	})

	var blocked *domain.ClosingBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []domain.PendingCategory{{Category: "A", Count: 1}}, blocked.Pending)
	assert.Contains(t, err.Error(), "A: 1 sin almacenar")
	assert.NotContains(t, err.Error(), "B:")
}

func TestCheckReadyToClose_CualquierEstadoNoAlmacenadoBloquea(t *testing.T) {
	err := submission.CheckReadyToClose(map[string][]submission.Record{
		"nfe":      docs(entity.DominioStateUnset),
		"payments": docs(entity.DominioStateError, entity.DominioStateUnset),
	})

	var blocked *domain.ClosingBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []domain.PendingCategory{
		{Category: "nfe", Count: 1},
		{Category: "payments", Count: 2},
	}, blocked.Pending)
}

func TestCheckReadyToClose_DuplicadoCuentaComoAlmacenado(t *testing.T) {
	err := submission.CheckReadyToClose(map[string][]submission.Record{
		"nfe": docs(entity.DominioStateStored, entity.DominioStateDuplicated),
		"rl":  nil,
	})
	assert.NoError(t, err)
}
