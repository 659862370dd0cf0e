package fiscal_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

func TestSubmitAll_RegistrosTerminalesSeOmitenConLogInfo(t *testing.T) {
	var buf bytes.Buffer
	s := fiscal.NewSubmitter(logger.NewWithWriter(&buf, "info"))
	records := submission.Documents([]*entity.FiscalDocument{
		fiscalDoc("d1", entity.CategoryNFe, entity.DominioStateStored),
		fiscalDoc("d2", entity.CategoryNFe, entity.DominioStateDuplicated),
	})

	// Sin registros pendientes el gateway no se usa.
	batch, err := s.SubmitAll(context.Background(), nil, dominio.Session{}, records, false)
	require.NoError(t, err)

	assert.Equal(t, 2, batch.Skipped)
	assert.Empty(t, batch.Results)
	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"record":"document:d1"`)
	assert.Contains(t, out, `"record":"document:d2"`)
	assert.Contains(t, out, "ya almacenado en Dominio, se omite")
}
