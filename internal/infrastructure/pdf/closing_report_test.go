package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/pdf"
)

func TestGenerateClosingReport_GeneraPDF(t *testing.T) {
	closedAt := time.Date(2026, 10, 2, 9, 30, 0, 0, time.UTC)
	status := &fiscal.ClosingStatus{
		Closing: &entity.Closing{ID: "cl-1", Year: 2026, Month: 9, State: entity.ClosingStateClosed, ClosedAt: &closedAt},
		Categories: []fiscal.CategoryStatus{
			{Category: entity.CategoryNFe, Total: 3, Stored: 2, Errors: 1},
			{Category: submission.CategoryPayments, Total: 1, Pending: 1},
		},
		Pending: []fiscal.PendingRecord{
			{Ref: submission.Ref{Kind: submission.KindDocument, ID: "d1"}, Category: entity.CategoryNFe, Number: "1-1001",
				Status: entity.DominioStatus{State: entity.DominioStateError, Code: "EA03", Message: "Arquivo com estrutura inválida para o leiaute configurado no Domínio Web"}},
			{Ref: submission.Ref{Kind: submission.KindPayment, ID: "l1"}, Category: submission.CategoryPayments},
		},
	}
	company := &entity.Company{Name: "Transportes Teste Ltda", CNPJ: "12.345.678/0001-99"}

	out, err := pdf.NewClosingReportGenerator().GenerateClosingReport(context.Background(), company, status)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un PDF")
}
