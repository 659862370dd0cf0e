package fiscal

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

// ClosingReportUseCase genera el PDF de conciliación de un cierre.
type ClosingReportUseCase struct {
	companyRepo repository.CompanyRepository
	closings    *ClosingUseCase
	generator   ClosingReportGenerator
}

// NewClosingReportUseCase construye el caso de uso.
func NewClosingReportUseCase(companyRepo repository.CompanyRepository, closings *ClosingUseCase, generator ClosingReportGenerator) *ClosingReportUseCase {
	return &ClosingReportUseCase{companyRepo: companyRepo, closings: closings, generator: generator}
}

// Render devuelve el PDF y el nombre de archivo sugerido.
func (uc *ClosingReportUseCase) Render(ctx context.Context, companyID, closingID string) ([]byte, string, error) {
	// ── 1. Estado del cierre (valida pertenencia) ───────────────────────────
	status, err := uc.closings.Status(ctx, companyID, closingID)
	if err != nil {
		return nil, "", err
	}

	// ── 2. Empresa ──────────────────────────────────────────────────────────
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}

	// ── 3. PDF ──────────────────────────────────────────────────────────────
	pdf, err := uc.generator.GenerateClosingReport(ctx, company, status)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generar PDF: %w", err)
	}
	c := status.Closing
	filename := fmt.Sprintf("cierre-%04d-%02d.pdf", c.Year, c.Month)
	return pdf, filename, nil
}
