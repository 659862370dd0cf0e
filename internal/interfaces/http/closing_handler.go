package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
)

// ClosingHandler maneja el envío a Dominio, la conciliación y el cierre de períodos.
type ClosingHandler struct {
	sync    *fiscal.DominioSyncUseCase
	closing *fiscal.ClosingUseCase
	report  *fiscal.ClosingReportUseCase
}

// NewClosingHandler construye el handler.
func NewClosingHandler(sync *fiscal.DominioSyncUseCase, closing *fiscal.ClosingUseCase, report *fiscal.ClosingReportUseCase) *ClosingHandler {
	return &ClosingHandler{sync: sync, closing: closing, report: report}
}

// SendToDominio envía los documentos y bajas pendientes del cierre y concilia su estado.
// POST /api/closings/:id/dominio
func (h *ClosingHandler) SendToDominio(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	report, err := h.sync.SendClosing(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "cierre no encontrado")
	}
	return c.JSON(fiscal.ToSyncReportResponse(report))
}

// Status devuelve el resumen de conciliación por categoría y los registros pendientes.
// GET /api/closings/:id/status
func (h *ClosingHandler) Status(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	st, err := h.closing.Status(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "cierre no encontrado")
	}
	return c.JSON(fiscal.ToClosingStatusResponse(st))
}

// Close finaliza el cierre si todos los registros están almacenados en Dominio.
// POST /api/closings/:id/close
func (h *ClosingHandler) Close(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	closing, err := h.closing.Close(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "cierre no encontrado")
	}
	return c.JSON(fiscal.ToClosingResponse(closing))
}

// Report descarga el reporte PDF de conciliación del cierre.
// GET /api/closings/:id/report
func (h *ClosingHandler) Report(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	pdfBytes, filename, err := h.report.Render(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "cierre no encontrado")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// CheckCustomer consulta en Dominio los datos de activación de la clave de integración.
// GET /api/integrations/dominio/customer
func (h *ClosingHandler) CheckCustomer(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	info, err := h.sync.CheckCustomer(c.Context(), companyID)
	if err != nil {
		return writeError(c, err, "empresa no encontrada")
	}
	return c.JSON(info)
}
