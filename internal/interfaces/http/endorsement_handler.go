package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
)

// EndorsementHandler maneja la averbação de CT-e en NDD Averba.
type EndorsementHandler struct {
	uc *fiscal.EndorsementUseCase
}

// NewEndorsementHandler construye el handler.
func NewEndorsementHandler(uc *fiscal.EndorsementUseCase) *EndorsementHandler {
	return &EndorsementHandler{uc: uc}
}

// Endorse envía el XML autorizado del CT-e y registra el evento resultante.
// POST /api/documents/:id/endorsement
func (h *EndorsementHandler) Endorse(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	ev, err := h.uc.Endorse(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "documento no encontrado")
	}
	return c.Status(fiber.StatusCreated).JSON(fiscal.ToEndorsementEventResponse(ev))
}

// Cancel envía el XML de cancelación de un CT-e averbado.
// POST /api/documents/:id/endorsement/cancel
func (h *EndorsementHandler) Cancel(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	ev, err := h.uc.CancelEndorsement(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "documento no encontrado")
	}
	return c.Status(fiber.StatusCreated).JSON(fiscal.ToEndorsementEventResponse(ev))
}

// Retrieve devuelve el XML de averbação consultado en NDD por la clave del CT-e.
// GET /api/documents/:id/endorsement/xml
func (h *EndorsementHandler) Retrieve(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	xml, err := h.uc.Retrieve(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "documento no encontrado")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(xml)
}

// Events devuelve el estado actual y el historial de eventos del documento.
// GET /api/documents/:id/endorsement/events
func (h *EndorsementHandler) Events(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	hist, err := h.uc.Events(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err, "documento no encontrado")
	}
	return c.JSON(fiscal.ToEndorsementHistoryResponse(hist))
}

// CheckUser valida las credenciales NDD de la empresa.
// GET /api/integrations/ndd/user
func (h *EndorsementHandler) CheckUser(c *fiber.Ctx) error {
	companyID, ok, err := requireCompany(c)
	if !ok {
		return err
	}
	info, err := h.uc.CheckUser(c.Context(), companyID)
	if err != nil {
		return writeError(c, err, "empresa no encontrada")
	}
	return c.JSON(info)
}
