package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fiscal-bridge/internal/application/dto"
	"github.com/jhoicas/fiscal-bridge/internal/domain"
)

// writeError traduce los errores de dominio a la respuesta HTTP.
// notFound es el mensaje para ErrNotFound (depende del recurso de la ruta).
func writeError(c *fiber.Ctx, err error, notFound string) error {
	var cfgErr *domain.ConfigurationError
	var upErr *domain.UpstreamError
	var payloadErr *domain.MissingPayloadError
	var blockedErr *domain.ClosingBlockedError

	switch {
	case errors.As(err, &cfgErr):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ConfigurationErrorResponse{
			Code:        "CONFIGURATION",
			Message:     cfgErr.Error(),
			Integration: cfgErr.Integration,
			Missing:     cfgErr.Missing,
		})
	case errors.As(err, &upErr):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Code:    "UPSTREAM_" + strings.ToUpper(upErr.Stage),
			Message: upErr.Error(),
			Stage:   upErr.Stage,
			Record:  upErr.Record,
		})
	case errors.As(err, &payloadErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "MISSING_XML",
			Message: payloadErr.Error(),
			Record:  payloadErr.Record,
		})
	case errors.As(err, &blockedErr):
		pending := make([]dto.PendingCategoryResponse, 0, len(blockedErr.Pending))
		for _, p := range blockedErr.Pending {
			pending = append(pending, dto.PendingCategoryResponse{Category: p.Category, Count: p.Count})
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ClosingBlockedResponse{
			Code:    "CLOSING_BLOCKED",
			Message: blockedErr.Error(),
			Pending: pending,
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// requireCompany corta la petición con 401 si el token no trae company_id.
func requireCompany(c *fiber.Ctx) (string, bool, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return "", false, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	return companyID, true, nil
}
