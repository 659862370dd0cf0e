package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fiscal-bridge/internal/application/dto"
)

// integrationChecker contrato mínimo para verificar si la empresa tiene una integración.
// Lo implementa *fiscal.IntegrationChecker.
type integrationChecker interface {
	HasIntegration(ctx context.Context, companyID, name string) (bool, error)
}

// RequireIntegration verifica que la empresa del token tenga credenciales para la
// integración indicada. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 INTEGRATION_DISABLED → la empresa no tiene la integración configurada.
//   - 503 INTEGRATION_CHECK_FAILED → fallo al consultar la empresa.
//   - 401 si no hay company_id en el contexto.
func RequireIntegration(name string, checker integrationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "company_id no encontrado en el token",
			})
		}

		enabled, err := checker.HasIntegration(c.Context(), companyID, name)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "INTEGRATION_CHECK_FAILED",
				Message: "no se pudo verificar la integración, intente más tarde",
			})
		}
		if !enabled {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "INTEGRATION_DISABLED",
				Message: "la integración '" + name + "' no está configurada para esta empresa",
			})
		}
		return c.Next()
	}
}
