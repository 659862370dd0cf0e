package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/fiscal-bridge/internal/application/dto"
	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName      string
	DominioSync  *fiscal.DominioSyncUseCase
	Closing      *fiscal.ClosingUseCase
	Report       *fiscal.ClosingReportUseCase
	Endorsement  *fiscal.EndorsementUseCase
	Integrations *fiscal.IntegrationChecker
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", App: deps.AppName})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleFiscal, jwt.RoleOperador)
	fiscalRoles := RequireRole(jwt.RoleAdmin, jwt.RoleFiscal)
	withDominio := RequireIntegration(entity.IntegrationDominio, deps.Integrations)
	withNDD := RequireIntegration(entity.IntegrationNDD, deps.Integrations)

	// Cierres: conciliación con Dominio
	closingHandler := NewClosingHandler(deps.DominioSync, deps.Closing, deps.Report)
	closings := api.Group("/closings")
	closings.Post("/:id/dominio", fiscalRoles, withDominio, closingHandler.SendToDominio)
	closings.Get("/:id/status", anyRole, closingHandler.Status)
	closings.Post("/:id/close", fiscalRoles, closingHandler.Close)
	closings.Get("/:id/report", anyRole, closingHandler.Report)

	// Averbação de CT-e
	endorsementHandler := NewEndorsementHandler(deps.Endorsement)
	documents := api.Group("/documents")
	documents.Post("/:id/endorsement", anyRole, withNDD, endorsementHandler.Endorse)
	documents.Post("/:id/endorsement/cancel", fiscalRoles, withNDD, endorsementHandler.Cancel)
	documents.Get("/:id/endorsement/xml", anyRole, withNDD, endorsementHandler.Retrieve)
	documents.Get("/:id/endorsement/events", anyRole, endorsementHandler.Events)

	// Verificación de credenciales de integración
	integrations := api.Group("/integrations", RequireRole(jwt.RoleAdmin))
	integrations.Get("/dominio/customer", withDominio, closingHandler.CheckCustomer)
	integrations.Get("/ndd/user", withNDD, endorsementHandler.CheckUser)
}
