package fiscal

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

// IntegrationChecker indica si una empresa tiene credenciales de una integración.
// Lo usa el middleware HTTP que protege las rutas de cada integración.
type IntegrationChecker struct {
	companyRepo repository.CompanyRepository
}

// NewIntegrationChecker construye el checker.
func NewIntegrationChecker(companyRepo repository.CompanyRepository) *IntegrationChecker {
	return &IntegrationChecker{companyRepo: companyRepo}
}

// HasIntegration devuelve false si la empresa no existe.
func (c *IntegrationChecker) HasIntegration(ctx context.Context, companyID, name string) (bool, error) {
	company, err := c.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return false, fmt.Errorf("integraciones: obtener empresa: %w", err)
	}
	if company == nil {
		return false, nil
	}
	return company.HasIntegration(name), nil
}
