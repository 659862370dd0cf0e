package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// GetByID obtiene una empresa con sus credenciales de integración.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if !isUUID(id) {
		return nil, nil
	}
	const query = `
		SELECT id, name, cnpj, status,
		       dominio_environment, COALESCE(dominio_client_id, ''), COALESCE(dominio_client_secret, ''),
		       COALESCE(dominio_production_key, ''), COALESCE(dominio_homologation_key, ''), dominio_boxe,
		       ndd_environment, COALESCE(ndd_production_email, ''), COALESCE(ndd_production_password, ''),
		       COALESCE(ndd_homologation_email, ''), COALESCE(ndd_homologation_password, ''),
		       created_at, updated_at
		FROM companies WHERE id = $1`
	var (
		c          entity.Company
		dominioEnv string
		nddEnv     string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.CNPJ, &c.Status,
		&dominioEnv, &c.Dominio.ClientID, &c.Dominio.ClientSecret,
		&c.Dominio.ProductionIntegrationKey, &c.Dominio.HomologationIntegrationKey, &c.Dominio.BoxE,
		&nddEnv, &c.NDD.ProductionEmail, &c.NDD.ProductionPassword,
		&c.NDD.HomologationEmail, &c.NDD.HomologationPassword,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	c.Dominio.Environment = entity.Environment(dominioEnv).Normalize()
	c.NDD.Environment = entity.Environment(nddEnv).Normalize()
	return &c, nil
}
