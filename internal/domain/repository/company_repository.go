package repository

import (
	"context"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// CompanyRepository define el puerto de lectura de empresas y sus credenciales.
type CompanyRepository interface {
	// GetByID devuelve nil, nil si la empresa no existe.
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}
