package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

var _ repository.DocumentTypeRepository = (*DocumentTypeRepo)(nil)

// DocumentTypeRepo catálogo de tipos de documento y su espécie Dominio.
type DocumentTypeRepo struct {
	q Querier
}

// NewDocumentTypeRepository construye el adaptador.
func NewDocumentTypeRepository(q Querier) *DocumentTypeRepo {
	return &DocumentTypeRepo{q: q}
}

func (r *DocumentTypeRepo) List(ctx context.Context) ([]*entity.DocumentType, error) {
	rows, err := r.q.Query(ctx, `SELECT code, name, COALESCE(dominio_species, '') FROM document_types ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	defer rows.Close()

	var list []*entity.DocumentType
	for rows.Next() {
		var dt entity.DocumentType
		if err := rows.Scan(&dt.Code, &dt.Name, &dt.DominioSpecies); err != nil {
			return nil, fmt.Errorf("scan document type: %w", err)
		}
		list = append(list, &dt)
	}
	return list, rows.Err()
}

// Upsert inserta o actualiza por código.
func (r *DocumentTypeRepo) Upsert(ctx context.Context, dt *entity.DocumentType) error {
	const query = `
		INSERT INTO document_types (code, name, dominio_species)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, dominio_species = EXCLUDED.dominio_species`
	if _, err := r.q.Exec(ctx, query, dt.Code, dt.Name, nullIfEmpty(dt.DominioSpecies)); err != nil {
		return fmt.Errorf("upsert document type %s: %w", dt.Code, err)
	}
	return nil
}
