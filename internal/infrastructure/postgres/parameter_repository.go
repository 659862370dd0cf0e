package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
)

var _ repository.ParameterRepository = (*ParameterRepo)(nil)

// ParameterRepo parámetros de sistema (config_parameters).
type ParameterRepo struct {
	q Querier
}

// NewParameterRepository construye el adaptador.
func NewParameterRepository(q Querier) *ParameterRepo {
	return &ParameterRepo{q: q}
}

func (r *ParameterRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.q.QueryRow(ctx, `SELECT COALESCE(value, '') FROM config_parameters WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("get parameter %s: %w", key, err)
	}
	return value, nil
}
