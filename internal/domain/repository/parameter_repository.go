package repository

import "context"

// ParameterRepository parámetros de sistema clave/valor almacenados.
type ParameterRepository interface {
	// Get devuelve "" sin error si la clave no existe.
	Get(ctx context.Context, key string) (string, error)
}
