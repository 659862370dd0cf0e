// seed_species importa el catálogo de tipos de documento con su espécie Dominio
// a la tabla document_types.
//
// Uso: go run ./cmd/seed_species [ruta/especies.csv]
// Por defecto busca especies.csv en el directorio actual.
//
// El archivo es el que exporta el ERP: ISO-8859-1, separado por ';', con
// encabezado codigo;nome;especie. Una espécie vacía deja el tipo sin mapeo.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/postgres"
	"github.com/jhoicas/fiscal-bridge/pkg/config"
)

func main() {
	csvPath := "especies.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	types, err := parseSpecies(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewDocumentTypeRepository(pool)
	unmapped := 0
	for _, dt := range types {
		if err := repo.Upsert(ctx, dt); err != nil {
			fmt.Fprintf(os.Stderr, "Guardar tipo %s: %v\n", dt.Code, err)
			os.Exit(1)
		}
		if dt.DominioSpecies == "" {
			unmapped++
		}
	}

	fmt.Printf("Importados %d tipos de documento (%d sin espécie)\n", len(types), unmapped)
}

// parseSpecies decodifica el CSV ISO-8859-1. La primera fila es el encabezado.
func parseSpecies(r io.Reader) ([]*entity.DocumentType, error) {
	reader := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	out := make([]*entity.DocumentType, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 2 columnas", i+2)
		}
		code := strings.TrimSpace(row[0])
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		dt := &entity.DocumentType{Code: code, Name: strings.TrimSpace(row[1])}
		if len(row) > 2 {
			dt.DominioSpecies = strings.TrimSpace(row[2])
		}
		out = append(out, dt)
	}
	return out, nil
}
