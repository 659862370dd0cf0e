package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseSpecies_DecodificaLatin1(t *testing.T) {
	src := "codigo;nome;especie\n" +
		"55;Nota Fiscal Eletrônica;NFE\n" +
		"01;Duplicata Mercantil;DM\n" +
		"99;Outros;\n" +
		"55;Duplicado;XX\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(src))
	require.NoError(t, err)

	types, err := parseSpecies(bytes.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, types, 3)

	assert.Equal(t, "55", types[0].Code)
	assert.Equal(t, "Nota Fiscal Eletrônica", types[0].Name)
	assert.Equal(t, "NFE", types[0].DominioSpecies)
	assert.Equal(t, "DM", types[1].DominioSpecies)
	assert.Empty(t, types[2].DominioSpecies, "espécie vacía queda sin mapeo")
}

func TestParseSpecies_FilaIncompleta(t *testing.T) {
	_, err := parseSpecies(bytes.NewReader([]byte("codigo;nome;especie\n55\n")))
	assert.Error(t, err)
}
