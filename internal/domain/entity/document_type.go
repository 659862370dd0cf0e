package entity

// DocumentType tipo de documento fiscal con su espécie equivalente en Dominio.
type DocumentType struct {
	Code           string
	Name           string
	DominioSpecies string // vacío = sin mapeo, las líneas de pago se omiten
}
