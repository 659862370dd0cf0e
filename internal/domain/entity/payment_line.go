package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentLine línea de pago (baixa de título) de un asiento contable del cierre.
// Si XML está vacío, el XML de baixa se sintetiza a partir de los demás campos.
type PaymentLine struct {
	ID               string
	CompanyID        string
	ClosingID        string
	MoveName         string
	DocumentTypeCode string
	Species          string // espécie Dominio resuelta desde document_types
	DocumentNumber   string
	DocumentSerie    string
	PartnerName      string
	PartnerCNPJ      string
	Amount           decimal.Decimal
	IssueDate        time.Time
	DueDate          time.Time
	PaymentDate      time.Time
	XML              []byte
	Dominio          DominioStatus
}
