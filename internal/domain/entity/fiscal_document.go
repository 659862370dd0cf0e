package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de documentos fiscales de un cierre.
const (
	CategoryNFe    = "nfe"
	CategoryNFSe   = "nfse"
	CategoryNFCe   = "nfce"
	CategoryCFe    = "cfe"
	CategoryCFeECF = "cfeecf"
	CategoryRL     = "rl"
)

// DocumentCategories orden en que se listan las categorías en los reportes.
var DocumentCategories = []string{
	CategoryNFe, CategoryNFSe, CategoryNFCe, CategoryCFe, CategoryCFeECF, CategoryRL,
}

// DocumentTypeCTe código del tipo de documento CT-e (conhecimento de transporte).
const DocumentTypeCTe = "57"

// StateEdocCancelled estado electrónico de un documento cancelado ante la SEFAZ.
const StateEdocCancelled = "cancelada"

// FiscalDocument documento fiscal emitido por el ERP. Los XML llegan ya autorizados;
// el servicio solo escribe el estado Dominio.
type FiscalDocument struct {
	ID               string
	CompanyID        string
	ClosingID        string
	Category         string // ver Category*
	DocumentTypeCode string // 55, 57, 65, ...
	DocumentKey      string // chave de acesso (44 dígitos)
	Number           string
	Serie            string
	StateEdoc        string
	AmountTotal      decimal.Decimal
	IssuedAt         time.Time
	AuthorizationXML []byte
	SendXML          []byte
	CancelXML        []byte
	Dominio          DominioStatus
}

// IsCTe indica si el documento es un CT-e.
func (d *FiscalDocument) IsCTe() bool {
	return d.DocumentTypeCode == DocumentTypeCTe
}

// IsCancelled indica si el documento fue cancelado ante la SEFAZ.
func (d *FiscalDocument) IsCancelled() bool {
	return d.StateEdoc == StateEdocCancelled
}
