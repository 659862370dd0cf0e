// Package submission contiene las reglas puras del envío a Dominio: registros
// enviables (documentos fiscales y líneas de pago), interpretación de los códigos
// de estado y la validación de cierre. No realiza I/O.
package submission

import (
	"errors"

	"github.com/jhoicas/fiscal-bridge/internal/domain"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
)

// ErrUnmappedSpecies la línea de pago no tiene espécie Dominio: se omite con advertencia.
var ErrUnmappedSpecies = errors.New("tipo de documento sin espécie Dominio")

// Kind tipo de registro enviable.
type Kind string

const (
	KindDocument Kind = "document"
	KindPayment  Kind = "payment"
)

// Ref referencia estable de un registro (tipo + id).
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string { return string(r.Kind) + ":" + r.ID }

// Record registro que puede enviarse a Dominio. Lo implementan Document y Payment.
type Record interface {
	Ref() Ref
	Status() entity.DominioStatus
	// Payload devuelve el XML a enviar. MissingPayloadError aborta el lote;
	// ErrUnmappedSpecies indica que el registro debe omitirse.
	Payload() ([]byte, error)
	SetStatus(entity.DominioStatus)
}

// PaymentRenderer sintetiza el XML de baixa de una línea de pago sin artefacto propio.
type PaymentRenderer interface {
	RenderPayment(line *entity.PaymentLine) ([]byte, error)
}

// Document adapta un documento fiscal a Record.
type Document struct {
	Doc *entity.FiscalDocument
}

func (d Document) Ref() Ref { return Ref{Kind: KindDocument, ID: d.Doc.ID} }
func (d Document) Status() entity.DominioStatus { return d.Doc.Dominio }
func (d Document) SetStatus(st entity.DominioStatus) { d.Doc.Dominio = st }

// Payload prefiere el XML de autorización y cae al XML de envío.
func (d Document) Payload() ([]byte, error) {
	if len(d.Doc.AuthorizationXML) > 0 {
		return d.Doc.AuthorizationXML, nil
	}
	if len(d.Doc.SendXML) > 0 {
		return d.Doc.SendXML, nil
	}
	return nil, &domain.MissingPayloadError{Record: d.Ref().String()}
}

// Payment adapta una línea de pago a Record.
type Payment struct {
	Line     *entity.PaymentLine
	Renderer PaymentRenderer
}

func (p Payment) Ref() Ref { return Ref{Kind: KindPayment, ID: p.Line.ID} }
func (p Payment) Status() entity.DominioStatus { return p.Line.Dominio }
func (p Payment) SetStatus(st entity.DominioStatus) { p.Line.Dominio = st }

// Payload usa el XML propio de la línea o lo sintetiza con el renderer.
func (p Payment) Payload() ([]byte, error) {
	if len(p.Line.XML) > 0 {
		return p.Line.XML, nil
	}
	if p.Line.Species == "" {
		return nil, ErrUnmappedSpecies
	}
	if p.Renderer == nil {
		return nil, &domain.MissingPayloadError{Record: p.Ref().String()}
	}
	return p.Renderer.RenderPayment(p.Line)
}

// Documents envuelve documentos fiscales como Records.
func Documents(docs []*entity.FiscalDocument) []Record {
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, Document{Doc: d})
	}
	return out
}

// Payments envuelve líneas de pago como Records.
func Payments(lines []*entity.PaymentLine, renderer PaymentRenderer) []Record {
	out := make([]Record, 0, len(lines))
	for _, l := range lines {
		out = append(out, Payment{Line: l, Renderer: renderer})
	}
	return out
}

// Result resultado de un envío aceptado: lo consume el reconciliador.
type Result struct {
	IntegrationKey string
	AccessToken    string
	ExternalID     string
	Record         Record
}
