package dominio

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
)

const (
	paymentXMLVersion = "1.00"
	dateLayout        = "2006-01-02"
)

var _ submission.PaymentRenderer = (*PaymentXMLRenderer)(nil)

// PaymentXMLRenderer sintetiza el XML de baixa de título para líneas de pago
// que no tienen un artefacto XML propio.
//
//	<BaixaTitulo versao="1.00">
//	  <infBaixa>
//	    <especie/> <numeroDocumento/> <serie/>
//	    <dataEmissao/> <dataVencimento/> <dataPagamento/>
//	    <valor/>
//	    <participante><CNPJ/><xNome/></participante>
//	  </infBaixa>
//	</BaixaTitulo>
type PaymentXMLRenderer struct{}

// NewPaymentXMLRenderer construye el renderer.
func NewPaymentXMLRenderer() *PaymentXMLRenderer { return &PaymentXMLRenderer{} }

// RenderPayment genera el XML. La espécie debe venir resuelta en la línea.
func (r *PaymentXMLRenderer) RenderPayment(line *entity.PaymentLine) ([]byte, error) {
	if line.Species == "" {
		return nil, submission.ErrUnmappedSpecies
	}
	if line.Amount.IsNegative() {
		return nil, fmt.Errorf("dominio: línea %s con valor negativo %s", line.ID, line.Amount.StringFixed(2))
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("BaixaTitulo")
	root.CreateAttr("versao", paymentXMLVersion)

	inf := root.CreateElement("infBaixa")
	inf.CreateAttr("Id", "BX"+line.ID)
	inf.CreateElement("especie").SetText(line.Species)
	inf.CreateElement("numeroDocumento").SetText(line.DocumentNumber)
	if line.DocumentSerie != "" {
		inf.CreateElement("serie").SetText(line.DocumentSerie)
	}
	addDate(inf, "dataEmissao", line.IssueDate)
	addDate(inf, "dataVencimento", line.DueDate)
	addDate(inf, "dataPagamento", line.PaymentDate)
	inf.CreateElement("valor").SetText(line.Amount.StringFixed(2))

	part := inf.CreateElement("participante")
	part.CreateElement("CNPJ").SetText(onlyDigits(line.PartnerCNPJ))
	part.CreateElement("xNome").SetText(line.PartnerName)

	if line.MoveName != "" {
		inf.CreateElement("lancamento").SetText(line.MoveName)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("dominio: serializar XML de baixa: %w", err)
	}
	return out, nil
}

func addDate(parent *etree.Element, tag string, t time.Time) {
	if t.IsZero() {
		return
	}
	parent.CreateElement(tag).SetText(t.Format(dateLayout))
}

func onlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}
