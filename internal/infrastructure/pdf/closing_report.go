// Package pdf genera el reporte de conciliación de un cierre fiscal con Dominio.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + CNPJ  │  Período + Estado             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Categoría | Total | Almacenados | Error | Pend.     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PENDIENTES: Registro | Categoría | Número | Código | Msg     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: listo / bloqueado para cierre                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
	"github.com/jhoicas/fiscal-bridge/internal/domain/entity"
	"github.com/jhoicas/fiscal-bridge/internal/domain/submission"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// maxMessageChars recorte del mensaje de Dominio en la tabla de pendientes.
const maxMessageChars = 70

// ── Generator ─────────────────────────────────────────────────────────────────

var _ fiscal.ClosingReportGenerator = (*ClosingReportGenerator)(nil)

// ClosingReportGenerator implementa fiscal.ClosingReportGenerator con Maroto v2.
type ClosingReportGenerator struct{}

// NewClosingReportGenerator construye el generador.
func NewClosingReportGenerator() *ClosingReportGenerator { return &ClosingReportGenerator{} }

// GenerateClosingReport genera el PDF y devuelve sus bytes.
func (g *ClosingReportGenerator) GenerateClosingReport(_ context.Context, company *entity.Company, status *fiscal.ClosingStatus) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Conciliação Dominio "+status.Closing.Period(), true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, status.Closing))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle("RESUMEN POR CATEGORÍA"))
	m.AddRows(summaryHeaderRow())
	m.AddRows(summaryRows(status.Categories)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if len(status.Pending) > 0 {
		m.AddRows(sectionTitle(fmt.Sprintf("REGISTROS SIN ALMACENAR (%d)", len(status.Pending))))
		m.AddRows(pendingHeaderRow())
		m.AddRows(pendingRows(status.Pending)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(status))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + CNPJ (izq) y período + estado del cierre (der).
func headerRow(company *entity.Company, closing *entity.Closing) core.Row {
	state := "ABIERTO"
	if closing.IsClosed() {
		state = "CERRADO"
		if closing.ClosedAt != nil {
			state += " el " + closing.ClosedAt.Format("02/01/2006 15:04")
		}
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("CNPJ: "+nonEmpty(company.CNPJ, "-"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("CONCILIACIÓN DOMINIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Período "+closing.Period(), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Estado: "+state, props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func cell(value string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func summaryHeaderRow() core.Row {
	return row.New(7).Add(
		headerCell("Categoría", 4, align.Left),
		headerCell("Total", 2, align.Right),
		headerCell("Almacenados", 2, align.Right),
		headerCell("Con error", 2, align.Right),
		headerCell("Pendientes", 2, align.Right),
	)
}

func summaryRows(categories []fiscal.CategoryStatus) []core.Row {
	rows := make([]core.Row, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, row.New(6).Add(
			cell(categoryLabel(c.Category), 4, align.Left),
			cell(strconv.Itoa(c.Total), 2, align.Right),
			cell(strconv.Itoa(c.Stored), 2, align.Right),
			cell(strconv.Itoa(c.Errors), 2, align.Right),
			cell(strconv.Itoa(c.Pending), 2, align.Right),
		))
	}
	return rows
}

func pendingHeaderRow() core.Row {
	return row.New(7).Add(
		headerCell("Registro", 3, align.Left),
		headerCell("Categoría", 2, align.Left),
		headerCell("Número", 2, align.Left),
		headerCell("Código", 1, align.Center),
		headerCell("Mensaje Dominio", 4, align.Left),
	)
}

func pendingRows(pending []fiscal.PendingRecord) []core.Row {
	rows := make([]core.Row, 0, len(pending))
	for _, p := range pending {
		code := p.Status.Code
		if code == "" {
			code = "-"
		}
		msg := p.Status.Message
		if msg == "" && p.Status.State == entity.DominioStateUnset {
			msg = "no enviado"
		}
		rows = append(rows, row.New(6).Add(
			cell(p.Ref.String(), 3, align.Left),
			cell(categoryLabel(p.Category), 2, align.Left),
			cell(nonEmpty(p.Number, "-"), 2, align.Left),
			cell(code, 1, align.Center),
			cell(truncate(msg, maxMessageChars), 4, align.Left),
		))
	}
	return rows
}

// footerRow: leyenda de cierre habilitado o bloqueado.
func footerRow(status *fiscal.ClosingStatus) core.Row {
	label, color := "Todos los registros están almacenados en Dominio: el cierre puede finalizarse.", colorGreen
	if !status.ReadyToClose {
		label, color = "Hay registros sin almacenar en Dominio: el cierre está bloqueado.", colorRed
	}
	return row.New(10).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: color, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

var categoryLabels = map[string]string{
	entity.CategoryNFe:          "NF-e",
	entity.CategoryNFSe:         "NFS-e",
	entity.CategoryNFCe:         "NFC-e",
	entity.CategoryCFe:          "CF-e",
	entity.CategoryCFeECF:       "CF-e ECF",
	entity.CategoryRL:           "RL",
	submission.CategoryPayments: "Baixas (pagos)",
}

func categoryLabel(c string) string {
	return nonEmpty(categoryLabels[c], c)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
