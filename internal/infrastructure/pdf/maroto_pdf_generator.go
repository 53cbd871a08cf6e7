// Package pdf genera la representación imprimible de facturas y facturas mensuales.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor              │  Título + N° + Fechas        │
//	│  CLIENTE: Nombre + NIT + contacto                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Total           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuestos / Total / Pagado / Saldo     │
//	│  PIE: Estado, términos y notas                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

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
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/flota-crm-api/internal/application/billing"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa billing.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer  string
	printer *message.Printer
}

var _ billing.PDFGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador; issuer aparece en la cabecera.
func NewMarotoPDFGenerator(issuer string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{issuer: issuer, printer: message.NewPrinter(language.Spanish)}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(ctx context.Context, doc billing.PDFDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Title+" "+doc.Number, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

func (g *MarotoPDFGenerator) headerRow(doc billing.PDFDocument) core.Row {
	dates := "Fecha: " + doc.Date.Format("02/01/2006")
	if !doc.DueDate.IsZero() {
		dates += "   Vence: " + doc.DueDate.Format("02/01/2006")
	}
	right := []core.Component{
		text.New(doc.Title, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
		text.New(doc.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
		text.New(dates, props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
	}
	if doc.Period != "" {
		right = append(right, text.New("Periodo: "+doc.Period, props.Text{Size: 8, Align: align.Right, Top: 17, Color: colorGray}))
	}
	return row.New(22).Add(
		col.New(7).Add(text.New(g.issuer, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1})),
		col.New(5).Add(right...),
	)
}

func customerRow(doc billing.PDFDocument) core.Row {
	name, taxID, email, phone := "—", "—", "—", "—"
	if c := doc.Customer; c != nil {
		name, taxID = c.Name, c.TaxID
		email, phone = nonEmpty(c.Email, "—"), nonEmpty(c.Phone, "—")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("NIT/CC: %s   |   Email: %s   |   Tel: %s", taxID, email, phone),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Total", 3, align.Right),
	)
}

func (g *MarotoPDFGenerator) tableDetailRows(lines []billing.PDFLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.Description, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.TaxPercent.String()+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(g.money(l.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func (g *MarotoPDFGenerator) totalsRow(doc billing.PDFDocument) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(d decimal.Decimal, top float64) core.Component {
		return text.New(g.money(d), props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	taxLabel := "Impuestos:"
	if doc.TaxRate != nil {
		taxLabel = fmt.Sprintf("Impuestos (%s%%):", doc.TaxRate.String())
	}
	return row.New(30).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 0),
			label(taxLabel, 5),
			label("TOTAL:", 10),
			label("Pagado:", 17),
			label("Saldo:", 22),
		),
		col.New(3).Add(
			value(doc.Subtotal, 0),
			value(doc.TaxAmount, 5),
			value(doc.Total, 10),
			value(doc.PaidAmount, 17),
			value(doc.Balance, 22),
		),
	)
}

func footerRows(doc billing.PDFDocument) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("Estado: "+doc.Status, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
		}))),
	}
	if doc.Terms != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Términos: "+doc.Terms, props.Text{Size: 7, Color: colorGray, Top: 1}),
		)))
	}
	if doc.Notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+doc.Notes, props.Text{Size: 7, Color: colorGray, Top: 1}),
		)))
	}
	return rows
}

// money formatea con separadores de miles en español: 1.234.567,50.
// El redondeo lo hace decimal; x/text solo agrupa la parte entera.
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	whole, cents, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = g.printer.Sprint(number.Decimal(n))
	}
	return sign + "$" + whole + "," + cents
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
