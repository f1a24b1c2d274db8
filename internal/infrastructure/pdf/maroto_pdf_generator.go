// Package pdf genera la factura de venta en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa              │  N° Factura + Fecha          │
//	│  EMPRESA: Dirección / Tel / Email                            │
//	│  CLIENTE: Nombre + contacto                                  │
//	│  TABLA: Cant | Producto | P.Unit | Total                     │
//	│  TOTALES: Subtotal / Impuesto / TOTAL                        │
//	│  FOOTER: QR con número y total + forma de pago               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
)

var (
	colorPrimary = &props.Color{Red: 60, Green: 60, Blue: 70}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(ctx context.Context, inv *dto.InvoiceResponse) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+inv.Sale.InvoiceNumber, true).
		WithAuthor(inv.Company.Name, true).
		Build()

	m := maroto.New(cfg)
	currency := inv.Company.Currency

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(companyRow(inv.Company))
	m.AddRows(customerRow(inv.Sale.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(inv.Sale.Items, currency)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv, currency))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(inv, currency))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(inv *dto.InvoiceResponse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(inv.Company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Sale.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.Sale.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func companyRow(c dto.CompanySettingsResponse) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("EMPRESA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(c.Address, "-"),
				nonEmpty(c.Phone, "-"),
				nonEmpty(c.Email, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func customerRow(c *dto.CustomerResponse) core.Row {
	name, phone, address := "-", "-", "-"
	if c != nil {
		name, phone, address = nonEmpty(c.Name, "-"), nonEmpty(c.Phone, "-"), nonEmpty(c.Address, "-")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Tel: %s   |   Dirección: %s", phone, address),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableItemRows(items []dto.SaleItemResponse, currency string) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		desc := strings.TrimSpace(it.ProductName + " " + it.VariantName)
		if desc == "" {
			desc = it.VariantID
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(desc, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money(it.UnitPrice, currency), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money(it.TotalPrice, currency), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(inv *dto.InvoiceResponse, currency string) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label(fmt.Sprintf("Impuesto (%s%%):", inv.TaxRate.String()), 7),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 13}),
		),
		col.New(3).Add(
			value(money(inv.Sale.Subtotal, currency), 1),
			value(money(inv.Sale.Tax, currency), 7),
			text.New(money(inv.Sale.Total, currency), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 13}),
		),
	)
}

// footerRow: QR con los datos de verificación y forma de pago.
func footerRow(inv *dto.InvoiceResponse, currency string) core.Row {
	qr := fmt.Sprintf("%s|%s|%s", inv.Sale.InvoiceNumber, inv.Sale.Total.StringFixed(2), currency)
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Forma de pago: "+inv.Sale.PaymentMethod, props.Text{Size: 9, Top: 4, Left: 3}),
			text.New("Estado: "+inv.Sale.Status, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 10, Top: 20, Left: 3, Color: colorPrimary}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func money(d decimal.Decimal, currency string) string {
	s := formatThousands(d.StringFixed(2))
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// formatThousands inserta separadores de miles en la parte entera. Ej: "25000.50" → "25,000.50".
func formatThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	n := len(intPart)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + frac
}
