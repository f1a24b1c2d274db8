// Package billing arma la vista de factura de una venta y su PDF.
package billing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/settings"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/telemetry"
)

const invoiceListLimit = 100

// InvoiceUseCase la factura es una vista de la venta con los datos de la empresa.
type InvoiceUseCase struct {
	sales     SaleReader
	settings  *settings.SettingsUseCase
	generator InvoicePDFGenerator
}

// NewInvoiceUseCase construye el caso de uso inyectando todas sus dependencias.
func NewInvoiceUseCase(sales SaleReader, settings *settings.SettingsUseCase, generator InvoicePDFGenerator) *InvoiceUseCase {
	return &InvoiceUseCase{sales: sales, settings: settings, generator: generator}
}

// Get factura de la venta indicada.
func (uc *InvoiceUseCase) Get(ctx context.Context, saleID string) (*dto.InvoiceResponse, error) {
	sale, err := uc.sales.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	company, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{
		Sale:    *sale,
		Company: *company,
		TaxRate: EffectiveTaxRate(sale.Subtotal, sale.Tax),
	}, nil
}

// List facturas de las últimas ventas.
func (uc *InvoiceUseCase) List(ctx context.Context) ([]dto.InvoiceResponse, error) {
	list, err := uc.sales.List(ctx, dto.SaleFilter{Limit: invoiceListLimit})
	if err != nil {
		return nil, err
	}
	company, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.InvoiceResponse{
			Sale:    s,
			Company: *company,
			TaxRate: EffectiveTaxRate(s.Subtotal, s.Tax),
		})
	}
	return out, nil
}

// DownloadPDF genera el PDF de la factura.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound si la venta no existe.
func (uc *InvoiceUseCase) DownloadPDF(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	ctx, span := telemetry.StartSpan(ctx, "billing.DownloadPDF")
	defer span.End()

	inv, err := uc.Get(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.Sale.InvoiceNumber), nil
}

// EffectiveTaxRate tasa aplicada en porcentaje (tax / subtotal * 100), 0 si no hay subtotal.
func EffectiveTaxRate(subtotal, tax decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	return tax.Mul(decimal.NewFromInt(100)).Div(subtotal).Round(2)
}
