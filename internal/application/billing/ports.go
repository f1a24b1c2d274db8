package billing

import (
	"context"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
)

// InvoicePDFGenerator genera la representación en PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *dto.InvoiceResponse) ([]byte, error)
}

// SaleReader lectura de ventas ya mapeadas (implementado por sales.SaleUseCase).
type SaleReader interface {
	Get(ctx context.Context, id string) (*dto.SaleResponse, error)
	List(ctx context.Context, f dto.SaleFilter) ([]dto.SaleResponse, error)
}
