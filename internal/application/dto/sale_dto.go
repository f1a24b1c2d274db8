package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerInfo datos del cliente de una venta. Con ID se usa el cliente existente.
type CustomerInfo struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// SaleItemRequest línea de venta.
type SaleItemRequest struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales. TaxRate en porcentaje; nil = tasa por defecto.
type CreateSaleRequest struct {
	Customer      CustomerInfo      `json:"customer"`
	Items         []SaleItemRequest `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	TaxRate       *decimal.Decimal  `json:"tax_rate,omitempty"`
}

// UpdateSaleStatusRequest body para PUT /api/sales/:id/status.
type UpdateSaleStatusRequest struct {
	Status string `json:"status"`
}

// SaleFilter query de GET /api/sales.
type SaleFilter struct {
	Search    string `query:"search"`
	StartDate string `query:"start_date"` // YYYY-MM-DD
	EndDate   string `query:"end_date"`   // YYYY-MM-DD, inclusivo
	Status    string `query:"status"`
	Limit     int    `query:"limit"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id"`
	ProductName string          `json:"product_name,omitempty"`
	VariantName string          `json:"variant_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// SaleResponse venta con líneas.
type SaleResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	Customer      *CustomerResponse  `json:"customer,omitempty"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	Items         []SaleItemResponse `json:"items"`
	CreatedBy     string             `json:"created_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NumberResponse siguiente número de documento (vista previa).
type NumberResponse struct {
	Number string `json:"number"`
}
