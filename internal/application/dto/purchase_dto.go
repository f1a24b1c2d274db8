package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierInfo datos del proveedor de una compra. Se busca por nombre + teléfono.
type SupplierInfo struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// PurchaseItemRequest línea de compra.
type PurchaseItemRequest struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	Supplier       SupplierInfo          `json:"supplier"`
	Items          []PurchaseItemRequest `json:"items"`
	PaymentStatus  string                `json:"payment_status,omitempty"`  // por defecto PENDING
	DeliveryStatus string                `json:"delivery_status,omitempty"` // por defecto PENDING
}

// UpdatePurchaseStatusRequest body para PUT /api/purchases/:id/status. Campos nil no cambian.
type UpdatePurchaseStatusRequest struct {
	PaymentStatus  *string `json:"payment_status"`
	DeliveryStatus *string `json:"delivery_status"`
}

// PurchaseFilter query de GET /api/purchases.
type PurchaseFilter struct {
	Search         string `query:"search"`
	StartDate      string `query:"start_date"`
	EndDate        string `query:"end_date"`
	PaymentStatus  string `query:"payment_status"`
	DeliveryStatus string `query:"delivery_status"`
	Limit          int    `query:"limit"`
}

// SupplierResponse proveedor en respuestas.
type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PurchaseItemResponse línea de compra en respuestas.
type PurchaseItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id"`
	ProductName string          `json:"product_name,omitempty"`
	VariantName string          `json:"variant_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// PurchaseResponse compra con líneas.
type PurchaseResponse struct {
	ID             string                 `json:"id"`
	PurchaseNumber string                 `json:"purchase_number"`
	Supplier       *SupplierResponse      `json:"supplier,omitempty"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	Tax            decimal.Decimal        `json:"tax"`
	Total          decimal.Decimal        `json:"total"`
	PaymentStatus  string                 `json:"payment_status"`
	DeliveryStatus string                 `json:"delivery_status"`
	Items          []PurchaseItemResponse `json:"items"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
