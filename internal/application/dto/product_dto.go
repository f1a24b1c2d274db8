package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto con sus variantes.
type CreateProductRequest struct {
	NameAr      string                 `json:"name_ar"`
	NameFr      string                 `json:"name_fr,omitempty"`
	Category    string                 `json:"category"`
	Description string                 `json:"description,omitempty"`
	Image       string                 `json:"image,omitempty"`
	Variants    []CreateVariantRequest `json:"variants"`
}

// CreateVariantRequest variante nueva. Stock > 0 se registra como entrada inicial.
type CreateVariantRequest struct {
	Specification string           `json:"specification"`
	SKU           string           `json:"sku,omitempty"` // vacío = se genera
	Price         decimal.Decimal  `json:"price"`
	Cost          decimal.Decimal  `json:"cost"`
	Stock         decimal.Decimal  `json:"stock"`
	MinStock      *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock      *decimal.Decimal `json:"max_stock,omitempty"`
}

// UpdateProductRequest entrada para actualizar datos de un producto.
type UpdateProductRequest struct {
	NameAr      *string `json:"name_ar"`
	NameFr      *string `json:"name_fr"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// UpdateVariantRequest entrada para actualizar una variante. El stock no se modifica aquí.
type UpdateVariantRequest struct {
	Specification *string          `json:"specification"`
	SKU           *string          `json:"sku"`
	Price         *decimal.Decimal `json:"price"`
	Cost          *decimal.Decimal `json:"cost"`
	MinStock      *decimal.Decimal `json:"min_stock"`
	MaxStock      *decimal.Decimal `json:"max_stock"`
}

// ProductFilter query de GET /api/products.
type ProductFilter struct {
	Search      string `query:"search"`
	Category    string `query:"category"`
	StockStatus string `query:"stock_status"`
}

// VariantResponse salida de una variante.
type VariantResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Specification string          `json:"specification"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	Stock         decimal.Decimal `json:"stock"`
	MinStock      decimal.Decimal `json:"min_stock"`
	MaxStock      decimal.Decimal `json:"max_stock"`
	StockStatus   string          `json:"stock_status"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string            `json:"id"`
	NameAr      string            `json:"name_ar"`
	NameFr      string            `json:"name_fr,omitempty"`
	Category    string            `json:"category"`
	Description string            `json:"description,omitempty"`
	Image       string            `json:"image,omitempty"`
	Variants    []VariantResponse `json:"variants"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
