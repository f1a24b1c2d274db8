package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdateStockRequest body para POST /api/inventory/update-stock (IN u OUT).
type UpdateStockRequest struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/adjust-stock.
type AdjustStockRequest struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	NewStock  decimal.Decimal `json:"new_stock"`
	Reason    string          `json:"reason"`
}

// MovementResponse movimiento del libro de inventario.
type MovementResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	StockBefore   decimal.Decimal `json:"stock_before"`
	StockAfter    decimal.Decimal `json:"stock_after"`
	Notes         string          `json:"notes,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	ProductID     string          `json:"product_id"`
	VariantID     string          `json:"variant_id"`
	ProductName   string          `json:"product_name,omitempty"`
	VariantName   string          `json:"variant_name,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StockChangeResponse resultado de update-stock/adjust-stock. Movement es nil en un ajuste sin cambio.
type StockChangeResponse struct {
	VariantID string            `json:"variant_id"`
	Stock     decimal.Decimal   `json:"stock"`
	Changed   bool              `json:"changed"`
	Movement  *MovementResponse `json:"movement,omitempty"`
}

// InventoryStatsResponse GET /api/inventory/stats.
type InventoryStatsResponse struct {
	TotalItems      int             `json:"total_items"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockItems   int             `json:"low_stock_items"`
	OutOfStockItems int             `json:"out_of_stock_items"`
}

// StockAlertResponse variante en o bajo su stock mínimo.
type StockAlertResponse struct {
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id"`
	Product      string          `json:"product"`
	Variant      string          `json:"variant"`
	SKU          string          `json:"sku"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Type         string          `json:"type"` // out_of_stock | low_stock
}

// ReconcileResponse comparación entre stock y suma del libro para una variante.
type ReconcileResponse struct {
	VariantID    string          `json:"variant_id"`
	Stock        decimal.Decimal `json:"stock"`
	LedgerSum    decimal.Decimal `json:"ledger_sum"`
	Movements    int             `json:"movements"`
	Consistent   bool            `json:"consistent"`
	ChainBroken  bool            `json:"chain_broken"`
	ChainMessage string          `json:"chain_message,omitempty"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para una variante en o bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	VariantID          string          `json:"variant_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	Specification      string          `json:"specification"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinStock           decimal.Decimal `json:"min_stock"`
	MaxStock           decimal.Decimal `json:"max_stock"`
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"` // MaxStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	UnitsSold          decimal.Decimal `json:"units_sold"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
