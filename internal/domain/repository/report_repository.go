package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Totals suma y cantidad de documentos.
type Totals struct {
	Amount decimal.Decimal
	Count  int
}

// DailySales ventas completadas agrupadas por día.
type DailySales struct {
	Date   time.Time
	Amount decimal.Decimal
	Count  int
}

// TopProductRow ranking de variantes vendidas.
type TopProductRow struct {
	ProductID     string
	VariantID     string
	ProductName   string
	Specification string
	Quantity      decimal.Decimal
	Revenue       decimal.Decimal
}

// CatalogSummary agregados del catálogo.
type CatalogSummary struct {
	Products   int
	Variants   int
	StockValue decimal.Decimal // Σ stock × costo
	LowStock   int             // 0 < stock <= min
	OutOfStock int             // stock <= 0
}

// ReportRepository consultas de lectura para el dashboard. Las implementaciones no modifican datos.
type ReportRepository interface {
	// SalesTotals ventas COMPLETED en [from, to); from/to nil = sin límite.
	SalesTotals(ctx context.Context, from, to *time.Time) (Totals, error)
	PurchaseTotals(ctx context.Context, from, to *time.Time) (Totals, error)
	SalesByDay(ctx context.Context, from, to time.Time) ([]DailySales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProductRow, error)
	CatalogSummary(ctx context.Context) (CatalogSummary, error)
}
