package dto

import "github.com/shopspring/decimal"

// DashboardStatsDTO respuesta de GET /api/dashboard/stats.
type DashboardStatsDTO struct {
	TotalProducts   int             `json:"total_products"`
	TotalVariants   int             `json:"total_variants"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalPurchases  decimal.Decimal `json:"total_purchases"`
	StockAlerts     int             `json:"stock_alerts"`
	TodaySales      decimal.Decimal `json:"today_sales"`
	TodaySalesCount int             `json:"today_sales_count"`
	TodayPurchases  decimal.Decimal `json:"today_purchases"`
	DateLabel       string          `json:"date_label"`
}

// SalesChartPointDTO ventas completadas de un día.
type SalesChartPointDTO struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// TopProductDTO variante más vendida.
type TopProductDTO struct {
	ProductID     string          `json:"product_id"`
	VariantID     string          `json:"variant_id"`
	ProductName   string          `json:"product_name"`
	VariantName   string          `json:"variant_name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// DashboardDataDTO respuesta agregada de GET /api/dashboard/data.
type DashboardDataDTO struct {
	Stats       DashboardStatsDTO    `json:"stats"`
	SalesChart  []SalesChartPointDTO `json:"sales_chart"`
	StockAlerts []StockAlertResponse `json:"stock_alerts"`
	TopProducts []TopProductDTO      `json:"top_products"`
}
