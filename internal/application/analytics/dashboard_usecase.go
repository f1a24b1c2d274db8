// Package analytics contiene los casos de uso del dashboard: totales, gráfico de ventas,
// productos más vendidos y alertas de stock.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

const (
	DefaultChartDays = 7
	MaxChartDays     = 365
	DefaultTopLimit  = 5
	MaxTopLimit      = 50
)

// AlertSource alertas de stock ya ordenadas (implementado por inventory.InventoryUseCase).
type AlertSource interface {
	Alerts(ctx context.Context) ([]dto.StockAlertResponse, error)
}

// DashboardUseCase genera los indicadores del dashboard.
//
// Fuente de datos: ReportRepository (consultas read-only).
type DashboardUseCase struct {
	reports repository.ReportRepository
	alerts  AlertSource
	now     func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reports repository.ReportRepository, alerts AlertSource) *DashboardUseCase {
	return &DashboardUseCase{reports: reports, alerts: alerts, now: func() time.Time { return time.Now().UTC() }}
}

// Stats totales generales y del día. Solo cuentan ventas COMPLETED.
//
// Cinco consultas en paralelo: catálogo, ventas y compras históricas, ventas y compras de hoy.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayEnd := todayStart.AddDate(0, 0, 1)

	type totalsResult struct {
		totals repository.Totals
		err    error
	}
	type catalogResult struct {
		summary repository.CatalogSummary
		err     error
	}

	catalogCh := make(chan catalogResult, 1)
	salesCh := make(chan totalsResult, 1)
	purchasesCh := make(chan totalsResult, 1)
	todaySalesCh := make(chan totalsResult, 1)
	todayPurchasesCh := make(chan totalsResult, 1)

	go func() {
		s, err := uc.reports.CatalogSummary(ctx)
		catalogCh <- catalogResult{s, err}
	}()
	go func() {
		t, err := uc.reports.SalesTotals(ctx, nil, nil)
		salesCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.reports.PurchaseTotals(ctx, nil, nil)
		purchasesCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.reports.SalesTotals(ctx, &todayStart, &todayEnd)
		todaySalesCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.reports.PurchaseTotals(ctx, &todayStart, &todayEnd)
		todayPurchasesCh <- totalsResult{t, err}
	}()

	catalog := <-catalogCh
	sales := <-salesCh
	purchases := <-purchasesCh
	todaySales := <-todaySalesCh
	todayPurchases := <-todayPurchasesCh

	switch {
	case catalog.err != nil:
		return nil, fmt.Errorf("dashboard: catálogo: %w", catalog.err)
	case sales.err != nil:
		return nil, fmt.Errorf("dashboard: ventas: %w", sales.err)
	case purchases.err != nil:
		return nil, fmt.Errorf("dashboard: compras: %w", purchases.err)
	case todaySales.err != nil:
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", todaySales.err)
	case todayPurchases.err != nil:
		return nil, fmt.Errorf("dashboard: compras de hoy: %w", todayPurchases.err)
	}

	return &dto.DashboardStatsDTO{
		TotalProducts:   catalog.summary.Products,
		TotalVariants:   catalog.summary.Variants,
		TotalStockValue: catalog.summary.StockValue.Round(2),
		TotalSales:      sales.totals.Amount.Round(2),
		TotalPurchases:  purchases.totals.Amount.Round(2),
		StockAlerts:     catalog.summary.LowStock + catalog.summary.OutOfStock,
		TodaySales:      todaySales.totals.Amount.Round(2),
		TodaySalesCount: todaySales.totals.Count,
		TodayPurchases:  todayPurchases.totals.Amount.Round(2),
		DateLabel:       monthLabel(now),
	}, nil
}

// SalesChart ventas completadas por día de los últimos days días (incluido hoy).
// Los días sin ventas aparecen con monto cero.
func (uc *DashboardUseCase) SalesChart(ctx context.Context, days int) ([]dto.SalesChartPointDTO, error) {
	if days <= 0 {
		days = DefaultChartDays
	}
	if days > MaxChartDays {
		days = MaxChartDays
	}
	now := uc.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	rows, err := uc.reports.SalesByDay(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("dashboard: gráfico de ventas: %w", err)
	}
	byDay := make(map[string]repository.DailySales, len(rows))
	for _, r := range rows {
		byDay[r.Date.Format(time.DateOnly)] = r
	}
	out := make([]dto.SalesChartPointDTO, 0, days)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		p := dto.SalesChartPointDTO{Date: key, Amount: decimal.Zero}
		if r, ok := byDay[key]; ok {
			p.Amount = r.Amount.Round(2)
			p.Count = r.Count
		}
		out = append(out, p)
	}
	return out, nil
}

// TopProducts variantes más vendidas por cantidad.
func (uc *DashboardUseCase) TopProducts(ctx context.Context, limit int) ([]dto.TopProductDTO, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}
	rows, err := uc.reports.TopProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", err)
	}
	out := make([]dto.TopProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductDTO{
			ProductID:     r.ProductID,
			VariantID:     r.VariantID,
			ProductName:   r.ProductName,
			VariantName:   r.Specification,
			TotalQuantity: r.Quantity,
			TotalRevenue:  r.Revenue.Round(2),
		})
	}
	return out, nil
}

// StockAlerts alertas de stock bajo y agotado.
func (uc *DashboardUseCase) StockAlerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	return uc.alerts.Alerts(ctx)
}

// Data todos los widgets del dashboard en una sola respuesta.
func (uc *DashboardUseCase) Data(ctx context.Context) (*dto.DashboardDataDTO, error) {
	type chartResult struct {
		points []dto.SalesChartPointDTO
		err    error
	}
	type topResult struct {
		rows []dto.TopProductDTO
		err  error
	}
	type alertsResult struct {
		alerts []dto.StockAlertResponse
		err    error
	}

	chartCh := make(chan chartResult, 1)
	topCh := make(chan topResult, 1)
	alertsCh := make(chan alertsResult, 1)

	go func() {
		p, err := uc.SalesChart(ctx, DefaultChartDays)
		chartCh <- chartResult{p, err}
	}()
	go func() {
		r, err := uc.TopProducts(ctx, DefaultTopLimit)
		topCh <- topResult{r, err}
	}()
	go func() {
		a, err := uc.StockAlerts(ctx)
		alertsCh <- alertsResult{a, err}
	}()

	stats, statsErr := uc.Stats(ctx)
	chart := <-chartCh
	top := <-topCh
	alerts := <-alertsCh

	switch {
	case statsErr != nil:
		return nil, statsErr
	case chart.err != nil:
		return nil, chart.err
	case top.err != nil:
		return nil, top.err
	case alerts.err != nil:
		return nil, alerts.err
	}
	return &dto.DashboardDataDTO{
		Stats:       *stats,
		SalesChart:  chart.points,
		StockAlerts: alerts.alerts,
		TopProducts: top.rows,
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
