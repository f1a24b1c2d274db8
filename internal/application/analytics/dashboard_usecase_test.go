package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

type fakeReports struct {
	daily    []repository.DailySales
	top      []repository.TopProductRow
	summary  repository.CatalogSummary
	totals   repository.Totals
	err      error
	gotFrom  time.Time
	gotTo    time.Time
	gotLimit int
}

func (f *fakeReports) SalesTotals(context.Context, *time.Time, *time.Time) (repository.Totals, error) {
	return f.totals, f.err
}

func (f *fakeReports) PurchaseTotals(context.Context, *time.Time, *time.Time) (repository.Totals, error) {
	return f.totals, f.err
}

func (f *fakeReports) SalesByDay(_ context.Context, from, to time.Time) ([]repository.DailySales, error) {
	f.gotFrom, f.gotTo = from, to
	return f.daily, f.err
}

func (f *fakeReports) TopProducts(_ context.Context, limit int) ([]repository.TopProductRow, error) {
	f.gotLimit = limit
	return f.top, f.err
}

func (f *fakeReports) CatalogSummary(context.Context) (repository.CatalogSummary, error) {
	return f.summary, f.err
}

type fakeAlerts []dto.StockAlertResponse

func (a fakeAlerts) Alerts(context.Context) ([]dto.StockAlertResponse, error) { return a, nil }

func newTestUseCase(r *fakeReports) *DashboardUseCase {
	uc := NewDashboardUseCase(r, fakeAlerts{{VariantID: "v1", Type: "out_of_stock"}})
	uc.now = func() time.Time { return time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC) }
	return uc
}

func TestSalesChart_RellenaDiasVacios(t *testing.T) {
	r := &fakeReports{daily: []repository.DailySales{
		{Date: time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("120.456"), Count: 2},
		{Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(40), Count: 1},
	}}
	points, err := newTestUseCase(r).SalesChart(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, points, DefaultChartDays)
	assert.Equal(t, "2025-03-04", points[0].Date)
	assert.Equal(t, "2025-03-10", points[6].Date)
	assert.Equal(t, "120.46", points[4].Amount.StringFixed(2))
	assert.Equal(t, 2, points[4].Count)
	assert.True(t, points[5].Amount.IsZero())
	assert.Equal(t, 0, points[5].Count)
	assert.Equal(t, time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC), r.gotFrom)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), r.gotTo)
}

func TestSalesChart_LimiteDeDias(t *testing.T) {
	points, err := newTestUseCase(&fakeReports{}).SalesChart(context.Background(), 10_000)
	require.NoError(t, err)
	assert.Len(t, points, MaxChartDays)
}

func TestTopProducts_Limites(t *testing.T) {
	r := &fakeReports{top: []repository.TopProductRow{{ProductID: "p", VariantID: "v", ProductName: "Tôle", Specification: "2mm", Quantity: decimal.NewFromInt(9), Revenue: decimal.RequireFromString("99.999")}}}
	uc := newTestUseCase(r)

	rows, err := uc.TopProducts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopLimit, r.gotLimit)
	require.Len(t, rows, 1)
	assert.Equal(t, "2mm", rows[0].VariantName)
	assert.Equal(t, "100.00", rows[0].TotalRevenue.StringFixed(2))

	_, err = uc.TopProducts(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, MaxTopLimit, r.gotLimit)
}

func TestStats(t *testing.T) {
	r := &fakeReports{
		summary: repository.CatalogSummary{Products: 3, Variants: 5, StockValue: decimal.NewFromInt(900), LowStock: 2, OutOfStock: 1},
		totals:  repository.Totals{Amount: decimal.NewFromInt(250), Count: 4},
	}
	stats, err := newTestUseCase(r).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 5, stats.TotalVariants)
	assert.Equal(t, 3, stats.StockAlerts)
	assert.True(t, stats.TotalSales.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 4, stats.TodaySalesCount)
	assert.Equal(t, "Marzo 2025", stats.DateLabel)
}

func TestData_PropagaErrores(t *testing.T) {
	boom := errors.New("db caída")
	_, err := newTestUseCase(&fakeReports{err: boom}).Data(context.Background())
	assert.ErrorIs(t, err, boom)

	data, err := newTestUseCase(&fakeReports{}).Data(context.Background())
	require.NoError(t, err)
	assert.Len(t, data.SalesChart, DefaultChartDays)
	assert.Len(t, data.StockAlerts, 1)
}
