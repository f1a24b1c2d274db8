package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas del dashboard (solo lectura).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// SalesTotals suma las ventas COMPLETED en [from, to).
func (r *ReportRepo) SalesTotals(ctx context.Context, from, to *time.Time) (repository.Totals, error) {
	query := `
		SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sales
		WHERE status = 'COMPLETED'
		  AND ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)`
	return r.totals(ctx, "sales totals", query, from, to)
}

// PurchaseTotals suma todas las compras en [from, to).
func (r *ReportRepo) PurchaseTotals(ctx context.Context, from, to *time.Time) (repository.Totals, error) {
	query := `
		SELECT COALESCE(SUM(total), 0), COUNT(*) FROM purchases
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)`
	return r.totals(ctx, "purchase totals", query, from, to)
}

func (r *ReportRepo) totals(ctx context.Context, op, query string, from, to *time.Time) (repository.Totals, error) {
	var t repository.Totals
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&t.Amount, &t.Count); err != nil {
		return t, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// SalesByDay ventas COMPLETED agrupadas por día UTC, en orden ascendente.
func (r *ReportRepo) SalesByDay(ctx context.Context, from, to time.Time) ([]repository.DailySales, error) {
	query := `
		SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, SUM(total), COUNT(*)
		FROM sales
		WHERE status = 'COMPLETED' AND created_at >= $1 AND created_at < $2
		GROUP BY day ORDER BY day`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	defer rows.Close()
	var out []repository.DailySales
	for rows.Next() {
		var ds repository.DailySales
		var day time.Time
		if err := rows.Scan(&day, &ds.Amount, &ds.Count); err != nil {
			return nil, fmt.Errorf("scan sales by day: %w", err)
		}
		ds.Date = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		out = append(out, ds)
	}
	return out, rows.Err()
}

// TopProducts variantes más vendidas (por cantidad) en ventas COMPLETED.
func (r *ReportRepo) TopProducts(ctx context.Context, limit int) ([]repository.TopProductRow, error) {
	query := `
		SELECT si.product_id, si.variant_id, COALESCE(p.name_ar, ''), COALESCE(v.specification, ''),
		       SUM(si.quantity) AS qty, SUM(si.total_price)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id AND s.status = 'COMPLETED'
		LEFT JOIN product_variants v ON v.id = si.variant_id
		LEFT JOIN products p ON p.id = si.product_id
		GROUP BY si.product_id, si.variant_id, p.name_ar, v.specification
		ORDER BY qty DESC, si.variant_id
		LIMIT $1`
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	var out []repository.TopProductRow
	for rows.Next() {
		var row repository.TopProductRow
		if err := rows.Scan(&row.ProductID, &row.VariantID, &row.ProductName, &row.Specification, &row.Quantity, &row.Revenue); err != nil {
			return nil, fmt.Errorf("scan top products: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CatalogSummary conteos y valorización del catálogo.
func (r *ReportRepo) CatalogSummary(ctx context.Context) (repository.CatalogSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products),
			COUNT(*),
			COALESCE(SUM(stock * cost), 0),
			COUNT(*) FILTER (WHERE stock > 0 AND stock <= min_stock),
			COUNT(*) FILTER (WHERE stock <= 0)
		FROM product_variants`
	var sum repository.CatalogSummary
	err := r.q.QueryRow(ctx, query).Scan(&sum.Products, &sum.Variants, &sum.StockValue, &sum.LowStock, &sum.OutOfStock)
	if err != nil {
		return sum, fmt.Errorf("catalog summary: %w", err)
	}
	return sum, nil
}
