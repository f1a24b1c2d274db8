package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

type reportRepo struct{ with access }

var _ repository.ReportRepository = (*reportRepo)(nil)

func (r *reportRepo) SalesTotals(_ context.Context, from, to *time.Time) (repository.Totals, error) {
	t := repository.Totals{Amount: decimal.Zero}
	err := r.with(func(st *state) error {
		for _, s := range st.sales {
			if s.Status == entity.SaleStatusCompleted && inRange(s.CreatedAt, from, to) {
				t.Amount = t.Amount.Add(s.Total)
				t.Count++
			}
		}
		return nil
	})
	return t, err
}

func (r *reportRepo) PurchaseTotals(_ context.Context, from, to *time.Time) (repository.Totals, error) {
	t := repository.Totals{Amount: decimal.Zero}
	err := r.with(func(st *state) error {
		for _, p := range st.purchases {
			if inRange(p.CreatedAt, from, to) {
				t.Amount = t.Amount.Add(p.Total)
				t.Count++
			}
		}
		return nil
	})
	return t, err
}

func (r *reportRepo) SalesByDay(_ context.Context, from, to time.Time) ([]repository.DailySales, error) {
	byDay := map[time.Time]*repository.DailySales{}
	err := r.with(func(st *state) error {
		for _, s := range st.sales {
			if s.Status != entity.SaleStatusCompleted || !inRange(s.CreatedAt, &from, &to) {
				continue
			}
			ct := s.CreatedAt.UTC()
			day := time.Date(ct.Year(), ct.Month(), ct.Day(), 0, 0, 0, 0, time.UTC)
			ds, ok := byDay[day]
			if !ok {
				ds = &repository.DailySales{Date: day, Amount: decimal.Zero}
				byDay[day] = ds
			}
			ds.Amount = ds.Amount.Add(s.Total)
			ds.Count++
		}
		return nil
	})
	out := make([]repository.DailySales, 0, len(byDay))
	for _, ds := range byDay {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, err
}

func (r *reportRepo) TopProducts(_ context.Context, limit int) ([]repository.TopProductRow, error) {
	rows := map[string]*repository.TopProductRow{}
	err := r.with(func(st *state) error {
		for _, s := range st.sales {
			if s.Status != entity.SaleStatusCompleted {
				continue
			}
			for _, it := range s.Items {
				row, ok := rows[it.VariantID]
				if !ok {
					row = &repository.TopProductRow{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: decimal.Zero, Revenue: decimal.Zero}
					if p, ok := st.products[it.ProductID]; ok {
						row.ProductName = p.NameAr
					}
					if v, ok := st.variants[it.VariantID]; ok {
						row.Specification = v.Specification
					}
					rows[it.VariantID] = row
				}
				row.Quantity = row.Quantity.Add(it.Quantity)
				row.Revenue = row.Revenue.Add(it.TotalPrice)
			}
		}
		return nil
	})
	out := make([]repository.TopProductRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].VariantID < out[j].VariantID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *reportRepo) CatalogSummary(_ context.Context) (repository.CatalogSummary, error) {
	sum := repository.CatalogSummary{StockValue: decimal.Zero}
	err := r.with(func(st *state) error {
		sum.Products = len(st.products)
		sum.Variants = len(st.variants)
		for _, v := range st.variants {
			sum.StockValue = sum.StockValue.Add(v.Stock.Mul(v.Cost))
			switch v.StockStatus() {
			case entity.StockStatusOut:
				sum.OutOfStock++
			case entity.StockStatusLow:
				sum.LowStock++
			}
		}
		return nil
	})
	return sum, err
}
