package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

const replenishmentSalesWindow = 500 // variantes consideradas del ranking de ventas

// ReplenishmentUseCase genera la lista de reposición: variantes en o bajo su mínimo,
// con la cantidad sugerida para volver al máximo.
type ReplenishmentUseCase struct {
	variants repository.VariantRepository
	products repository.ProductRepository
	reports  repository.ReportRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(repos repository.Repos) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{variants: repos.Variants, products: repos.Products, reports: repos.Reports}
}

// GenerateReplenishmentList ordena por unidades vendidas (más rotación primero) y luego por
// mayor déficit frente al mínimo. Priority 1 = más urgente.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	variants, err := uc.variants.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	top, err := uc.reports.TopProducts(ctx, replenishmentSalesWindow)
	if err != nil {
		return nil, err
	}
	sold := make(map[string]decimal.Decimal, len(top))
	for _, row := range top {
		sold[row.VariantID] = row.Quantity
	}

	names := map[string]string{}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, v := range variants {
		if v.Stock.GreaterThan(v.MinStock) {
			continue
		}
		if _, ok := names[v.ProductID]; !ok {
			p, err := uc.products.GetByID(ctx, v.ProductID)
			if err != nil {
				return nil, err
			}
			if p != nil {
				names[v.ProductID] = p.NameAr
			}
		}
		qty := v.MaxStock.Sub(v.Stock)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		units, ok := sold[v.ID]
		if !ok {
			units = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          v.ProductID,
			VariantID:          v.ID,
			SKU:                v.SKU,
			ProductName:        names[v.ProductID],
			Specification:      v.Specification,
			CurrentStock:       v.Stock,
			MinStock:           v.MinStock,
			MaxStock:           v.MaxStock,
			SuggestedOrderQty:  qty,
			UnitCost:           v.Cost,
			EstimatedOrderCost: qty.Mul(v.Cost),
			UnitsSold:          units,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.UnitsSold.Equal(b.UnitsSold) {
			return a.UnitsSold.GreaterThan(b.UnitsSold)
		}
		return a.MinStock.Sub(a.CurrentStock).GreaterThan(b.MinStock.Sub(b.CurrentStock))
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
