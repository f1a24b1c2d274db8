package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// SumDeltas suma los cambios con signo de una lista de movimientos.
func SumDeltas(movements []*entity.InventoryMovement) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range movements {
		sum = sum.Add(m.Delta())
	}
	return sum
}

// Replay recorre los movimientos en orden cronológico y verifica que cada uno
// parta del stock en que terminó el anterior. Devuelve el stock final.
func Replay(movements []*entity.InventoryMovement) (decimal.Decimal, error) {
	stock := decimal.Zero
	for i, m := range movements {
		if !m.StockBefore.Equal(stock) {
			return stock, fmt.Errorf("movimiento %d (%s): stock previo %s, esperado %s", i, m.ID, m.StockBefore, stock)
		}
		stock = m.StockAfter
	}
	return stock, nil
}
