package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// Outcome resultado de aplicar un movimiento sobre un stock.
type Outcome struct {
	Before   decimal.Decimal
	After    decimal.Decimal
	Quantity decimal.Decimal // magnitud registrada en el libro
	NoOp     bool            // ajuste sin diferencia: no se escribe nada
}

// Apply calcula el nuevo stock según el tipo de movimiento (servicio de dominio).
// Para IN/OUT amount es la cantidad; para ADJUSTMENT es el valor absoluto objetivo.
//
//	IN:         stock' = stock + amount
//	OUT:        stock' = stock - amount, falla si amount > stock
//	ADJUSTMENT: stock' = amount, cantidad registrada = |amount - stock|
func Apply(t entity.MovementType, stock, amount decimal.Decimal) (Outcome, error) {
	switch t {
	case entity.MovementTypeIN:
		if !amount.IsPositive() {
			return Outcome{}, fmt.Errorf("entrada de %s: %w", amount, domain.ErrInvalidQuantity)
		}
		return Outcome{Before: stock, After: stock.Add(amount), Quantity: amount}, nil
	case entity.MovementTypeOUT:
		if !amount.IsPositive() {
			return Outcome{}, fmt.Errorf("salida de %s: %w", amount, domain.ErrInvalidQuantity)
		}
		if stock.LessThan(amount) {
			return Outcome{}, fmt.Errorf("disponible %s, solicitado %s: %w", stock, amount, domain.ErrInsufficientStock)
		}
		return Outcome{Before: stock, After: stock.Sub(amount), Quantity: amount}, nil
	case entity.MovementTypeADJUSTMENT:
		if amount.IsNegative() {
			return Outcome{}, fmt.Errorf("ajuste a %s: %w", amount, domain.ErrInvalidQuantity)
		}
		delta := amount.Sub(stock)
		return Outcome{Before: stock, After: amount, Quantity: delta.Abs(), NoOp: delta.IsZero()}, nil
	default:
		return Outcome{}, fmt.Errorf("tipo de movimiento %q: %w", t, domain.ErrInvalidStatus)
	}
}
