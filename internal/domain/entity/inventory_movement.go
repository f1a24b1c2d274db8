package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementTypeIN         MovementType = "IN"         // entrada
	MovementTypeOUT        MovementType = "OUT"        // salida
	MovementTypeADJUSTMENT MovementType = "ADJUSTMENT" // ajuste a valor absoluto
)

// ParseMovementType convierte texto libre en MovementType; falla con ErrInvalidStatus.
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT:
		return t, nil
	}
	return "", fmt.Errorf("tipo de movimiento %q: %w", s, domain.ErrInvalidStatus)
}

// Tipos de referencia de un movimiento.
const (
	ReferenceSale       = "SALE"
	ReferencePurchase   = "PURCHASE"
	ReferenceAdjustment = "ADJUSTMENT"
)

// InventoryMovement es una entrada inmutable del libro de movimientos.
// Quantity es siempre magnitud; la dirección la da Type, y para ADJUSTMENT
// la diferencia StockAfter - StockBefore.
type InventoryMovement struct {
	ID            string
	ProductID     string
	VariantID     string
	Type          MovementType
	Quantity      decimal.Decimal
	StockBefore   decimal.Decimal
	StockAfter    decimal.Decimal
	Note          string
	ReferenceType string
	ReferenceID   string
	CreatedAt     time.Time
	CreatedBy     string // vacío = anónimo/sistema
}

// Delta devuelve el cambio con signo que este movimiento aplicó al stock.
func (m *InventoryMovement) Delta() decimal.Decimal {
	return m.StockAfter.Sub(m.StockBefore)
}
