package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// MovementFilter filtros del listado de movimientos (más recientes primero).
type MovementFilter struct {
	ProductID string
	VariantID string
	Limit     int
}

// InventoryMovementRepository define el puerto del libro de movimientos (solo inserción).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	List(ctx context.Context, f MovementFilter) ([]*entity.InventoryMovement, error)
	// ListByVariant devuelve todos los movimientos de la variante en orden cronológico.
	ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryMovement, error)
	// SumDelta suma (stock_after - stock_before) de todos los movimientos de la variante.
	SumDelta(ctx context.Context, variantID string) (decimal.Decimal, error)
}
