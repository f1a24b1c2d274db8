package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search      string // coincide con nombre, SKU o especificación
	Category    string
	StockStatus string // available | low | out (sobre alguna variante)
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID carga las variantes; devuelve nil, nil si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// Delete elimina el producto con sus variantes y movimientos.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// VariantRepository persistencia de variantes. El stock solo se escribe vía UpdateStock.
type VariantRepository interface {
	// Create inserta la variante; el stock inicial lo fija el motor de stock.
	Create(ctx context.Context, v *entity.Variant) error
	GetByID(ctx context.Context, id string) (*entity.Variant, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE). productID vacío no filtra por producto.
	GetForUpdate(ctx context.Context, productID, variantID string) (*entity.Variant, error)
	// Update actualiza datos de catálogo (especificación, SKU, precios, umbrales). Nunca el stock.
	Update(ctx context.Context, v *entity.Variant) error
	// UpdateStock escribe el stock si la versión coincide; si no, ErrConflict. Incrementa Version.
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
	// IsReferenced indica si alguna línea de venta o compra apunta a la variante.
	IsReferenced(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context) ([]*entity.Variant, error)
}
