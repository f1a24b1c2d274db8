package repository

import (
	"context"
	"time"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// PurchaseFilter filtros del listado de compras.
type PurchaseFilter struct {
	Search         string // número de compra o nombre de proveedor
	From           *time.Time
	To             *time.Time
	PaymentStatus  entity.PaymentStatus
	DeliveryStatus entity.DeliveryStatus
	Limit          int
}

// PurchaseRepository persistencia de compras con sus líneas.
type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	List(ctx context.Context, f PurchaseFilter) ([]*entity.Purchase, error)
	UpdateStatus(ctx context.Context, id string, payment entity.PaymentStatus, delivery entity.DeliveryStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// SupplierRepository persistencia de proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	FindByNameAndPhone(ctx context.Context, name, phone string) (*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	List(ctx context.Context, search string, limit int) ([]*entity.Supplier, error)
}
