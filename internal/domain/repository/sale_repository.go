package repository

import (
	"context"
	"time"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	Search string // número de factura o nombre de cliente
	From   *time.Time
	To     *time.Time
	Status entity.SaleStatus
	Limit  int
}

// SaleRepository persistencia de ventas con sus líneas.
type SaleRepository interface {
	// Create inserta cabecera y líneas.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID carga líneas y cliente; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate como GetByID pero bloqueando la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
	UpdateStatus(ctx context.Context, id string, status entity.SaleStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// CustomerRepository persistencia de clientes.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	FindByNameAndPhone(ctx context.Context, name, phone string) (*entity.Customer, error)
	List(ctx context.Context, search string, limit int) ([]*entity.Customer, error)
}
