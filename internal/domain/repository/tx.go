package repository

import "context"

// Repos agrupa los repositorios ligados a una misma transacción (o al pool fuera de ella).
type Repos struct {
	Products  ProductRepository
	Variants  VariantRepository
	Movements InventoryMovementRepository
	Sales     SaleRepository
	Customers CustomerRepository
	Purchases PurchaseRepository
	Suppliers SupplierRepository
	Sequences SequenceRepository
	Settings  SettingsRepository
	Users     UserRepository
	Reports   ReportRepository
}

// TxRunner ejecuta fn dentro de una transacción: commit si fn devuelve nil, rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
