package entity

import "time"

// Customer representa un cliente de ventas.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Supplier representa un proveedor de compras.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	Phone     string
	Address   string
	CreatedAt time.Time
}
