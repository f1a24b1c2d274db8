package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanySettings datos de la empresa usados en facturas y como tasa de impuesto de compras.
type CompanySettings struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	Email     string
	TaxRate   decimal.Decimal // porcentaje, ej. 10 = 10%
	Currency  string
	UpdatedAt time.Time
}

// DefaultCompanySettings valores usados cuando aún no hay configuración persistida.
func DefaultCompanySettings() *CompanySettings {
	return &CompanySettings{
		Name:     "William Metal",
		TaxRate:  decimal.NewFromInt(10),
		Currency: "MAD",
	}
}
