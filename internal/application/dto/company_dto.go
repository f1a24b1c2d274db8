package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdateCompanySettingsRequest body para PUT /api/settings/company. Campos nil no cambian.
type UpdateCompanySettingsRequest struct {
	Name     *string          `json:"name"`
	Address  *string          `json:"address"`
	Phone    *string          `json:"phone"`
	Email    *string          `json:"email"`
	TaxRate  *decimal.Decimal `json:"tax_rate"`
	Currency *string          `json:"currency"`
}

// CompanySettingsResponse configuración de la empresa.
type CompanySettingsResponse struct {
	Name      string          `json:"name"`
	Address   string          `json:"address,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Email     string          `json:"email,omitempty"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Currency  string          `json:"currency"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// InvoiceResponse vista de factura: venta más datos de la empresa.
type InvoiceResponse struct {
	Sale    SaleResponse            `json:"sale"`
	Company CompanySettingsResponse `json:"company"`
	TaxRate decimal.Decimal         `json:"tax_rate"` // tasa efectiva (tax / subtotal * 100)
}
