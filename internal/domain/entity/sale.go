package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
)

// SaleStatus estado de una venta.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// ParseSaleStatus convierte texto libre en SaleStatus; falla con ErrInvalidStatus.
func ParseSaleStatus(s string) (SaleStatus, error) {
	switch st := SaleStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("estado de venta %q: %w", s, domain.ErrInvalidStatus)
}

// HoldsStock indica si una venta en este estado mantiene descontado su stock.
func (s SaleStatus) HoldsStock() bool {
	return s == SaleStatusPending || s == SaleStatusCompleted
}

// PaymentMethod forma de pago de una venta.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCredit PaymentMethod = "CREDIT"
	PaymentMethodCheck  PaymentMethod = "CHECK"
)

// ParsePaymentMethod convierte texto libre en PaymentMethod; falla con ErrInvalidStatus.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentMethodCash, PaymentMethodCredit, PaymentMethodCheck:
		return m, nil
	}
	return "", fmt.Errorf("método de pago %q: %w", s, domain.ErrInvalidStatus)
}

// Sale cabecera de venta. Totales calculados una vez al crear.
type Sale struct {
	ID            string
	InvoiceNumber string
	CustomerID    string
	Customer      *Customer
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Status        SaleStatus
	Items         []*SaleItem
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem línea de venta con precio desnormalizado.
type SaleItem struct {
	ID         string
	SaleID     string
	ProductID  string
	VariantID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}
