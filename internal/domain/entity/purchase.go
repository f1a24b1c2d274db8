package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
)

// PaymentStatus estado de pago de una compra.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
)

// ParsePaymentStatus convierte texto libre en PaymentStatus; falla con ErrInvalidStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusPartial:
		return st, nil
	}
	return "", fmt.Errorf("estado de pago %q: %w", s, domain.ErrInvalidStatus)
}

// DeliveryStatus estado de entrega de una compra.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusPartial   DeliveryStatus = "PARTIAL"
)

// ParseDeliveryStatus convierte texto libre en DeliveryStatus; falla con ErrInvalidStatus.
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch st := DeliveryStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case DeliveryStatusPending, DeliveryStatusDelivered, DeliveryStatusPartial:
		return st, nil
	}
	return "", fmt.Errorf("estado de entrega %q: %w", s, domain.ErrInvalidStatus)
}

// CreditsStock indica si una compra en este estado de entrega ya acreditó su stock.
func (s DeliveryStatus) CreditsStock() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusPartial
}

// Purchase cabecera de compra a proveedor.
type Purchase struct {
	ID             string
	PurchaseNumber string
	SupplierID     string
	Supplier       *Supplier
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
	Items          []*PurchaseItem
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PurchaseItem línea de compra con costo desnormalizado.
type PurchaseItem struct {
	ID         string
	PurchaseID string
	ProductID  string
	VariantID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
}
