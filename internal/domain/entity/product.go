package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Umbrales por defecto de una variante nueva.
var (
	DefaultMinStock = decimal.NewFromInt(20)
	DefaultMaxStock = decimal.NewFromInt(200)
)

// Product representa un producto del catálogo (nombre árabe/francés, categoría) con sus variantes.
type Product struct {
	ID          string
	NameAr      string
	NameFr      string
	Category    string
	Description string
	Image       string
	Variants    []*Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant es la unidad vendible (medida/especificación concreta) que lleva el stock.
// Stock solo cambia a través del motor de stock; Version se incrementa en cada escritura de stock.
type Variant struct {
	ID            string
	ProductID     string
	Specification string
	SKU           string // único global
	Price         decimal.Decimal
	Cost          decimal.Decimal
	Stock         decimal.Decimal
	MinStock      decimal.Decimal
	MaxStock      decimal.Decimal
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockStatus clasifica el stock frente al mínimo: out (0), low (<= min) o available.
func (v *Variant) StockStatus() string {
	switch {
	case v.Stock.LessThanOrEqual(decimal.Zero):
		return StockStatusOut
	case v.Stock.LessThanOrEqual(v.MinStock):
		return StockStatusLow
	default:
		return StockStatusAvailable
	}
}

// Estados de stock usados en filtros y alertas.
const (
	StockStatusAvailable = "available"
	StockStatusLow       = "low"
	StockStatusOut       = "out"
)

// MatchesStockStatus aplica el filtro de estado de stock del listado:
// available = todas las variantes sobre el mínimo; low = alguna con 0 < stock <= min; out = alguna en 0.
func (p *Product) MatchesStockStatus(status string) bool {
	switch status {
	case StockStatusAvailable:
		for _, v := range p.Variants {
			if !v.Stock.GreaterThan(v.MinStock) {
				return false
			}
		}
		return true
	case StockStatusLow, StockStatusOut:
		for _, v := range p.Variants {
			if v.StockStatus() == status {
				return true
			}
		}
		return false
	default:
		return true
	}
}
