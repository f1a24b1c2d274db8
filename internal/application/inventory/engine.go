package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/telemetry"
)

// MovementRequest movimiento solicitado al motor.
// Quantity aplica a IN/OUT; Target es el stock absoluto deseado en ADJUSTMENT.
type MovementRequest struct {
	ProductID     string // opcional; si viene, la variante debe pertenecer al producto
	VariantID     string
	Type          entity.MovementType
	Quantity      decimal.Decimal
	Target        decimal.Decimal
	Note          string
	ReferenceType string
	ReferenceID   string
	ActorID       string
}

// VariantKey identifica una variante a bloquear.
type VariantKey struct {
	ProductID string
	VariantID string
}

// StockEngine aplica movimientos de stock dentro de la transacción del llamador:
// bloquea la variante, valida la regla del tipo, escribe el nuevo stock con control
// de versión y agrega el movimiento al libro.
type StockEngine struct {
	now func() time.Time
}

// NewStockEngine construye el motor.
func NewStockEngine() *StockEngine {
	return &StockEngine{now: func() time.Time { return time.Now().UTC() }}
}

// ApplyMovement aplica un movimiento usando los repositorios de la transacción en curso.
// Devuelve nil, nil para un ajuste sin diferencia (no se escribe nada).
func (e *StockEngine) ApplyMovement(ctx context.Context, r repository.Repos, req MovementRequest) (*entity.InventoryMovement, error) {
	ctx, span := telemetry.StartSpan(ctx, "inventory.ApplyMovement")
	defer span.End()
	span.SetAttributes(
		attribute.String("variant.id", req.VariantID),
		attribute.String("movement.type", string(req.Type)),
	)

	if req.VariantID == "" {
		return nil, fmt.Errorf("variante requerida: %w", domain.ErrInvalidInput)
	}

	// Bloquea la fila de la variante (SELECT FOR UPDATE) hasta el fin de la transacción
	v, err := r.Variants.GetForUpdate(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		reject(domain.ErrVariantNotFound)
		return nil, fmt.Errorf("variante %s: %w", req.VariantID, domain.ErrVariantNotFound)
	}

	amount := req.Quantity
	if req.Type == entity.MovementTypeADJUSTMENT {
		amount = req.Target
	}
	out, err := inventory.Apply(req.Type, v.Stock, amount)
	if err != nil {
		reject(err)
		span.RecordError(err)
		return nil, fmt.Errorf("variante %s: %w", v.SKU, err)
	}
	if out.NoOp {
		return nil, nil
	}

	if err := r.Variants.UpdateStock(ctx, v.ID, out.After, v.Version); err != nil {
		reject(err)
		return nil, err
	}

	mov := &entity.InventoryMovement{
		ID:            uuid.New().String(),
		ProductID:     v.ProductID,
		VariantID:     v.ID,
		Type:          req.Type,
		Quantity:      out.Quantity,
		StockBefore:   out.Before,
		StockAfter:    out.After,
		Note:          req.Note,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		CreatedAt:     e.now(),
		CreatedBy:     req.ActorID,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// LockVariants bloquea un conjunto de variantes en orden de ID. Los flujos de varias
// líneas lo llaman antes de aplicar movimientos para que dos transacciones concurrentes
// tomen los bloqueos en el mismo orden. Devuelve las variantes bloqueadas por ID.
func (e *StockEngine) LockVariants(ctx context.Context, r repository.Repos, keys []VariantKey) (map[string]*entity.Variant, error) {
	sorted := make([]VariantKey, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k.VariantID] {
			seen[k.VariantID] = true
			sorted = append(sorted, k)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VariantID < sorted[j].VariantID })

	locked := make(map[string]*entity.Variant, len(sorted))
	for _, k := range sorted {
		v, err := r.Variants.GetForUpdate(ctx, k.ProductID, k.VariantID)
		if err != nil {
			return nil, err
		}
		if v == nil {
			reject(domain.ErrVariantNotFound)
			return nil, fmt.Errorf("variante %s: %w", k.VariantID, domain.ErrVariantNotFound)
		}
		locked[v.ID] = v
	}
	return locked, nil
}

func reject(err error) {
	telemetry.StockRejectionsTotal.WithLabelValues(rejectReason(err)).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "version_conflict"
	default:
		return "other"
	}
}
