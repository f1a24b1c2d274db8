package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/telemetry"
)

const movementListLimit = 100

// InventoryUseCase operaciones de inventario: movimientos manuales, ajustes y consultas.
// Las escrituras abren su propia transacción; las lecturas usan los repositorios fuera de ella.
type InventoryUseCase struct {
	tx     repository.TxRunner
	repos  repository.Repos
	engine *StockEngine
	pub    ports.EventPublisher
}

// NewInventoryUseCase construye el caso de uso. pub puede ser nil.
func NewInventoryUseCase(tx repository.TxRunner, repos repository.Repos, engine *StockEngine, pub ports.EventPublisher) *InventoryUseCase {
	return &InventoryUseCase{tx: tx, repos: repos, engine: engine, pub: pub}
}

// UpdateStock registra una entrada o salida manual.
func (uc *InventoryUseCase) UpdateStock(ctx context.Context, actorID string, in dto.UpdateStockRequest) (*dto.StockChangeResponse, error) {
	typ, err := entity.ParseMovementType(in.Type)
	if err != nil {
		return nil, err
	}
	if typ == entity.MovementTypeADJUSTMENT {
		return nil, fmt.Errorf("use adjust-stock para ajustes: %w", domain.ErrInvalidInput)
	}
	return uc.apply(ctx, MovementRequest{
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Type:      typ,
		Quantity:  in.Quantity,
		Note:      in.Notes,
		ActorID:   actorID,
	})
}

// AdjustStock fija el stock de una variante a un valor absoluto (conteo físico).
func (uc *InventoryUseCase) AdjustStock(ctx context.Context, actorID string, in dto.AdjustStockRequest) (*dto.StockChangeResponse, error) {
	return uc.apply(ctx, MovementRequest{
		ProductID:     in.ProductID,
		VariantID:     in.VariantID,
		Type:          entity.MovementTypeADJUSTMENT,
		Target:        in.NewStock,
		Note:          in.Reason,
		ReferenceType: entity.ReferenceAdjustment,
		ActorID:       actorID,
	})
}

func (uc *InventoryUseCase) apply(ctx context.Context, req MovementRequest) (*dto.StockChangeResponse, error) {
	start := time.Now()
	defer func() { telemetry.WorkflowLatency.WithLabelValues("inventory").Observe(time.Since(start).Seconds()) }()

	var (
		mov   *entity.InventoryMovement
		stock decimal.Decimal
	)
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		mov, err = uc.engine.ApplyMovement(ctx, r, req)
		if err != nil {
			return err
		}
		v, err := r.Variants.GetByID(ctx, req.VariantID)
		if err != nil {
			return err
		}
		stock = v.Stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	Committed(ctx, uc.pub, mov)

	resp := &dto.StockChangeResponse{VariantID: req.VariantID, Stock: stock, Changed: mov != nil}
	if mov != nil {
		resp.Movement = ToMovementResponse(mov, nil, nil)
	}
	return resp, nil
}

// Stats totales del inventario.
func (uc *InventoryUseCase) Stats(ctx context.Context) (*dto.InventoryStatsResponse, error) {
	sum, err := uc.repos.Reports.CatalogSummary(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InventoryStatsResponse{
		TotalItems:      sum.Variants,
		TotalValue:      sum.StockValue,
		LowStockItems:   sum.LowStock,
		OutOfStockItems: sum.OutOfStock,
	}, nil
}

// Alerts variantes con stock <= mínimo: primero agotadas, luego por stock ascendente.
func (uc *InventoryUseCase) Alerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	variants, err := uc.repos.Variants.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	out := make([]dto.StockAlertResponse, 0)
	for _, v := range variants {
		if v.Stock.GreaterThan(v.MinStock) {
			continue
		}
		if _, ok := names[v.ProductID]; !ok {
			p, err := uc.repos.Products.GetByID(ctx, v.ProductID)
			if err != nil {
				return nil, err
			}
			if p != nil {
				names[v.ProductID] = p.NameAr
			}
		}
		typ := "low_stock"
		if v.Stock.LessThanOrEqual(decimal.Zero) {
			typ = "out_of_stock"
		}
		out = append(out, dto.StockAlertResponse{
			ProductID:    v.ProductID,
			VariantID:    v.ID,
			Product:      names[v.ProductID],
			Variant:      v.Specification,
			SKU:          v.SKU,
			CurrentStock: v.Stock,
			MinStock:     v.MinStock,
			Type:         typ,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type == "out_of_stock"
		}
		return out[i].CurrentStock.LessThan(out[j].CurrentStock)
	})
	return out, nil
}

// Movements últimos movimientos (máx. 100), opcionalmente filtrados por producto/variante.
func (uc *InventoryUseCase) Movements(ctx context.Context, productID, variantID string) ([]dto.MovementResponse, error) {
	movs, err := uc.repos.Movements.List(ctx, repository.MovementFilter{
		ProductID: strings.TrimSpace(productID),
		VariantID: strings.TrimSpace(variantID),
		Limit:     movementListLimit,
	})
	if err != nil {
		return nil, err
	}
	products := map[string]*entity.Product{}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		p, err := uc.product(ctx, products, m.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, *ToMovementResponse(m, p, findVariant(p, m.VariantID)))
	}
	return out, nil
}

// Movement obtiene un movimiento por ID.
func (uc *InventoryUseCase) Movement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.repos.Movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.repos.Products.GetByID(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(m, p, findVariant(p, m.VariantID)), nil
}

// Reconcile compara el stock de la variante con la suma de su libro y verifica la cadena de movimientos.
func (uc *InventoryUseCase) Reconcile(ctx context.Context, variantID string) (*dto.ReconcileResponse, error) {
	var resp *dto.ReconcileResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		v, err := r.Variants.GetByID(ctx, variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrVariantNotFound
		}
		movs, err := r.Movements.ListByVariant(ctx, variantID)
		if err != nil {
			return err
		}
		sum, err := r.Movements.SumDelta(ctx, variantID)
		if err != nil {
			return err
		}
		resp = &dto.ReconcileResponse{
			VariantID:  variantID,
			Stock:      v.Stock,
			LedgerSum:  sum,
			Movements:  len(movs),
			Consistent: v.Stock.Equal(sum),
		}
		if _, err := inventory.Replay(movs); err != nil {
			resp.ChainBroken = true
			resp.ChainMessage = err.Error()
			resp.Consistent = false
		}
		return nil
	})
	return resp, err
}

func (uc *InventoryUseCase) product(ctx context.Context, cache map[string]*entity.Product, id string) (*entity.Product, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	p, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = p
	return p, nil
}

func findVariant(p *entity.Product, variantID string) *entity.Variant {
	if p == nil {
		return nil
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v
		}
	}
	return nil
}

// ToMovementResponse convierte un movimiento; p y v opcionales para los nombres.
func ToMovementResponse(m *entity.InventoryMovement, p *entity.Product, v *entity.Variant) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:            m.ID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		Notes:         m.Note,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		ProductID:     m.ProductID,
		VariantID:     m.VariantID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
	if p != nil {
		resp.ProductName = p.NameAr
	}
	if v != nil {
		resp.VariantName = v.Specification
	}
	return resp
}
