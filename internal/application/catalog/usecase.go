// Package catalog casos de uso del catálogo: productos, variantes, categorías y búsqueda.
// El stock de una variante nunca se escribe aquí; el stock inicial pasa por el motor de stock.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

const initialStockNote = "stock inicial"

// ProductUseCase CRUD de productos y variantes.
type ProductUseCase struct {
	tx     repository.TxRunner
	repos  repository.Repos
	engine *inventory.StockEngine
	pub    ports.EventPublisher
}

// NewProductUseCase construye el caso de uso. pub puede ser nil.
func NewProductUseCase(tx repository.TxRunner, repos repository.Repos, engine *inventory.StockEngine, pub ports.EventPublisher) *ProductUseCase {
	return &ProductUseCase{tx: tx, repos: repos, engine: engine, pub: pub}
}

// Create crea el producto con sus variantes en una sola transacción.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.NameAr = strings.TrimSpace(in.NameAr)
	in.Category = strings.TrimSpace(in.Category)
	if in.NameAr == "" || in.Category == "" {
		return nil, fmt.Errorf("nombre y categoría son obligatorios: %w", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:          uuid.New().String(),
		NameAr:      in.NameAr,
		NameFr:      strings.TrimSpace(in.NameFr),
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var movs []*entity.InventoryMovement
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		movs = movs[:0]
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		for _, vin := range in.Variants {
			_, mov, err := uc.addVariant(ctx, r, product, actorID, vin, now)
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.Committed(ctx, uc.pub, movs...)
	return uc.Get(ctx, product.ID)
}

// addVariant inserta la variante con stock 0 y, si hay stock inicial, lo registra como entrada.
func (uc *ProductUseCase) addVariant(ctx context.Context, r repository.Repos, p *entity.Product, actorID string, in dto.CreateVariantRequest, now time.Time) (*entity.Variant, *entity.InventoryMovement, error) {
	spec := strings.TrimSpace(in.Specification)
	if spec == "" {
		return nil, nil, fmt.Errorf("especificación obligatoria: %w", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return nil, nil, fmt.Errorf("precio y costo no pueden ser negativos: %w", domain.ErrInvalidInput)
	}
	if in.Stock.IsNegative() {
		return nil, nil, fmt.Errorf("stock inicial %s: %w", in.Stock, domain.ErrInvalidQuantity)
	}
	minStock, maxStock := entity.DefaultMinStock, entity.DefaultMaxStock
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	if in.MaxStock != nil {
		maxStock = *in.MaxStock
	}
	if err := validateThresholds(minStock, maxStock); err != nil {
		return nil, nil, err
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		sku = GenerateSKU(p.NameAr, spec, now)
	}
	v := &entity.Variant{
		ID:            uuid.New().String(),
		ProductID:     p.ID,
		Specification: spec,
		SKU:           sku,
		Price:         in.Price,
		Cost:          in.Cost,
		Stock:         decimal.Zero,
		MinStock:      minStock,
		MaxStock:      maxStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.Variants.Create(ctx, v); err != nil {
		return nil, nil, err
	}
	if !in.Stock.IsPositive() {
		return v, nil, nil
	}
	mov, err := uc.engine.ApplyMovement(ctx, r, inventory.MovementRequest{
		ProductID: p.ID,
		VariantID: v.ID,
		Type:      entity.MovementTypeIN,
		Quantity:  in.Stock,
		Note:      initialStockNote,
		ActorID:   actorID,
	})
	if err != nil {
		return nil, nil, err
	}
	v.Stock = mov.StockAfter
	v.Version++
	return v, mov, nil
}

func validateThresholds(minStock, maxStock decimal.Decimal) error {
	if minStock.IsNegative() || maxStock.IsNegative() {
		return fmt.Errorf("umbrales negativos: %w", domain.ErrInvalidInput)
	}
	if minStock.GreaterThan(maxStock) {
		return fmt.Errorf("stock mínimo %s mayor que máximo %s: %w", minStock, maxStock, domain.ErrInvalidInput)
	}
	return nil
}

// Get obtiene un producto con sus variantes.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(p), nil
}

// List lista productos por nombre con filtros de búsqueda, categoría y estado de stock.
func (uc *ProductUseCase) List(ctx context.Context, f dto.ProductFilter) ([]dto.ProductResponse, error) {
	status := strings.ToLower(strings.TrimSpace(f.StockStatus))
	switch status {
	case "", entity.StockStatusAvailable, entity.StockStatusLow, entity.StockStatusOut:
	default:
		return nil, fmt.Errorf("estado de stock %q: %w", f.StockStatus, domain.ErrInvalidInput)
	}
	products, err := uc.repos.Products.List(ctx, repository.ProductFilter{
		Search:      f.Search,
		Category:    strings.TrimSpace(f.Category),
		StockStatus: status,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *ToProductResponse(p))
	}
	return out, nil
}

// Search busca por nombre, categoría, SKU o especificación.
func (uc *ProductUseCase) Search(ctx context.Context, query string) ([]dto.ProductResponse, error) {
	if strings.TrimSpace(query) == "" {
		return []dto.ProductResponse{}, nil
	}
	return uc.List(ctx, dto.ProductFilter{Search: query})
}

// Categories categorías distintas en orden alfabético.
func (uc *ProductUseCase) Categories(ctx context.Context) ([]string, error) {
	cats, err := uc.repos.Products.Categories(ctx)
	if cats == nil {
		cats = []string{}
	}
	return cats, err
}

// Update actualiza los datos del producto (no variantes).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if in.NameAr != nil {
			if strings.TrimSpace(*in.NameAr) == "" {
				return fmt.Errorf("nombre vacío: %w", domain.ErrInvalidInput)
			}
			p.NameAr = strings.TrimSpace(*in.NameAr)
		}
		if in.NameFr != nil {
			p.NameFr = strings.TrimSpace(*in.NameFr)
		}
		if in.Category != nil {
			if strings.TrimSpace(*in.Category) == "" {
				return fmt.Errorf("categoría vacía: %w", domain.ErrInvalidInput)
			}
			p.Category = strings.TrimSpace(*in.Category)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Image != nil {
			p.Image = *in.Image
		}
		p.UpdatedAt = time.Now().UTC()
		return r.Products.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Delete elimina el producto si ninguna de sus variantes aparece en ventas o compras.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		for _, v := range p.Variants {
			used, err := r.Variants.IsReferenced(ctx, v.ID)
			if err != nil {
				return err
			}
			if used {
				return fmt.Errorf("la variante %s tiene ventas o compras: %w", v.SKU, domain.ErrConflict)
			}
		}
		return r.Products.Delete(ctx, id)
	})
}

// AddVariant agrega una variante a un producto existente.
func (uc *ProductUseCase) AddVariant(ctx context.Context, actorID, productID string, in dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	var (
		v   *entity.Variant
		mov *entity.InventoryMovement
	)
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		v, mov, err = uc.addVariant(ctx, r, p, actorID, in, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	inventory.Committed(ctx, uc.pub, mov)
	return ToVariantResponse(v), nil
}

// UpdateVariant actualiza datos de catálogo de la variante. El stock no cambia.
func (uc *ProductUseCase) UpdateVariant(ctx context.Context, productID, variantID string, in dto.UpdateVariantRequest) (*dto.VariantResponse, error) {
	var v *entity.Variant
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		v, err = r.Variants.GetForUpdate(ctx, productID, variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrVariantNotFound
		}
		if in.Specification != nil {
			if strings.TrimSpace(*in.Specification) == "" {
				return fmt.Errorf("especificación vacía: %w", domain.ErrInvalidInput)
			}
			v.Specification = strings.TrimSpace(*in.Specification)
		}
		if in.SKU != nil {
			if strings.TrimSpace(*in.SKU) == "" {
				return fmt.Errorf("SKU vacío: %w", domain.ErrInvalidInput)
			}
			v.SKU = strings.TrimSpace(*in.SKU)
		}
		if in.Price != nil {
			v.Price = *in.Price
		}
		if in.Cost != nil {
			v.Cost = *in.Cost
		}
		if in.MinStock != nil {
			v.MinStock = *in.MinStock
		}
		if in.MaxStock != nil {
			v.MaxStock = *in.MaxStock
		}
		if v.Price.IsNegative() || v.Cost.IsNegative() {
			return fmt.Errorf("precio y costo no pueden ser negativos: %w", domain.ErrInvalidInput)
		}
		if err := validateThresholds(v.MinStock, v.MaxStock); err != nil {
			return err
		}
		v.UpdatedAt = time.Now().UTC()
		return r.Variants.Update(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return ToVariantResponse(v), nil
}

// DeleteVariant elimina la variante (y su libro) si no aparece en ventas ni compras.
func (uc *ProductUseCase) DeleteVariant(ctx context.Context, productID, variantID string) error {
	return uc.tx.Run(ctx, func(r repository.Repos) error {
		v, err := r.Variants.GetForUpdate(ctx, productID, variantID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrVariantNotFound
		}
		used, err := r.Variants.IsReferenced(ctx, variantID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("la variante %s tiene ventas o compras: %w", v.SKU, domain.ErrConflict)
		}
		return r.Variants.Delete(ctx, variantID)
	})
}

// ToProductResponse convierte un producto con variantes.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID,
		NameAr:      p.NameAr,
		NameFr:      p.NameFr,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
		Variants:    make([]dto.VariantResponse, 0, len(p.Variants)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, v := range p.Variants {
		resp.Variants = append(resp.Variants, *ToVariantResponse(v))
	}
	return resp
}

// ToVariantResponse convierte una variante.
func ToVariantResponse(v *entity.Variant) *dto.VariantResponse {
	return &dto.VariantResponse{
		ID:            v.ID,
		ProductID:     v.ProductID,
		Specification: v.Specification,
		SKU:           v.SKU,
		Price:         v.Price,
		Cost:          v.Cost,
		Stock:         v.Stock,
		MinStock:      v.MinStock,
		MaxStock:      v.MaxStock,
		StockStatus:   v.StockStatus(),
	}
}
