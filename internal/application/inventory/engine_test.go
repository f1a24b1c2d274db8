package inventory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	domaininv "github.com/MRD-HG/WilliamMetalAPI/internal/domain/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/memory"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// seedVariant crea un producto con una variante y, si stock > 0, su entrada inicial.
func seedVariant(t *testing.T, store *memory.Store, engine *inventory.StockEngine, stock int64) *entity.Variant {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	p := &entity.Product{ID: uuid.New().String(), NameAr: "Tôle", Category: "tôles", CreatedAt: now, UpdatedAt: now}
	v := &entity.Variant{
		ID: uuid.New().String(), ProductID: p.ID, Specification: "2mm", SKU: "TOL-" + uuid.New().String()[:8],
		Price: dec(100), Cost: dec(60), MinStock: dec(5), MaxStock: dec(50), CreatedAt: now, UpdatedAt: now,
	}
	err := store.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.Create(ctx, p); err != nil {
			return err
		}
		if err := r.Variants.Create(ctx, v); err != nil {
			return err
		}
		if stock > 0 {
			_, err := engine.ApplyMovement(ctx, r, inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeIN, Quantity: dec(stock)})
			return err
		}
		return nil
	})
	require.NoError(t, err)
	return v
}

func apply(t *testing.T, store *memory.Store, engine *inventory.StockEngine, req inventory.MovementRequest) (*entity.InventoryMovement, error) {
	t.Helper()
	var mov *entity.InventoryMovement
	err := store.Run(context.Background(), func(r repository.Repos) error {
		var err error
		mov, err = engine.ApplyMovement(context.Background(), r, req)
		return err
	})
	return mov, err
}

func stockOf(t *testing.T, store *memory.Store, id string) decimal.Decimal {
	t.Helper()
	v, err := store.Repos().Variants.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, v)
	return v.Stock
}

func TestApplyMovement_TiposDeMovimiento(t *testing.T) {
	store, engine := memory.New(), inventory.NewStockEngine()
	v := seedVariant(t, store, engine, 10)

	mov, err := apply(t, store, engine, inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeOUT, Quantity: dec(3), ActorID: "u1"})
	require.NoError(t, err)
	assert.True(t, mov.StockBefore.Equal(dec(10)))
	assert.True(t, mov.StockAfter.Equal(dec(7)))
	assert.Equal(t, "u1", mov.CreatedBy)

	mov, err = apply(t, store, engine, inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeIN, Quantity: dec(5)})
	require.NoError(t, err)
	assert.True(t, mov.StockAfter.Equal(dec(12)))

	mov, err = apply(t, store, engine, inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeADJUSTMENT, Target: dec(4)})
	require.NoError(t, err)
	assert.True(t, mov.Quantity.Equal(dec(8)), "el libro guarda la magnitud del ajuste")
	assert.True(t, mov.StockAfter.Equal(dec(4)))
	assert.True(t, stockOf(t, store, v.ID).Equal(dec(4)))
}

func TestApplyMovement_AjusteSinCambioNoEscribe(t *testing.T) {
	store, engine := memory.New(), inventory.NewStockEngine()
	v := seedVariant(t, store, engine, 6)

	mov, err := apply(t, store, engine, inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeADJUSTMENT, Target: dec(6)})
	require.NoError(t, err)
	assert.Nil(t, mov)

	movs, err := store.Repos().Movements.ListByVariant(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "solo la entrada inicial")
}

func TestApplyMovement_Errores(t *testing.T) {
	store, engine := memory.New(), inventory.NewStockEngine()
	v := seedVariant(t, store, engine, 2)
	other := seedVariant(t, store, engine, 0)

	tests := []struct {
		name string
		req  inventory.MovementRequest
		want error
	}{
		{"salida mayor al stock", inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeOUT, Quantity: dec(3)}, domain.ErrInsufficientStock},
		{"cantidad cero", inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeIN, Quantity: decimal.Zero}, domain.ErrInvalidQuantity},
		{"cantidad negativa", inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeOUT, Quantity: dec(-1)}, domain.ErrInvalidQuantity},
		{"ajuste negativo", inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeADJUSTMENT, Target: dec(-1)}, domain.ErrInvalidQuantity},
		{"variante inexistente", inventory.MovementRequest{VariantID: "nope", Type: entity.MovementTypeIN, Quantity: dec(1)}, domain.ErrNotFound},
		{"variante de otro producto", inventory.MovementRequest{ProductID: other.ProductID, VariantID: v.ID, Type: entity.MovementTypeIN, Quantity: dec(1)}, domain.ErrNotFound},
		{"sin variante", inventory.MovementRequest{Type: entity.MovementTypeIN, Quantity: dec(1)}, domain.ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := apply(t, store, engine, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, stockOf(t, store, v.ID).Equal(dec(2)), "un rechazo no modifica el stock")
		})
	}
}

func TestApplyMovement_LibroCuadraConStock(t *testing.T) {
	store, engine := memory.New(), inventory.NewStockEngine()
	v := seedVariant(t, store, engine, 20)

	steps := []inventory.MovementRequest{
		{VariantID: v.ID, Type: entity.MovementTypeOUT, Quantity: dec(7)},
		{VariantID: v.ID, Type: entity.MovementTypeIN, Quantity: dec(3)},
		{VariantID: v.ID, Type: entity.MovementTypeADJUSTMENT, Target: dec(30)},
		{VariantID: v.ID, Type: entity.MovementTypeOUT, Quantity: dec(30)},
	}
	for _, s := range steps {
		_, err := apply(t, store, engine, s)
		require.NoError(t, err)
	}

	movs, err := store.Repos().Movements.ListByVariant(context.Background(), v.ID)
	require.NoError(t, err)
	final, err := domaininv.Replay(movs)
	require.NoError(t, err)
	assert.True(t, final.Equal(stockOf(t, store, v.ID)))
	assert.True(t, domaininv.SumDeltas(movs).Equal(decimal.Zero))
}

func TestApplyMovement_ConcurrenciaNoSobrevende(t *testing.T) {
	store, engine := memory.New(), inventory.NewStockEngine()
	v := seedVariant(t, store, engine, 20)

	var ok, rejected int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := apply(t, store, engine, inventory.MovementRequest{VariantID: v.ID, Type: entity.MovementTypeOUT, Quantity: dec(1)})
			if err == nil {
				atomic.AddInt32(&ok, 1)
				return
			}
			if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), ok)
	assert.Equal(t, int32(30), rejected)
	assert.True(t, stockOf(t, store, v.ID).IsZero())
}

func TestLockVariants_VarianteInexistente(t *testing.T) {
	store, engine := memory.New(), inventory.NewStockEngine()
	v := seedVariant(t, store, engine, 1)

	err := store.Run(context.Background(), func(r repository.Repos) error {
		_, err := engine.LockVariants(context.Background(), r, []inventory.VariantKey{{VariantID: v.ID}, {VariantID: "nope"}, {VariantID: v.ID}})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLockVariants_DevuelveVariantesBloqueadas(t *testing.T) {
	store, engine := memory.New(), inventory.NewStockEngine()
	v := seedVariant(t, store, engine, 4)

	err := store.Run(context.Background(), func(r repository.Repos) error {
		locked, err := engine.LockVariants(context.Background(), r, []inventory.VariantKey{{VariantID: v.ID}, {VariantID: v.ID}})
		require.NoError(t, err)
		require.Len(t, locked, 1)
		assert.Equal(t, v.ProductID, locked[v.ID].ProductID)
		return nil
	})
	require.NoError(t, err)
}
