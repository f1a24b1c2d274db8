package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/memory"
)

type recordingPublisher struct {
	batches [][]*entity.InventoryMovement
}

func (p *recordingPublisher) PublishMovements(_ context.Context, movs []*entity.InventoryMovement) error {
	p.batches = append(p.batches, movs)
	return nil
}

func TestInventoryUseCase_UpdateYAdjust(t *testing.T) {
	ctx := context.Background()
	store, engine := memory.New(), inventory.NewStockEngine()
	pub := &recordingPublisher{}
	uc := inventory.NewInventoryUseCase(store, store.Repos(), engine, pub)
	v := seedVariant(t, store, engine, 10)

	out, err := uc.UpdateStock(ctx, "u1", dto.UpdateStockRequest{VariantID: v.ID, Type: "out", Quantity: dec(4)})
	require.NoError(t, err)
	assert.True(t, out.Stock.Equal(dec(6)))
	assert.True(t, out.Changed)
	require.NotNil(t, out.Movement)
	assert.Equal(t, "OUT", out.Movement.Type)

	_, err = uc.UpdateStock(ctx, "u1", dto.UpdateStockRequest{VariantID: v.ID, Type: "ADJUSTMENT", Quantity: dec(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err = uc.AdjustStock(ctx, "u1", dto.AdjustStockRequest{VariantID: v.ID, NewStock: dec(6), Reason: "conteo"})
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Nil(t, out.Movement)

	out, err = uc.AdjustStock(ctx, "u1", dto.AdjustStockRequest{VariantID: v.ID, NewStock: dec(15), Reason: "conteo"})
	require.NoError(t, err)
	assert.True(t, out.Stock.Equal(dec(15)))
	assert.Equal(t, entity.ReferenceAdjustment, out.Movement.ReferenceType)

	assert.Len(t, pub.batches, 2, "el ajuste sin cambio no publica")
}

func TestInventoryUseCase_MovementsYReconcile(t *testing.T) {
	ctx := context.Background()
	store, engine := memory.New(), inventory.NewStockEngine()
	uc := inventory.NewInventoryUseCase(store, store.Repos(), engine, nil)
	v := seedVariant(t, store, engine, 8)
	_, err := uc.UpdateStock(ctx, "", dto.UpdateStockRequest{VariantID: v.ID, Type: "OUT", Quantity: dec(3)})
	require.NoError(t, err)

	movs, err := uc.Movements(ctx, "", v.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "OUT", movs[0].Type, "más recientes primero")
	assert.Equal(t, "Tôle", movs[0].ProductName)
	assert.Equal(t, "2mm", movs[0].VariantName)

	one, err := uc.Movement(ctx, movs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "IN", one.Type)

	_, err = uc.Movement(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec, err := uc.Reconcile(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 2, rec.Movements)
	assert.True(t, rec.LedgerSum.Equal(dec(5)))

	_, err = uc.Reconcile(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryUseCase_StatsYAlerts(t *testing.T) {
	ctx := context.Background()
	store, engine := memory.New(), inventory.NewStockEngine()
	uc := inventory.NewInventoryUseCase(store, store.Repos(), engine, nil)
	seedVariant(t, store, engine, 30) // disponible (min 5)
	low := seedVariant(t, store, engine, 3)
	out := seedVariant(t, store, engine, 0)

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 1, stats.LowStockItems)
	assert.Equal(t, 1, stats.OutOfStockItems)
	assert.True(t, stats.TotalValue.Equal(dec(33*60)))

	alerts, err := uc.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, out.ID, alerts[0].VariantID)
	assert.Equal(t, "out_of_stock", alerts[0].Type)
	assert.Equal(t, low.ID, alerts[1].VariantID)
	assert.Equal(t, "low_stock", alerts[1].Type)
}

func TestReplenishment_SugiereHastaElMaximo(t *testing.T) {
	ctx := context.Background()
	store, engine := memory.New(), inventory.NewStockEngine()
	seedVariant(t, store, engine, 40)
	low := seedVariant(t, store, engine, 2)

	list, err := inventory.NewReplenishmentUseCase(store.Repos()).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, low.ID, list[0].VariantID)
	assert.True(t, list[0].SuggestedOrderQty.Equal(dec(48)))
	assert.True(t, list[0].EstimatedOrderCost.Equal(dec(48*60)))
	assert.Equal(t, 1, list[0].Priority)
}
