package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishMovements_KeyedByVariant(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	now := time.Now().UTC()

	err := p.PublishMovements(context.Background(), []*entity.InventoryMovement{
		{ID: "m1", ProductID: "p1", VariantID: "v1", Type: entity.MovementTypeOUT,
			Quantity: decimal.NewFromInt(3), StockBefore: decimal.NewFromInt(10), StockAfter: decimal.NewFromInt(7),
			ReferenceType: entity.ReferenceSale, ReferenceID: "s1", CreatedAt: now},
		{ID: "m2", ProductID: "p1", VariantID: "v2", Type: entity.MovementTypeIN,
			Quantity: decimal.NewFromInt(1), StockBefore: decimal.Zero, StockAfter: decimal.NewFromInt(1), CreatedAt: now},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "v1", string(w.msgs[0].Key))

	var ev StockMovedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, EventTypeStockMoved, ev.EventType)
	assert.Equal(t, "OUT", ev.Type)
	assert.True(t, ev.StockAfter.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "s1", ev.ReferenceID)
}

func TestPublishMovements_EmptyAndError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := &KafkaPublisher{writer: w}

	assert.NoError(t, p.PublishMovements(context.Background(), nil))
	err := p.PublishMovements(context.Background(), []*entity.InventoryMovement{{ID: "m1", VariantID: "v1"}})
	assert.ErrorContains(t, err, "broker caído")
}
