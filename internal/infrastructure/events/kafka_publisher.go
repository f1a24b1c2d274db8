// Package events publica en Kafka los movimientos de inventario confirmados.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// EventTypeStockMoved tipo de evento publicado por cada movimiento.
const EventTypeStockMoved = "STOCK_MOVED"

// StockMovedEvent mensaje publicado. Key = variant_id para mantener el orden por variante.
type StockMovedEvent struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	ProductID     string          `json:"product_id"`
	VariantID     string          `json:"variant_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	StockBefore   decimal.Decimal `json:"stock_before"`
	StockAfter    decimal.Decimal `json:"stock_after"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// messageWriter subconjunto de kafka.Writer usado aquí.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implementa ports.EventPublisher.
type KafkaPublisher struct {
	writer messageWriter
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher crea el productor para el topic indicado.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &KafkaPublisher{writer: writer}
}

// PublishMovements publica un mensaje por movimiento en una sola escritura.
func (p *KafkaPublisher) PublishMovements(ctx context.Context, movements []*entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(movements))
	for _, m := range movements {
		value, err := json.Marshal(NewStockMovedEvent(m))
		if err != nil {
			return fmt.Errorf("serializar evento: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(m.VariantID),
			Value: value,
			Time:  m.CreatedAt,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("escribir en kafka: %w", err)
	}
	log.Debug().Int("movements", len(msgs)).Msg("movimientos publicados")
	return nil
}

// Close cierra el productor.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewStockMovedEvent arma el evento de un movimiento.
func NewStockMovedEvent(m *entity.InventoryMovement) StockMovedEvent {
	return StockMovedEvent{
		EventID:       m.ID,
		EventType:     EventTypeStockMoved,
		Timestamp:     m.CreatedAt,
		ProductID:     m.ProductID,
		VariantID:     m.VariantID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedBy:     m.CreatedBy,
	}
}
