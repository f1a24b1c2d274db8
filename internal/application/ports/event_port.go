package ports

import (
	"context"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// EventPublisher publica los movimientos ya confirmados (Kafka en producción).
// Un error de publicación no deshace la transacción.
type EventPublisher interface {
	PublishMovements(ctx context.Context, movements []*entity.InventoryMovement) error
}
