package inventory

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/telemetry"
)

// Committed registra métricas y publica los movimientos de una transacción ya confirmada.
// Los nil (ajustes sin cambio) se ignoran. Fallas de publicación solo se registran en el log.
func Committed(ctx context.Context, pub ports.EventPublisher, movements ...*entity.InventoryMovement) {
	applied := make([]*entity.InventoryMovement, 0, len(movements))
	for _, m := range movements {
		if m == nil {
			continue
		}
		telemetry.StockMovementsTotal.WithLabelValues(string(m.Type)).Inc()
		applied = append(applied, m)
	}
	if pub == nil || len(applied) == 0 {
		return
	}
	if err := pub.PublishMovements(ctx, applied); err != nil {
		log.Warn().Err(err).Int("movements", len(applied)).Msg("no se pudieron publicar los movimientos de stock")
	}
}
