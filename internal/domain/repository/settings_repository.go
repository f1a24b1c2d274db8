package repository

import (
	"context"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// SettingsRepository configuración de la empresa (fila única).
type SettingsRepository interface {
	// Get devuelve nil, nil si aún no se guardó configuración.
	Get(ctx context.Context) (*entity.CompanySettings, error)
	Save(ctx context.Context, s *entity.CompanySettings) error
}
