package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo configuración de la empresa (fila única en company_settings).
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// Get devuelve la configuración o nil, nil si no hay ninguna guardada.
func (r *SettingsRepo) Get(ctx context.Context) (*entity.CompanySettings, error) {
	query := `
		SELECT id, name, address, phone, email, tax_rate, currency, updated_at
		FROM company_settings ORDER BY updated_at DESC LIMIT 1`
	var s entity.CompanySettings
	err := r.q.QueryRow(ctx, query).Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Email, &s.TaxRate, &s.Currency, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

// Save inserta o actualiza la configuración.
func (r *SettingsRepo) Save(ctx context.Context, s *entity.CompanySettings) error {
	query := `
		INSERT INTO company_settings (id, name, address, phone, email, tax_rate, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone, email = EXCLUDED.email,
			tax_rate = EXCLUDED.tax_rate, currency = EXCLUDED.currency, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Address, s.Phone, s.Email, s.TaxRate, s.Currency, s.UpdatedAt)
	if err != nil {
		return mapWriteErr("save settings", err)
	}
	return nil
}
