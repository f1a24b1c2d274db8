// Package settings administra la configuración de la empresa (datos de factura y tasa de impuesto).
package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var maxTaxRate = decimal.NewFromInt(100)

// SettingsUseCase lee y actualiza la configuración de la empresa.
type SettingsUseCase struct {
	repo repository.SettingsRepository
}

// NewSettingsUseCase construye el caso de uso con el puerto de persistencia.
func NewSettingsUseCase(repo repository.SettingsRepository) *SettingsUseCase {
	return &SettingsUseCase{repo: repo}
}

// Load devuelve la configuración guardada o los valores por defecto si no existe.
func (uc *SettingsUseCase) Load(ctx context.Context) (*entity.CompanySettings, error) {
	s, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return entity.DefaultCompanySettings(), nil
	}
	return s, nil
}

// Get configuración actual.
func (uc *SettingsUseCase) Get(ctx context.Context) (*dto.CompanySettingsResponse, error) {
	s, err := uc.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ToSettingsResponse(s), nil
}

// Update aplica los campos recibidos. La tasa debe estar entre 0 y 100.
func (uc *SettingsUseCase) Update(ctx context.Context, in dto.UpdateCompanySettingsRequest) (*dto.CompanySettingsResponse, error) {
	s, err := uc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("nombre de la empresa vacío: %w", domain.ErrInvalidInput)
		}
		s.Name = name
	}
	if in.Address != nil {
		s.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		s.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		s.Email = strings.TrimSpace(*in.Email)
	}
	if in.TaxRate != nil {
		if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(maxTaxRate) {
			return nil, fmt.Errorf("tasa de impuesto %s fuera de rango: %w", in.TaxRate, domain.ErrInvalidInput)
		}
		s.TaxRate = *in.TaxRate
	}
	if in.Currency != nil {
		if c := strings.ToUpper(strings.TrimSpace(*in.Currency)); c != "" {
			s.Currency = c
		}
	}
	s.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	return ToSettingsResponse(s), nil
}

// ToSettingsResponse convierte la entidad al DTO.
func ToSettingsResponse(s *entity.CompanySettings) *dto.CompanySettingsResponse {
	return &dto.CompanySettingsResponse{
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		Email:     s.Email,
		TaxRate:   s.TaxRate,
		Currency:  s.Currency,
		UpdatedAt: s.UpdatedAt,
	}
}
