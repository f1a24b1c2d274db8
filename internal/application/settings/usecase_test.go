package settings_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/settings"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/memory"
)

func strp(s string) *string { return &s }

func TestSettings_ValoresPorDefecto(t *testing.T) {
	uc := settings.NewSettingsUseCase(memory.New().Repos().Settings)
	s, err := uc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "William Metal", s.Name)
	assert.True(t, s.TaxRate.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "MAD", s.Currency)
}

func TestSettings_Update(t *testing.T) {
	ctx := context.Background()
	uc := settings.NewSettingsUseCase(memory.New().Repos().Settings)
	rate := decimal.RequireFromString("20")

	s, err := uc.Update(ctx, dto.UpdateCompanySettingsRequest{
		Name:     strp("  William Metal SARL "),
		Phone:    strp("0522123456"),
		TaxRate:  &rate,
		Currency: strp("eur"),
	})
	require.NoError(t, err)
	assert.Equal(t, "William Metal SARL", s.Name)
	assert.Equal(t, "EUR", s.Currency)
	assert.False(t, s.UpdatedAt.IsZero())

	got, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.TaxRate.Equal(rate))
	assert.Equal(t, "0522123456", got.Phone)

	// Solo cambia lo enviado.
	got, err = uc.Update(ctx, dto.UpdateCompanySettingsRequest{Address: strp("Casablanca")})
	require.NoError(t, err)
	assert.Equal(t, "William Metal SARL", got.Name)
	assert.Equal(t, "Casablanca", got.Address)
}

func TestSettings_UpdateInvalido(t *testing.T) {
	ctx := context.Background()
	uc := settings.NewSettingsUseCase(memory.New().Repos().Settings)
	neg, over := decimal.NewFromInt(-1), decimal.RequireFromString("100.01")

	for name, in := range map[string]dto.UpdateCompanySettingsRequest{
		"nombre vacío":  {Name: strp("  ")},
		"tasa negativa": {TaxRate: &neg},
		"tasa > 100":    {TaxRate: &over},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Update(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	s, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, s.TaxRate.Equal(decimal.NewFromInt(10)))
}
