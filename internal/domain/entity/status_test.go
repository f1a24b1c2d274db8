package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

func TestParseSaleStatus_NormalizaTexto(t *testing.T) {
	st, err := entity.ParseSaleStatus("  cancelled ")
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, st)
}

func TestParseStatus_TextoInvalido(t *testing.T) {
	_, err := entity.ParseSaleStatus("SHIPPED")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = entity.ParseSaleStatus("REFUNDED")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = entity.ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = entity.ParsePaymentStatus("")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = entity.ParseDeliveryStatus("LOST")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = entity.ParseMovementType("TRANSFER")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestHoldsStock(t *testing.T) {
	assert.True(t, entity.SaleStatusPending.HoldsStock())
	assert.True(t, entity.SaleStatusCompleted.HoldsStock())
	assert.False(t, entity.SaleStatusCancelled.HoldsStock())
}

func TestCreditsStock(t *testing.T) {
	assert.False(t, entity.DeliveryStatusPending.CreditsStock())
	assert.True(t, entity.DeliveryStatusDelivered.CreditsStock())
	assert.True(t, entity.DeliveryStatusPartial.CreditsStock())
}
