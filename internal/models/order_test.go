package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	t.Parallel()

	// Прямой путь доставки
	assert.True(t, CanTransitionOrder(OrderStatusPending, OrderStatusAccepted))
	assert.True(t, CanTransitionOrder(OrderStatusAccepted, OrderStatusInProgress))
	assert.True(t, CanTransitionOrder(OrderStatusInProgress, OrderStatusDelivered))

	// Отмена из любого нетерминального статуса
	assert.True(t, CanTransitionOrder(OrderStatusPending, OrderStatusCancelled))
	assert.True(t, CanTransitionOrder(OrderStatusAccepted, OrderStatusCancelled))
	assert.True(t, CanTransitionOrder(OrderStatusInProgress, OrderStatusCancelled))

	// Нельзя перепрыгивать и откатываться
	assert.False(t, CanTransitionOrder(OrderStatusPending, OrderStatusInProgress))
	assert.False(t, CanTransitionOrder(OrderStatusPending, OrderStatusDelivered))
	assert.False(t, CanTransitionOrder(OrderStatusAccepted, OrderStatusPending))
	assert.False(t, CanTransitionOrder(OrderStatusDelivered, OrderStatusCancelled))
	assert.False(t, CanTransitionOrder(OrderStatusCancelled, OrderStatusPending))
}

func TestOrderStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusAccepted.IsTerminal())
	assert.False(t, OrderStatusInProgress.IsTerminal())
}

func TestEffectiveCommissionRate(t *testing.T) {
	t.Parallel()

	u := &User{}
	assert.Equal(t, 0.15, u.EffectiveCommissionRate(0.15))

	custom := 0.10
	u.CommissionRate = &custom
	assert.Equal(t, 0.10, u.EffectiveCommissionRate(0.15))
}

func TestDocumentTypeIsRequired(t *testing.T) {
	t.Parallel()

	assert.True(t, DocumentTypeINE.IsRequired())
	assert.True(t, DocumentTypeDriversLicense.IsRequired())
	assert.False(t, DocumentTypeVehicleRegistration.IsRequired())
	assert.False(t, DocumentTypeProofOfAddress.IsRequired())
}
