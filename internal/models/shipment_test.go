package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShipmentStatusIsTerminal(t *testing.T) {
	assert.True(t, ShipmentStatusDelivered.IsTerminal())
	assert.True(t, ShipmentStatusCancelled.IsTerminal())

	for _, s := range []ShipmentStatus{
		ShipmentStatusPending,
		ShipmentStatusAssigned,
		ShipmentStatusPickupVerificationPending,
		ShipmentStatusPickedUp,
		ShipmentStatusInTransit,
	} {
		assert.False(t, s.IsTerminal(), string(s))
	}
}

func TestPickupVerificationIsActive(t *testing.T) {
	v := PickupVerification{Status: VerificationStatusInProgress}
	assert.True(t, v.IsActive())

	v.Status = VerificationStatusMinorDifferences
	assert.True(t, v.IsActive(), "ожидание ответа клиента — активное состояние")

	resp := ClientResponseApproved
	v.ClientResponse = &resp
	assert.False(t, v.IsActive())

	v = PickupVerification{Status: VerificationStatusMatches}
	assert.False(t, v.IsActive())
}
