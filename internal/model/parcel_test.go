package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParcelStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from ParcelStatus
		to   ParcelStatus
		want bool
	}{
		{ParcelStatusPending, ParcelStatusApproved, true},
		{ParcelStatusApproved, ParcelStatusInTransit, true},
		{ParcelStatusInTransit, ParcelStatusDelivered, true},
		{ParcelStatusPending, ParcelStatusDelivered, true},
		{ParcelStatusPending, ParcelStatusCancelled, true},
		{ParcelStatusApproved, ParcelStatusCancelled, true},
		{ParcelStatusInTransit, ParcelStatusCancelled, false},
		{ParcelStatusDelivered, ParcelStatusPending, false},
		{ParcelStatusDelivered, ParcelStatusCancelled, false},
		{ParcelStatusCancelled, ParcelStatusPending, false},
		{ParcelStatusInTransit, ParcelStatusApproved, false},
		{ParcelStatusDelivered, ParcelStatusDelivered, true},
		{ParcelStatusCancelled, ParcelStatusCancelled, true},
		{ParcelStatusPending, ParcelStatus("Lost"), false},
		{ParcelStatus("pending"), ParcelStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParcelStatus_Valid(t *testing.T) {
	for _, s := range []ParcelStatus{ParcelStatusPending, ParcelStatusApproved, ParcelStatusInTransit, ParcelStatusDelivered, ParcelStatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ParcelStatus("").Valid())
	assert.False(t, ParcelStatus("In Transit").Valid())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUnset.Valid())
	assert.True(t, RoleDeliveryMan.Valid())
	assert.True(t, Role("Admin").Valid())
	assert.False(t, Role("DeliveryMan").Valid())

	assert.True(t, RoleUnset.IsCustomer())
	assert.True(t, RoleCustomer.IsCustomer())
	assert.False(t, RoleAdmin.IsCustomer())
}
