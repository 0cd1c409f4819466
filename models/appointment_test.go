package models

import (
	"testing"

	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/stretchr/testify/assert"
)

func TestAppointment_Lifecycle(t *testing.T) {
	appointment := &Appointment{Status: AppointmentStatusScheduled}
	assert.True(t, appointment.IsScheduled())
	assert.True(t, appointment.CanBeCompleted())
	assert.True(t, appointment.CanBeCancelled())

	appointment.Status = AppointmentStatusCompleted
	assert.True(t, appointment.IsCompleted())
	// Re-completion stays possible; the flow checks the commission records
	assert.True(t, appointment.CanBeCompleted())
	assert.False(t, appointment.CanBeCancelled())

	appointment.Status = AppointmentStatusCancelled
	assert.True(t, appointment.IsCancelled())
	assert.False(t, appointment.CanBeCompleted())
	assert.False(t, appointment.CanBeCancelled())
}

func TestUser_RolePermissions(t *testing.T) {
	owner := &User{Role: UserRoleOwner}
	manager := &User{Role: UserRoleManager}
	operator := &User{Role: UserRoleOperator}

	assert.True(t, owner.IsOwner())
	assert.True(t, owner.CanManageRules())
	assert.False(t, manager.IsOwner())
	assert.True(t, manager.CanManageRules())
	assert.False(t, operator.CanManageRules())
}

func TestProcedure_PriceFallback(t *testing.T) {
	priced := &Procedure{SuggestedPrice: 450}
	assert.Equal(t, 450.0, priced.PriceOrDefault())

	legacy := &Procedure{}
	assert.Equal(t, utils.DefaultServiceValue, legacy.PriceOrDefault())
}

func TestUserSession_Validity(t *testing.T) {
	session := &UserSession{}
	assert.True(t, session.IsExpired())
	assert.False(t, session.IsValid())
}
