package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
)

func TestIsVerificationComplete(t *testing.T) {
	tests := []struct {
		name       string
		role       account.Role
		cumulative models.SlotSet
		want       bool
	}{
		{"importer via national id", account.RoleImporter,
			models.NewSlotSet(models.SlotIDFront, models.SlotIDBack), true},
		{"importer via driver license", account.RoleImporter,
			models.NewSlotSet(models.SlotDLFront, models.SlotDLBack), true},
		{"importer via business license", account.RoleImporter,
			models.NewSlotSet(models.SlotBusinessLicense), true},
		{"importer with only one id side", account.RoleImporter,
			models.NewSlotSet(models.SlotIDFront), false},
		{"importer pair assembled across submissions", account.RoleImporter,
			models.NewSlotSet(models.SlotIDFront).Union(models.NewSlotSet(models.SlotIDBack)), true},
		{"supplier without business license", account.RoleSupplier,
			models.NewSlotSet(models.SlotIDFront, models.SlotIDBack), false},
		{"supplier with business license", account.RoleSupplier,
			models.NewSlotSet(models.SlotBusinessLicense), true},
		{"carrier with business license", account.RoleCarrier,
			models.NewSlotSet(models.SlotBusinessLicense), true},
		{"customs agent with business license", account.RoleCustomsAgent,
			models.NewSlotSet(models.SlotBusinessLicense), true},
		{"admin with nothing", account.RoleAdmin, models.NewSlotSet(), true},
		{"empty set incomplete for importer", account.RoleImporter, models.NewSlotSet(), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsVerificationComplete(tc.role, tc.cumulative))
		})
	}
}

// Completion is monotonic: once complete, adding any slot keeps it complete.
func TestIsVerificationComplete_Monotonic(t *testing.T) {
	complete := []struct {
		role account.Role
		set  models.SlotSet
	}{
		{account.RoleImporter, models.NewSlotSet(models.SlotDLFront, models.SlotDLBack)},
		{account.RoleSupplier, models.NewSlotSet(models.SlotBusinessLicense)},
		{account.RoleCustomsAgent, models.NewSlotSet(models.SlotBusinessLicense)},
	}
	for _, base := range complete {
		assert.True(t, IsVerificationComplete(base.role, base.set))
		grown := base.set
		for _, extra := range models.AllSlots {
			grown = grown.Union(models.NewSlotSet(extra))
			assert.True(t, IsVerificationComplete(base.role, grown),
				"role %s became incomplete after adding %s", base.role, extra)
		}
	}
}

// Undefined roles fail closed: never complete, regardless of what was uploaded.
func TestIsVerificationComplete_UnknownRoleFailsClosed(t *testing.T) {
	everything := models.NewSlotSet(models.AllSlots...)
	assert.False(t, IsVerificationComplete(account.Role("broker"), everything))
	assert.False(t, IsVerificationComplete(account.Role(""), everything))
}
