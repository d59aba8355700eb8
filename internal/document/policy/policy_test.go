package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
	dErrors "tradegate/pkg/domain-errors"
)

func TestValidateSubmission_PairingRule(t *testing.T) {
	// One-sided pairs are rejected for every role, regardless of what else
	// is present.
	oneSided := []struct {
		name  string
		slots models.SlotSet
	}{
		{"id front only", models.NewSlotSet(models.SlotIDFront)},
		{"id back only", models.NewSlotSet(models.SlotIDBack)},
		{"dl front only", models.NewSlotSet(models.SlotDLFront)},
		{"dl back only", models.NewSlotSet(models.SlotDLBack)},
		{"id front with business license", models.NewSlotSet(models.SlotIDFront, models.SlotBusinessLicense)},
		{"dl back with full id pair", models.NewSlotSet(models.SlotDLBack, models.SlotIDFront, models.SlotIDBack)},
	}
	for _, role := range account.AllRoles {
		for _, tc := range oneSided {
			t.Run(string(role)+"/"+tc.name, func(t *testing.T) {
				err := ValidateSubmission(role, tc.slots)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeIncompletePair))
			})
		}
	}
}

func TestValidateSubmission_Importer(t *testing.T) {
	tests := []struct {
		name     string
		slots    models.SlotSet
		wantCode dErrors.Code // empty means accepted
	}{
		{"national id pair alone", models.NewSlotSet(models.SlotIDFront, models.SlotIDBack), ""},
		{"driver license pair alone", models.NewSlotSet(models.SlotDLFront, models.SlotDLBack), ""},
		{"business license alone", models.NewSlotSet(models.SlotBusinessLicense), ""},
		{"everything at once", models.NewSlotSet(models.AllSlots...), ""},
		{"empty submission", models.NewSlotSet(), dErrors.CodeInsufficientDocuments},
		{"face photo alone", models.NewSlotSet(models.SlotFacePhoto), dErrors.CodeInsufficientDocuments},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSubmission(account.RoleImporter, tc.slots)
			if tc.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tc.wantCode), "got %v", err)
		})
	}
}

func TestValidateSubmission_NonImporterRolesRequireBusinessLicense(t *testing.T) {
	roles := []account.Role{
		account.RoleSupplier,
		account.RoleCarrier,
		account.RoleWarehouse,
		account.RoleCustomsAgent,
	}
	for _, role := range roles {
		t.Run(string(role), func(t *testing.T) {
			// A full national ID pair is not enough without a business license.
			err := ValidateSubmission(role, models.NewSlotSet(models.SlotIDFront, models.SlotIDBack))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientDocuments))

			assert.NoError(t, ValidateSubmission(role, models.NewSlotSet(models.SlotBusinessLicense)))
			assert.NoError(t, ValidateSubmission(role,
				models.NewSlotSet(models.SlotBusinessLicense, models.SlotFacePhoto)))
		})
	}
}

func TestValidateSubmission_Admin(t *testing.T) {
	// Admins have no document requirement; only the pairing rule applies.
	assert.NoError(t, ValidateSubmission(account.RoleAdmin, models.NewSlotSet()))
	assert.NoError(t, ValidateSubmission(account.RoleAdmin, models.NewSlotSet(models.SlotFacePhoto)))

	err := ValidateSubmission(account.RoleAdmin, models.NewSlotSet(models.SlotIDFront))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeIncompletePair))
}

func TestValidateSubmission_UnknownRole(t *testing.T) {
	err := ValidateSubmission(account.Role("freight_forwarder"), models.NewSlotSet(models.SlotBusinessLicense))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownRole))
}

// Every declared role must have a requirement rule. A new role added without
// one fails here instead of failing open in production.
func TestRequirementAlternatives_Exhaustive(t *testing.T) {
	for _, role := range account.AllRoles {
		alternatives, ok := RequirementAlternatives(role)
		require.True(t, ok, "role %s has no requirement rule", role)
		require.NotNil(t, alternatives, "role %s returned nil alternatives", role)
	}
}

// face_photo must never appear in any requirement alternative.
func TestRequirementAlternatives_FacePhotoNeverRequired(t *testing.T) {
	for _, role := range account.AllRoles {
		alternatives, _ := RequirementAlternatives(role)
		for _, alt := range alternatives {
			assert.False(t, alt.Has(models.SlotFacePhoto), "role %s requires face_photo", role)
		}
	}
}
