package policy

import (
	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
)

// RequirementAlternatives returns the ordered list of slot combinations that
// satisfy a role's document requirement. A submission (or cumulative set)
// satisfies the role when it contains ALL slots of ANY one alternative.
//
// The mapping is a closed switch over the Role enum rather than a lookup
// table: a new role without a rule lands in the default branch and fails
// closed, and the exhaustiveness test over models.AllRoles turns that into a
// test failure rather than a silent fail-open.
//
// An empty (non-nil) list means the role has no document requirement at all;
// admin accounts are provisioned out-of-band.
func RequirementAlternatives(role account.Role) ([]models.SlotSet, bool) {
	switch role {
	case account.RoleImporter:
		// Importers may identify with a national ID, a driver's license, or
		// a business license.
		return []models.SlotSet{
			models.NewSlotSet(models.SlotIDFront, models.SlotIDBack),
			models.NewSlotSet(models.SlotDLFront, models.SlotDLBack),
			models.NewSlotSet(models.SlotBusinessLicense),
		}, true
	case account.RoleSupplier, account.RoleCarrier, account.RoleWarehouse, account.RoleCustomsAgent:
		return []models.SlotSet{
			models.NewSlotSet(models.SlotBusinessLicense),
		}, true
	case account.RoleAdmin:
		return []models.SlotSet{}, true
	default:
		return nil, false
	}
}

// satisfiesAny reports whether the slot set contains all slots of at least
// one alternative. An empty alternatives list is trivially satisfied.
func satisfiesAny(slots models.SlotSet, alternatives []models.SlotSet) bool {
	if len(alternatives) == 0 {
		return true
	}
	for _, alt := range alternatives {
		if slots.ContainsAll(alt) {
			return true
		}
	}
	return false
}
