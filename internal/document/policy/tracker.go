package policy

import (
	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
)

// IsVerificationComplete answers a different question than ValidateSubmission:
// not "is this one submission acceptable" but "has the account, across all
// accepted submissions to date, satisfied its role's requirement".
//
// The cumulative check honors the same alternatives as submission time, so an
// importer who completed via driver's license is complete even though they
// never uploaded a national ID.
//
// cumulative must be recomputed from persisted history by the caller, never
// cached, because submissions arrive across requests.
//
// A role with no configured requirement fails closed: the account can never
// complete, and the caller should log the configuration defect.
func IsVerificationComplete(role account.Role, cumulative models.SlotSet) bool {
	alternatives, ok := RequirementAlternatives(role)
	if !ok {
		return false
	}
	return satisfiesAny(cumulative, alternatives)
}
