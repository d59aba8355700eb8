// Package policy is the document-requirement validation engine: pure decision
// logic over a role and a set of document slots. No I/O, no side effects; the
// caller owns persistence and status transitions.
package policy

import (
	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
	dErrors "tradegate/pkg/domain-errors"
)

// twoSidedDocument names a front/back pair for rejection messages.
type twoSidedDocument struct {
	name  string
	front models.Slot
	back  models.Slot
}

var twoSidedDocuments = []twoSidedDocument{
	{name: "national_id", front: models.SlotIDFront, back: models.SlotIDBack},
	{name: "driver_license", front: models.SlotDLFront, back: models.SlotDLBack},
}

// ValidateSubmission decides whether a single upload event is acceptable for
// the given role.
//
// The pairing rule runs first and applies to every role uniformly: one side
// of a two-part document without the other is an unconditional
// data-integrity rejection (CodeIncompletePair), regardless of whatever else
// is present.
//
// The sufficiency rule then requires the submission to satisfy one of the
// role's alternatives on its own. A rejection here (CodeInsufficientDocuments)
// is not fatal to the account: submissions accumulate, and only the
// cumulative check decides completion.
//
// face_photo is optional for every role; it never satisfies nor invalidates.
func ValidateSubmission(role account.Role, present models.SlotSet) error {
	for _, doc := range twoSidedDocuments {
		if present.Has(doc.front) != present.Has(doc.back) {
			return dErrors.New(dErrors.CodeIncompletePair,
				"both front and back of the "+doc.name+" must be uploaded together")
		}
	}

	alternatives, ok := RequirementAlternatives(role)
	if !ok {
		return dErrors.New(dErrors.CodeUnknownRole, "no document requirement configured for role "+string(role))
	}
	if !satisfiesAny(present, alternatives) {
		return dErrors.New(dErrors.CodeInsufficientDocuments,
			"submission does not meet the minimum document requirement for role "+string(role))
	}
	return nil
}
