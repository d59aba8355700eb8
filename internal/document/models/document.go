// Package models defines document slots and submission records. A submission
// is one upload event; it is validated once, never mutated afterwards, and
// kept permanently as an audit trail.
package models

import (
	"sort"
	"strings"
	"time"

	account "tradegate/internal/account/models"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// Slot names a distinct upload category. Each slot is independently present
// or absent in a submission.
type Slot string

const (
	SlotIDFront         Slot = "id_front"
	SlotIDBack          Slot = "id_back"
	SlotDLFront         Slot = "dl_front"
	SlotDLBack          Slot = "dl_back"
	SlotBusinessLicense Slot = "business_license"
	SlotFacePhoto       Slot = "face_photo"
)

// AllSlots is the closed set of upload categories.
var AllSlots = []Slot{
	SlotIDFront,
	SlotIDBack,
	SlotDLFront,
	SlotDLBack,
	SlotBusinessLicense,
	SlotFacePhoto,
}

// ParseSlot validates a slot name at a trust boundary.
func ParseSlot(raw string) (Slot, error) {
	slot := Slot(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllSlots {
		if slot == known {
			return slot, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown document slot: "+raw)
}

// SlotSet is a set of slots. The zero value is not usable; construct with
// NewSlotSet.
type SlotSet map[Slot]struct{}

// NewSlotSet builds a set from the given slots.
func NewSlotSet(slots ...Slot) SlotSet {
	set := make(SlotSet, len(slots))
	for _, slot := range slots {
		set[slot] = struct{}{}
	}
	return set
}

// Has reports whether slot is in the set.
func (s SlotSet) Has(slot Slot) bool {
	_, ok := s[slot]
	return ok
}

// ContainsAll reports whether every slot of other is present in s.
func (s SlotSet) ContainsAll(other SlotSet) bool {
	for slot := range other {
		if !s.Has(slot) {
			return false
		}
	}
	return true
}

// Union returns a new set with the contents of both.
func (s SlotSet) Union(other SlotSet) SlotSet {
	merged := make(SlotSet, len(s)+len(other))
	for slot := range s {
		merged[slot] = struct{}{}
	}
	for slot := range other {
		merged[slot] = struct{}{}
	}
	return merged
}

// Slots returns the members in stable order for serialization and logs.
func (s SlotSet) Slots() []Slot {
	out := make([]Slot, 0, len(s))
	for slot := range s {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Submission is a single upload event. Role is captured at submission time so
// the audit trail reflects the rules that were applied.
type Submission struct {
	ID     id.SubmissionID
	UserID id.UserID
	Role   account.Role
	Slots  SlotSet

	// ObjectKeys maps each populated slot to its location in the file store.
	// File bytes never pass through this service.
	ObjectKeys map[Slot]string

	CreatedAt time.Time
}
