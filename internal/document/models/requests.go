package models

import (
	"time"

	dErrors "tradegate/pkg/domain-errors"
)

// DocumentUpload is one file in a submission payload. ObjectKey points at the
// already-uploaded file in object storage.
type DocumentUpload struct {
	Slot      string `json:"slot"`
	ObjectKey string `json:"object_key,omitempty"`
}

// SubmitRequest is the payload for a document submission.
type SubmitRequest struct {
	Documents []DocumentUpload `json:"documents"`
}

// Parse validates the payload into a slot set plus object keys. Duplicate
// slots within one submission are rejected.
func (r SubmitRequest) Parse() (SlotSet, map[Slot]string, error) {
	if len(r.Documents) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeInvalidInput, "at least one document is required")
	}
	slots := NewSlotSet()
	keys := make(map[Slot]string)
	for _, doc := range r.Documents {
		slot, err := ParseSlot(doc.Slot)
		if err != nil {
			return nil, nil, err
		}
		if slots.Has(slot) {
			return nil, nil, dErrors.New(dErrors.CodeInvalidInput, "duplicate document slot: "+string(slot))
		}
		slots[slot] = struct{}{}
		if doc.ObjectKey != "" {
			keys[slot] = doc.ObjectKey
		}
	}
	if len(keys) == 0 {
		keys = nil
	}
	return slots, keys, nil
}

// SubmissionResponse is the public view of one accepted submission.
type SubmissionResponse struct {
	ID        string    `json:"id"`
	Slots     []string  `json:"slots"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusResponse reports verification progress for the caller.
type StatusResponse struct {
	Role               string   `json:"role"`
	VerificationStatus string   `json:"verification_status"`
	EmailVerified      bool     `json:"email_verified"`
	SubmittedSlots     []string `json:"submitted_slots"`
	DocumentsComplete  bool     `json:"documents_complete"`
}

// ToSubmissionResponse converts a submission to its public view.
func ToSubmissionResponse(s *Submission) SubmissionResponse {
	slots := make([]string, 0, len(s.Slots))
	for _, slot := range s.Slots.Slots() {
		slots = append(slots, string(slot))
	}
	return SubmissionResponse{
		ID:        s.ID.String(),
		Slots:     slots,
		CreatedAt: s.CreatedAt,
	}
}
