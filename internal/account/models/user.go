package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/email"
)

// Role determines which document combinations an account must supply before
// it can be trusted.
type Role string

const (
	RoleImporter     Role = "importer"
	RoleSupplier     Role = "supplier"
	RoleCarrier      Role = "carrier"
	RoleWarehouse    Role = "warehouse"
	RoleCustomsAgent Role = "customs_agent"
	RoleAdmin        Role = "admin"
)

// AllRoles is the closed set of roles. Requirement rules are checked against
// this list in tests so a new role without a rule fails the build's test run.
var AllRoles = []Role{
	RoleImporter,
	RoleSupplier,
	RoleCarrier,
	RoleWarehouse,
	RoleCustomsAgent,
	RoleAdmin,
}

// ParseRole validates a role string at a trust boundary.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllRoles {
		if role == known {
			return role, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+raw)
}

// VerificationStatus is the account-level trust state. Transitions only move
// forward; admin override (rejected) is handled out-of-band.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusPending    VerificationStatus = "pending"
	StatusApproved   VerificationStatus = "approved"
	StatusRejected   VerificationStatus = "rejected"
)

// rank orders statuses for forward-only transitions. Rejected sits outside
// the normal ladder and is never assigned by the workflow here.
func (s VerificationStatus) rank() int {
	switch s {
	case StatusUnverified:
		return 0
	case StatusPending:
		return 1
	case StatusApproved:
		return 2
	default:
		return -1
	}
}

// NextStatus computes the status an account should hold given its two gates:
// email confirmation and document completion. Approved requires both; either
// alone moves the account to pending. The result never moves backwards from
// current.
func NextStatus(current VerificationStatus, emailVerified, docsComplete bool) VerificationStatus {
	next := StatusUnverified
	switch {
	case emailVerified && docsComplete:
		next = StatusApproved
	case emailVerified || docsComplete:
		next = StatusPending
	}
	if current.rank() > next.rank() {
		return current
	}
	return next
}

// User is an account on the trade platform. Email is not unique on its own:
// the same email may register once per role.
type User struct {
	ID       id.UserID
	Username string
	Email    string
	Role     Role

	PasswordHash string

	FirstName   string
	LastName    string
	CompanyName string
	PhoneNumber string
	TaxID       string

	EmailVerified bool
	Status        VerificationStatus

	CreatedAt time.Time
}

// NewUsername generates the opaque login name assigned at registration:
// the first 12 hex characters of a fresh UUID.
func NewUsername() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// DisplayName returns the name used in email greetings, falling back to a
// guess from the address when the profile has no name.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	first, _ := email.DeriveNameFromEmail(u.Email)
	return first
}
