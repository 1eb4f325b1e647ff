package entity

import (
	"strings"
	"time"
)

// AccountStatus is the lifecycle state of a user account.
type AccountStatus string

const (
	StatusPending   AccountStatus = "PENDING"
	StatusVerified  AccountStatus = "VERIFIED"
	StatusActive    AccountStatus = "ACTIVE"
	StatusSuspended AccountStatus = "SUSPENDED"
)

// ParseAccountStatus normalizes free-form input into a known status.
func ParseAccountStatus(s string) (AccountStatus, bool) {
	st := AccountStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusVerified, StatusActive, StatusSuspended:
		return st, true
	}
	return "", false
}

// CanAuthenticate reports whether the status allows login and refresh.
func (s AccountStatus) CanAuthenticate() bool {
	return s == StatusVerified || s == StatusActive
}

// VerificationMethod is the channel a registrant picked for verification.
type VerificationMethod string

const (
	MethodEmail VerificationMethod = "EMAIL"
	MethodSMS   VerificationMethod = "SMS"
)

// ParseVerificationMethod defaults to SMS when the input is empty.
func ParseVerificationMethod(s string) (VerificationMethod, bool) {
	m := VerificationMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case "":
		return MethodSMS, true
	case MethodEmail, MethodSMS:
		return m, true
	}
	return "", false
}

// User is the aggregate root for the identity domain.
// ID is the surrogate key and never leaves the service; PublicID is what
// clients see. PasswordHash holds a bcrypt hash.
type User struct {
	ID           int64
	PublicID     string
	FullName     string
	Phone        string
	Email        string // empty when the user registered without one
	PasswordHash string
	Status       AccountStatus
	Role         Role
	AvatarURL    string

	VerificationMethod   VerificationMethod
	VerificationHash     string // sha256 of the outstanding token, empty once consumed
	VerificationAttempts int

	TermsAccepted    bool
	ConsentedAt      *time.Time
	ConsentIP        string
	ConsentUserAgent string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Roles returns the role list exposed to clients.
func (u *User) Roles() []string {
	return []string{string(u.Role)}
}
