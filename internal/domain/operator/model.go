package operator

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// Role constants
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Operator status constants
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleOperator}

// Domain errors
var (
	ErrEmptyFirstName   = errors.New("operator first name cannot be empty")
	ErrEmptyLastName    = errors.New("operator last name cannot be empty")
	ErrEmptyEmail       = errors.New("operator email cannot be empty")
	ErrInvalidEmail     = errors.New("operator email must contain '@'")
	ErrInvalidRole      = errors.New("operator role must be 'admin' or 'operator'")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrTokenExpired     = errors.New("reset link has expired")
	ErrTokenInvalid     = errors.New("reset token is invalid")
)

// Operator is a back-office operator account.
type Operator struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Birthdate    string // YYYY-MM-DD
	Gender       string
	Role         string
	Status       string
	PasswordHash string
	RegisteredAt time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// ResetToken represents a time-limited token for a password reset.
type ResetToken struct {
	ID         string
	OperatorID string
	Token      string
	ExpiresAt  time.Time
	Used       bool
	CreatedAt  time.Time
}

// Validate checks if the Operator has valid data.
// PRE: Operator struct is populated
// POST: Returns nil if valid, error otherwise
func (o *Operator) Validate() error {
	if strings.TrimSpace(o.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(o.LastName) == "" {
		return ErrEmptyLastName
	}
	if len(o.FirstName) > MaxNameLength || len(o.LastName) > MaxNameLength {
		return errors.New("operator name cannot exceed 100 characters")
	}
	if strings.TrimSpace(o.Email) == "" {
		return ErrEmptyEmail
	}
	if len(o.Email) > MaxEmailLength {
		return errors.New("operator email cannot exceed 254 characters")
	}
	if !strings.Contains(o.Email, "@") {
		return ErrInvalidEmail
	}
	if !isValidRole(o.Role) {
		return ErrInvalidRole
	}
	return nil
}

// FullName returns the operator's display name.
func (o *Operator) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (o *Operator) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	o.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Operator fields are not mutated
func (o *Operator) CheckPassword(plaintext string) error {
	if o.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
// INVARIANT: Operator fields are not mutated
func (o *Operator) IsLocked() bool {
	if o.LockedUntil.IsZero() {
		return false
	}
	return time.Now().Before(o.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after 5 failures.
// PRE: Operator exists
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (o *Operator) RecordFailedLogin() {
	o.FailedLogins++
	if o.FailedLogins >= 5 {
		o.LockedUntil = time.Now().Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (o *Operator) ResetFailedLogins() {
	o.FailedLogins = 0
	o.LockedUntil = time.Time{}
}

// IsAdmin returns true if the operator has admin role.
// INVARIANT: Operator fields are not mutated
func (o *Operator) IsAdmin() bool {
	return o.Role == RoleAdmin
}

// IsExpired returns true if the reset token has expired.
// INVARIANT: Token fields are not mutated
func (t *ResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Invalidate marks the token as used.
func (t *ResetToken) Invalidate() {
	t.Used = true
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
