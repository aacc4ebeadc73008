package admin

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the privilege tier of an admin account.
type Role string

const (
	// RoleMainAdmin may manage other admin accounts. At most one account holds it.
	RoleMainAdmin Role = "main_admin"
	RoleAdmin     Role = "admin"
)

var (
	ErrNotFound       = errors.New("admin not found")
	ErrInvalidAccount = errors.New("invalid admin account")
)

// Account is an administrator. Credential never leaves the service.
type Account struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Credential string    `json:"-"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail requires a bare address such as ada@example.com.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q is not a valid email address", ErrInvalidAccount, email)
	}
	return nil
}

// ValidatePassword rejects empty passwords and ones bcrypt would truncate.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidAccount)
	case len(password) > 72:
		return fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidAccount)
	}
	return nil
}
