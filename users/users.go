package users

import (
	"fmt"
	"time"
	"unicode"
)

// Role represents a user's authorization level carried in token claims.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a raw claim value to a Role, falling back to RoleStandard
// for anything unrecognised.
func ParseRole(raw string) Role {
	if Role(raw) == RoleAdmin {
		return RoleAdmin
	}
	return RoleStandard
}

// User is the full identity record as held by the store. PasswordHash and
// RefreshFingerprint never leave the server; callers receive a PublicUser.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"` // unique, case-sensitive key
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`

	// RefreshFingerprint is the one-way hash of the currently valid refresh
	// token, or nil when the user is logged out. At most one fingerprint is
	// valid per user at any time.
	RefreshFingerprint *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the sanitized projection returned from signup, login, and
// refresh. It is built field by field rather than by stripping the full
// record, so fields added to User later do not leak by accident.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the caller-visible view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
