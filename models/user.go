// Package models defines the registry's domain types.
//
// Each model is the Go shape of a table row and, through its json tags, of
// the API payloads. Request types carry their own Validate method so the
// service layer can reject bad input before touching the store.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Roles. Stored with the ROLE_ prefix.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

const rolePrefix = "ROLE_"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailRegex returns the pattern used to validate e-mail addresses.
func EmailRegex() *regexp.Regexp { return emailRegex }

// User is an account record.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never serialised
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}

// Principal returns the identity view of u used by the auth layer.
func (u *User) Principal() *Principal {
	return &Principal{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         NormalizeRole(u.Role),
		IsActive:     u.IsActive,
	}
}

// NormalizeRole maps free-form role input to a stored role:
// blank becomes ROLE_USER, "admin" becomes ROLE_ADMIN, and values already
// carrying the ROLE_ prefix are kept as they are.
func NormalizeRole(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return RoleUser
	}
	if strings.HasPrefix(role, rolePrefix) {
		return role
	}
	return rolePrefix + strings.ToUpper(role)
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate trims the request in place and checks it.
//   - Username: required, at most 50 characters, no whitespace
//   - Email: required, valid address
//   - Password: at least MinPasswordLength characters
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if utf8.RuneCountInString(r.Username) > 50 {
		return fmt.Errorf("username must be at most 50 characters")
	}
	if strings.ContainsAny(r.Username, " \t\r\n") {
		return fmt.Errorf("username must not contain whitespace")
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("please provide a valid email")
	}

	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	r.Role = NormalizeRole(r.Role)
	return nil
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
