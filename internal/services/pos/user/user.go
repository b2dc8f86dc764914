package user

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
)

var (
	// ErrInvalidEmail indicates a missing or malformed email address.
	ErrInvalidEmail = apperrors.New(apperrors.CodeUserInvalidEmail, "email is invalid")
	// ErrEmptyName indicates a missing display name.
	ErrEmptyName = apperrors.New(apperrors.CodeUserEmptyName, "name is required")
	// ErrInvalidRole indicates a role outside admin, manager and user.
	ErrInvalidRole = apperrors.New(apperrors.CodeUserInvalidRole, "role must be admin, manager, or user")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = apperrors.New(apperrors.CodeUserInvalidCredentials, "invalid credentials")
	// ErrWeakPassword indicates a password shorter than MinPasswordLength.
	ErrWeakPassword = apperrors.WithMetadata(apperrors.CodeUserWeakPassword, "password is too short",
		map[string]string{"min": strconv.Itoa(MinPasswordLength)})
)

// Role is the coarse access level of a staff account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Valid reports whether r is one of the stored roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole normalizes s into a Role.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// User is a staff account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Permissions  Permissions
	CreatedAt    time.Time
	LastLogin    *time.Time
	DeletedAt    *time.Time
}

// Active reports whether the account has not been soft-deleted.
func (u User) Active() bool {
	return u.DeletedAt == nil
}

// Can reports whether an active account holds permission.
func (u User) Can(permission string) bool {
	return u.Active() && u.Permissions.Has(permission)
}

// CreateUserInput describes a new staff account. A nil Permissions takes the
// role's defaults.
type CreateUserInput struct {
	Email       string
	Password    string
	Name        string
	Role        Role
	Permissions Permissions
}

// NormalizeCreateUserInput trims and validates input before hashing.
func NormalizeCreateUserInput(input CreateUserInput) (CreateUserInput, error) {
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return CreateUserInput{}, err
	}
	input.Email = email
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateUserInput{}, ErrEmptyName
	}
	role, err := ParseRole(string(input.Role))
	if err != nil {
		return CreateUserInput{}, err
	}
	input.Role = role
	if len(input.Password) < MinPasswordLength {
		return CreateUserInput{}, ErrWeakPassword
	}
	if input.Permissions == nil {
		input.Permissions = DefaultPermissions(role)
	}
	return input, nil
}

// NewUser builds an unsaved user from input, hashing the password.
func NewUser(input CreateUserInput, now func() time.Time) (User, error) {
	if now == nil {
		now = time.Now
	}
	normalized, err := NormalizeCreateUserInput(input)
	if err != nil {
		return User{}, err
	}
	hash, err := HashPassword(normalized.Password)
	if err != nil {
		return User{}, err
	}
	return User{
		Email:        normalized.Email,
		PasswordHash: hash,
		Name:         normalized.Name,
		Role:         normalized.Role,
		Permissions:  normalized.Permissions,
		CreatedAt:    now().UTC(),
	}, nil
}

// NormalizeEmail lower-cases and validates a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
