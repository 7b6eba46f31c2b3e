package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyMobile         = errors.New("mobile cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

// User is an account that can authenticate against the API. Admins manage
// agents and distribute uploads; agents work the tasks assigned to them.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Mobile         string    `json:"mobile,omitempty"`
	Role           Role      `json:"role"`
	Password       string    `json:"-"` // Plaintext, only set while creating or changing a password
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a user with the given role. The plaintext password is kept
// on the struct and must be hashed by the store before it is persisted.
func NewUser(name, email, mobile, password string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Mobile:    strings.TrimSpace(mobile),
		Role:      role,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NewAgent creates a user with the agent role. Agents must have a mobile number.
func NewAgent(name, email, mobile, password string) (*User, error) {
	if strings.TrimSpace(mobile) == "" {
		return nil, ErrEmptyMobile
	}
	return NewUser(name, email, mobile, password, RoleAgent)
}

// NewAdmin creates a user with the admin role.
func NewAdmin(name, email, password string) (*User, error) {
	return NewUser(name, email, "", password, RoleAdmin)
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < minPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > maxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from the store carry only the hash.
		return ErrEmptyPassword
	}

	return nil
}

// IsAgent reports whether the user holds the agent role.
func (u *User) IsAgent() bool {
	return u.Role == RoleAgent
}

// Can reports whether the user's role grants the capability.
func (u *User) Can(c Capability) bool {
	return u != nil && u.Role.Can(c)
}

// validateEmailFormat accepts a bare address ("a@b.c"), rejecting display-name forms.
func validateEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}
