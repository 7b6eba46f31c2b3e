package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(" Jane Admin ", "jane@example.com", "", "secret123", RoleAdmin)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Name != "Jane Admin" {
		t.Errorf("Expected trimmed name, got %q", user.Name)
	}

	if user.Password != "secret123" {
		t.Errorf("Expected plaintext password to be kept for hashing, got %q", user.Password)
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	// Test invalid email
	_, err = NewUser("Jane", "", "", "secret123", RoleAdmin)
	if err != ErrEmptyEmail {
		t.Errorf("Expected error %v, got %v", ErrEmptyEmail, err)
	}

	_, err = NewUser("Jane", "invalidemail", "", "secret123", RoleAdmin)
	if err != ErrInvalidEmail {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	// Test invalid password
	_, err = NewUser("Jane", "jane@example.com", "", "", RoleAdmin)
	if err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}

	_, err = NewUser("Jane", "jane@example.com", "", "abc", RoleAdmin)
	if err != ErrPasswordTooShort {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}

	_, err = NewUser("Jane", "jane@example.com", "", strings.Repeat("x", 73), RoleAdmin)
	if err != ErrPasswordTooLong {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooLong, err)
	}

	// Test invalid role
	_, err = NewUser("Jane", "jane@example.com", "", "secret123", Role("owner"))
	if err != ErrInvalidRole {
		t.Errorf("Expected error %v, got %v", ErrInvalidRole, err)
	}
}

func TestNewAgentRequiresMobile(t *testing.T) {
	t.Parallel()

	agent, err := NewAgent("Sam", "sam@example.com", "0123456789", "secret123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if agent.Role != RoleAgent {
		t.Errorf("Expected role %s, got %s", RoleAgent, agent.Role)
	}
	if agent.Mobile != "0123456789" {
		t.Errorf("Expected mobile to keep leading zero, got %q", agent.Mobile)
	}

	if _, err := NewAgent("Sam", "sam@example.com", "  ", "secret123"); err != ErrEmptyMobile {
		t.Errorf("Expected error %v, got %v", ErrEmptyMobile, err)
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	validUser := User{
		ID:             uuid.New(),
		Name:           "Sam",
		Email:          "sam@example.com",
		Role:           RoleAgent,
		HashedPassword: "$2a$10$hash",
	}

	if err := validUser.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalidUser := validUser
	invalidUser.ID = uuid.Nil
	if err := invalidUser.Validate(); err != ErrEmptyUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}

	invalidUser = validUser
	invalidUser.Name = ""
	if err := invalidUser.Validate(); err != ErrEmptyName {
		t.Errorf("Expected error %v, got %v", ErrEmptyName, err)
	}

	invalidUser = validUser
	invalidUser.Email = "Sam <sam@example.com>"
	if err := invalidUser.Validate(); err != ErrInvalidEmail {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	invalidUser = validUser
	invalidUser.HashedPassword = ""
	if err := invalidUser.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}
