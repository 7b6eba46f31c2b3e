package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasksplit/internal/domain"
)

// Service sentinel errors. The API layer maps each of them to a status code
// with errors.Is.
var (
	// ErrTaskNotFound indicates the task id does not exist. Maps to 404.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAgentNotFound indicates the id does not resolve to a user with the
	// agent role. Maps to 404.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrForbidden indicates the actor lacks the capability for the action,
	// or is not the task's assignee. Maps to 403.
	ErrForbidden = errors.New("not authorized to perform this action")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// Maps to 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRegistrationClosed indicates public admin registration is disabled.
	// Maps to 403.
	ErrRegistrationClosed = errors.New("admin registration is disabled")

	// ErrInvalidStatus indicates a missing or unrecognised task status.
	// Maps to 400.
	ErrInvalidStatus = errors.New("invalid status")
)

// invalid marks a domain constructor error as a validation failure.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}
