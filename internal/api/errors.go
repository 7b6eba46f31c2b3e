package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasksplit/internal/api/shared"
	"github.com/phrazzld/tasksplit/internal/distribute"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/ingest"
	"github.com/phrazzld/tasksplit/internal/service"
	"github.com/phrazzld/tasksplit/internal/service/auth"
	"github.com/phrazzld/tasksplit/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Anything
// unrecognised is a 500.
func MapErrorToStatusCode(err error) int {
	var (
		parseErr    *ingest.ParseError
		rowErr      *ingest.RowError
		fieldErr    *domain.ValidationError
		validateErr validator.ValidationErrors
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrRegistrationClosed):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrAgentNotFound):
		return http.StatusNotFound

	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.As(err, &fieldErr),
		errors.As(err, &validateErr),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, ingest.ErrUnsupportedFileType),
		errors.Is(err, ingest.ErrEmptyInput),
		errors.As(err, &parseErr),
		errors.As(err, &rowErr),
		errors.Is(err, distribute.ErrNoAgents),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Parse and row
// errors carry only column names and row numbers, so their own text is used.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		parseErr    *ingest.ParseError
		rowErr      *ingest.RowError
		fieldErr    *domain.ValidationError
		validateErr validator.ValidationErrors
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrForbidden):
		return "Not authorized to perform this action"
	case errors.Is(err, service.ErrRegistrationClosed):
		return "Admin registration is disabled"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrAgentNotFound):
		return "Agent not found"

	case errors.As(err, &maxBytesErr):
		return fmt.Sprintf("File too large, the limit is %d bytes", maxBytesErr.Limit)

	case errors.Is(err, service.ErrInvalidStatus):
		return "Invalid status. Must be one of: " + statusList()
	case errors.As(err, &parseErr):
		return parseErr.Error()
	case errors.As(err, &rowErr):
		return rowErr.Error()
	case errors.Is(err, ingest.ErrUnsupportedFileType):
		return "Invalid file type, only CSV, XLS and XLSX files are allowed"
	case errors.Is(err, ingest.ErrEmptyInput):
		return "Uploaded file is empty or could not be parsed"
	case errors.Is(err, distribute.ErrNoAgents):
		return "No agents available to distribute tasks"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.As(err, &validateErr):
		return SanitizeValidationError(validateErr)
	case errors.As(err, &fieldErr):
		return fieldErr.Error()
	case errors.Is(err, domain.ErrValidation):
		return "Validation error: " + strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first failing field, without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) || len(validateErrs) == 0 {
		return "Validation error"
	}

	first := validateErrs[0]
	return fmt.Sprintf("Invalid %s: %s", first.Field(), getValidationTagMessage(first.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err. For 5xx
// responses fallback replaces the generic message when it is non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

func statusList() string {
	labels := make([]string, len(domain.TaskStatuses))
	for i, s := range domain.TaskStatuses {
		labels[i] = string(s)
	}
	return strings.Join(labels, ", ")
}
