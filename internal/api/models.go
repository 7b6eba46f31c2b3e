package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/service"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterAdminRequest defines the payload for the admin registration endpoint.
type RegisterAdminRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	Token string      `json:"token"`
}

// CreateAgentRequest defines the payload for creating an agent.
type CreateAgentRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Mobile   string `json:"mobile"   validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UpdateAgentRequest defines the payload for updating an agent. Omitted or
// empty fields are left unchanged.
type UpdateAgentRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
	Mobile   *string `json:"mobile,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
}

// AgentResponse is the public view of an agent.
type AgentResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse is returned after a successful distribution.
type UploadResponse struct {
	Message     string               `json:"message"`
	BatchID     uuid.UUID            `json:"batch_id"`
	TaskCount   int                  `json:"task_count"`
	Assignments []service.Assignment `json:"assignments"`
	// ReplacedBatchID is omitted on the first upload.
	ReplacedBatchID *uuid.UUID `json:"replaced_batch_id,omitempty"`
}

// DistributedTaskResponse is a task with its assignee details. AssignedTo is
// null when the agent has been deleted.
type DistributedTaskResponse struct {
	ID         uuid.UUID         `json:"id"`
	BatchID    uuid.UUID         `json:"batchId"`
	FirstName  string            `json:"firstName"`
	Phone      string            `json:"phone"`
	Notes      string            `json:"notes"`
	AssignedTo *domain.Assignee  `json:"assignedTo"`
	Status     domain.TaskStatus `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// UpdateStatusRequest defines the payload for a status change. The value is
// validated by the service so that an empty status yields the same message
// as an unknown one.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatusResponse is returned after a status change.
type UpdateStatusResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

func authResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		ID:    res.User.ID,
		Name:  res.User.Name,
		Email: res.User.Email,
		Role:  res.User.Role,
		Token: res.Token,
	}
}

func agentResponse(u *domain.User) AgentResponse {
	return AgentResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Mobile:    u.Mobile,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func distributedTaskResponse(t *domain.TaskWithAssignee) DistributedTaskResponse {
	return DistributedTaskResponse{
		ID:         t.ID,
		BatchID:    t.BatchID,
		FirstName:  t.FirstName,
		Phone:      t.Phone,
		Notes:      t.Notes,
		AssignedTo: t.Assignee,
		Status:     t.Status,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
