package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

// Possible task status values. Any state may move to any other.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists the recognised statuses in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// Task validation errors
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskBatchID = errors.New("task batch ID cannot be empty")
	ErrEmptyFirstName   = errors.New("first name cannot be empty")
	ErrEmptyPhone       = errors.New("phone cannot be empty")
	ErrEmptyAssignedTo  = errors.New("task must be assigned to an agent")
)

// Task is one distributed contact record. Phone is kept as text so leading
// zeros survive.
type Task struct {
	ID         uuid.UUID  `json:"id"`
	BatchID    uuid.UUID  `json:"batchId"`
	FirstName  string     `json:"firstName"`
	Phone      string     `json:"phone"`
	Notes      string     `json:"notes"`
	AssignedTo uuid.UUID  `json:"assignedTo"`
	Status     TaskStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Assignee is the subset of agent details attached to a listed task.
type Assignee struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// TaskWithAssignee pairs a task with its assignee. Assignee is nil when the
// assigned agent has since been deleted.
type TaskWithAssignee struct {
	Task
	Assignee *Assignee
}

// NewTask creates a pending task in the given batch.
func NewTask(batchID uuid.UUID, firstName, phone, notes string, assignedTo uuid.UUID) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:         uuid.New(),
		BatchID:    batchID,
		FirstName:  firstName,
		Phone:      phone,
		Notes:      notes,
		AssignedTo: assignedTo,
		Status:     TaskStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.BatchID == uuid.Nil {
		return ErrEmptyTaskBatchID
	}
	if t.FirstName == "" {
		return ErrEmptyFirstName
	}
	if t.Phone == "" {
		return ErrEmptyPhone
	}
	if t.AssignedTo == uuid.Nil {
		return ErrEmptyAssignedTo
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	return nil
}

// IsAssignedTo reports whether the task belongs to the given agent.
func (t *Task) IsAssignedTo(agentID uuid.UUID) bool {
	return agentID != uuid.Nil && t.AssignedTo == agentID
}

// ParseTaskStatus converts a requested status label. Empty and unknown
// labels fail with ErrInvalidTaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		if s == "" {
			return "", fmt.Errorf("%w: status is required", ErrInvalidTaskStatus)
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskStatus, s)
	}
	return status, nil
}

// Valid reports whether s is a recognised status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}
