package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
)

// TaskStore defines the interface for task and upload batch persistence.
type TaskStore interface {
	// ReplaceAll records the batch and makes its tasks the entire task set.
	// Implementations must make the swap atomic for readers and serialise
	// concurrent callers.
	ReplaceAll(ctx context.Context, batch *domain.UploadBatch, tasks []*domain.Task) error

	// ListByAssignee returns the tasks assigned to agentID in upload order.
	ListByAssignee(ctx context.Context, agentID uuid.UUID) ([]*domain.Task, error)

	// ListWithAssignees returns every task with the assignee's name and
	// email attached. Assignee is nil for tasks whose agent was deleted.
	ListWithAssignees(ctx context.Context) ([]*domain.TaskWithAssignee, error)

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateStatus overwrites the status and returns the updated task.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (*domain.Task, error)

	// LatestBatch returns the most recent upload batch.
	// Returns ErrBatchNotFound when nothing has been uploaded yet.
	LatestBatch(ctx context.Context) (*domain.UploadBatch, error)
}
