package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	ReplaceAllFn        func(ctx context.Context, batch *domain.UploadBatch, tasks []*domain.Task) error
	ListByAssigneeFn    func(ctx context.Context, agentID uuid.UUID) ([]*domain.Task, error)
	ListWithAssigneesFn func(ctx context.Context) ([]*domain.TaskWithAssignee, error)
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateStatusFn      func(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (*domain.Task, error)
	LatestBatchFn       func(ctx context.Context) (*domain.UploadBatch, error)

	// Users resolves assignees for ListWithAssignees. May be nil.
	Users store.UserStore

	mu      sync.Mutex
	batches []*domain.UploadBatch
	tasks   []*domain.Task
}

// NewMockTaskStore creates an empty mock task store.
func NewMockTaskStore(users store.UserStore) *MockTaskStore {
	return &MockTaskStore{Users: users}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Tasks returns a copy of the current task set.
func (m *MockTaskStore) Tasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = *t
	}
	return out
}

// Seed replaces the task set without recording a batch.
func (m *MockTaskStore) Seed(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = nil
	for _, t := range tasks {
		c := *t
		m.tasks = append(m.tasks, &c)
	}
}

// ReplaceAll implements the TaskStore interface
func (m *MockTaskStore) ReplaceAll(ctx context.Context, batch *domain.UploadBatch, tasks []*domain.Task) error {
	if m.ReplaceAllFn != nil {
		return m.ReplaceAllFn(ctx, batch, tasks)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b := *batch
	m.batches = append(m.batches, &b)
	m.tasks = make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		c := *t
		m.tasks = append(m.tasks, &c)
	}
	return nil
}

// ListByAssignee implements the TaskStore interface
func (m *MockTaskStore) ListByAssignee(ctx context.Context, agentID uuid.UUID) ([]*domain.Task, error) {
	if m.ListByAssigneeFn != nil {
		return m.ListByAssigneeFn(ctx, agentID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Task, 0)
	for _, t := range m.tasks {
		if t.AssignedTo == agentID {
			c := *t
			result = append(result, &c)
		}
	}
	return result, nil
}

// ListWithAssignees implements the TaskStore interface
func (m *MockTaskStore) ListWithAssignees(ctx context.Context) ([]*domain.TaskWithAssignee, error) {
	if m.ListWithAssigneesFn != nil {
		return m.ListWithAssigneesFn(ctx)
	}

	tasks := m.Tasks()
	result := make([]*domain.TaskWithAssignee, 0, len(tasks))
	for _, t := range tasks {
		item := &domain.TaskWithAssignee{Task: t}
		if m.Users != nil {
			if u, err := m.Users.GetByID(ctx, t.AssignedTo); err == nil {
				item.Assignee = &domain.Assignee{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// UpdateStatus implements the TaskStore interface
func (m *MockTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (*domain.Task, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			t.Status = status
			t.UpdatedAt = time.Now().UTC()
			c := *t
			return &c, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// LatestBatch implements the TaskStore interface
func (m *MockTaskStore) LatestBatch(ctx context.Context) (*domain.UploadBatch, error) {
	if m.LatestBatchFn != nil {
		return m.LatestBatchFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.batches) == 0 {
		return nil, store.ErrBatchNotFound
	}
	b := *m.batches[len(m.batches)-1]
	return &b, nil
}
