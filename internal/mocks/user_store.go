package mocks

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	ListByRoleFn func(ctx context.Context, role domain.Role) ([]*domain.User, error)
	UpdateFn     func(ctx context.Context, user *domain.User) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	users []*domain.User
}

// NewMockUserStore creates a mock seeded with the given users.
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{}
	for _, u := range users {
		m.users = append(m.users, copyUser(u))
	}
	return m
}

var _ store.UserStore = (*MockUserStore)(nil)

func copyUser(u *domain.User) *domain.User {
	c := *u
	if c.Password != "" {
		c.HashedPassword = FakeHashPrefix + c.Password
		c.Password = ""
	}
	return &c
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrEmailExists
		}
	}
	stored := copyUser(user)
	user.HashedPassword, user.Password = stored.HashedPassword, ""
	m.users = append(m.users, stored)
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// ListByRole implements the UserStore interface, ordered by creation time then id.
func (m *MockUserStore) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if m.ListByRoleFn != nil {
		return m.ListByRoleFn(ctx, role)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.User, 0)
	for _, u := range m.users {
		if u.Role == role {
			c := *u
			result = append(result, &c)
		}
	}
	slices.SortStableFunc(result, func(a, b *domain.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return result, nil
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, u := range m.users {
		if u.ID == user.ID {
			idx = i
		} else if strings.EqualFold(u.Email, user.Email) {
			return store.ErrEmailExists
		}
	}
	if idx < 0 {
		return store.ErrUserNotFound
	}
	stored := copyUser(user)
	user.HashedPassword, user.Password = stored.HashedPassword, ""
	m.users[idx] = stored
	return nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID == id {
			m.users = slices.Delete(m.users, i, i+1)
			return nil
		}
	}
	return store.ErrUserNotFound
}

// WithTx implements the UserStore interface. The mock ignores transactions.
func (m *MockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}
