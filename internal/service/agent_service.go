package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/platform/logger"
	"github.com/phrazzld/tasksplit/internal/store"
)

// CreateAgentInput holds the fields of a new agent.
type CreateAgentInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

// AgentUpdate holds optional changes. Nil or blank fields are left unchanged.
type AgentUpdate struct {
	Name     *string
	Email    *string
	Mobile   *string
	Password *string
}

// AgentService manages users with the agent role.
type AgentService interface {
	// List returns all agents in distribution order.
	List(ctx context.Context) ([]*domain.User, error)

	// Create registers a new agent. Duplicate emails yield store.ErrEmailExists.
	Create(ctx context.Context, in CreateAgentInput) (*domain.User, error)

	// Update applies the non-empty fields of upd.
	Update(ctx context.Context, id uuid.UUID, upd AgentUpdate) (*domain.User, error)

	// Delete removes the agent. Its tasks are kept.
	Delete(ctx context.Context, id uuid.UUID) error
}

// AgentServiceImpl implements the AgentService interface
type AgentServiceImpl struct {
	users  store.UserStore
	db     *sql.DB
	logger *slog.Logger
}

// NewAgentService creates a new AgentService. Update and Delete run in a
// transaction on db when it is non-nil.
func NewAgentService(users store.UserStore, db *sql.DB, logger *slog.Logger) AgentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentServiceImpl{
		users:  users,
		db:     db,
		logger: logger.With("component", "agent_service"),
	}
}

// List implements AgentService.List.
func (s *AgentServiceImpl) List(ctx context.Context) ([]*domain.User, error) {
	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list agents", "error", err)
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// Create implements AgentService.Create.
func (s *AgentServiceImpl) Create(ctx context.Context, in CreateAgentInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	agent, err := domain.NewAgent(in.Name, in.Email, in.Mobile, in.Password)
	if err != nil {
		return nil, invalid(err)
	}

	if err := s.users.Create(ctx, agent); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create agent with existing email")
			return nil, err
		}
		log.Error("failed to create agent", "error", err)
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	log.Info("agent created", "agent_id", agent.ID)
	return agent, nil
}

// Update implements AgentService.Update.
func (s *AgentServiceImpl) Update(ctx context.Context, id uuid.UUID, upd AgentUpdate) (*domain.User, error) {
	var updated *domain.User
	err := s.inTx(ctx, func(ctx context.Context, users store.UserStore) error {
		agent, err := s.loadAgent(ctx, users, id)
		if err != nil {
			return err
		}

		apply(&agent.Name, upd.Name)
		apply(&agent.Email, upd.Email)
		apply(&agent.Mobile, upd.Mobile)
		if upd.Password != nil && *upd.Password != "" {
			agent.Password = *upd.Password
		}
		if err := agent.Validate(); err != nil {
			return invalid(err)
		}

		if err := users.Update(ctx, agent); err != nil {
			if store.IsNotFoundError(err) {
				return ErrAgentNotFound
			}
			return err
		}
		updated = agent
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("agent updated", "agent_id", id)
	return updated, nil
}

// Delete implements AgentService.Delete.
func (s *AgentServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.inTx(ctx, func(ctx context.Context, users store.UserStore) error {
		if _, err := s.loadAgent(ctx, users, id); err != nil {
			return err
		}
		if err := users.Delete(ctx, id); err != nil {
			if store.IsNotFoundError(err) {
				return ErrAgentNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("agent deleted", "agent_id", id)
	return nil
}

// loadAgent returns ErrAgentNotFound for unknown ids and for non-agent users.
func (s *AgentServiceImpl) loadAgent(ctx context.Context, users store.UserStore, id uuid.UUID) (*domain.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}
	if !user.IsAgent() {
		return nil, ErrAgentNotFound
	}
	return user, nil
}

func (s *AgentServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context, users store.UserStore) error) error {
	if s.db == nil {
		return fn(ctx, s.users)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.users.WithTx(tx))
	})
}

func apply(field *string, value *string) {
	if value == nil {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		*field = v
	}
}
