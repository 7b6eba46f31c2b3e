package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/distribute"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/ingest"
	"github.com/phrazzld/tasksplit/internal/metrics"
	"github.com/phrazzld/tasksplit/internal/platform/logger"
	"github.com/phrazzld/tasksplit/internal/store"
)

// UploadInput is a contact list file as received from the client.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Assignment summarises how many tasks one agent received.
type Assignment struct {
	AgentID   uuid.UUID `json:"agentId"`
	AgentName string    `json:"agentName"`
	Count     int       `json:"count"`
}

// UploadResult describes a completed distribution.
type UploadResult struct {
	Batch       *domain.UploadBatch
	TaskCount   int
	Assignments []Assignment // in distribution order
	// ReplacedBatchID is the batch that was current before this upload,
	// nil for the first upload.
	ReplacedBatchID *uuid.UUID
}

// TaskService provides the contact list and task operations.
type TaskService interface {
	// Upload parses the file, distributes its rows round-robin over all
	// agents and replaces the current task set.
	Upload(ctx context.Context, actor *domain.User, in UploadInput) (*UploadResult, error)

	// ListDistributed returns every task with its assignee.
	ListDistributed(ctx context.Context, actor *domain.User) ([]*domain.TaskWithAssignee, error)

	// ListOwn returns the tasks assigned to the actor.
	ListOwn(ctx context.Context, actor *domain.User) ([]*domain.Task, error)

	// UpdateStatus validates the status, loads the task, checks that the
	// actor may change it and saves the new status.
	UpdateStatus(ctx context.Context, actor *domain.User, taskID uuid.UUID, status string) (*domain.Task, error)
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	tasks   store.TaskStore
	users   store.UserStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService. m may be nil.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:   tasks,
		users:   users,
		metrics: m,
		logger:  logger.With("component", "task_service"),
	}
}

// Upload implements TaskService.Upload.
func (s *TaskServiceImpl) Upload(ctx context.Context, actor *domain.User, in UploadInput) (*UploadResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.Can(domain.CapDistributeTasks) {
		return nil, ErrForbidden
	}

	declared, err := ingest.FormatFromMIME(in.ContentType)
	if err != nil {
		s.metrics.ObserveUpload(metrics.ResultRejected, "unknown", 0)
		log.Debug("rejected upload with unsupported content type", "content_type", in.ContentType)
		return nil, err
	}
	format := ingest.ResolveFormat(declared, in.Data)

	result, err := s.distribute(ctx, actor, in, format)
	if err != nil {
		outcome := metrics.ResultRejected
		if !isClientUploadError(err) {
			outcome = metrics.ResultError
		}
		s.metrics.ObserveUpload(outcome, format.String(), 0)
		return nil, err
	}

	s.metrics.ObserveUpload(metrics.ResultSuccess, format.String(), result.TaskCount)
	log.Info("contact list distributed",
		"batch_id", result.Batch.ID,
		"format", format.String(),
		"task_count", result.TaskCount,
		"agent_count", len(result.Assignments),
		"replaced_batch_id", result.ReplacedBatchID)
	return result, nil
}

func (s *TaskServiceImpl) distribute(
	ctx context.Context,
	actor *domain.User,
	in UploadInput,
	format ingest.Format,
) (*UploadResult, error) {
	table, err := ingest.Parse(in.Data, format)
	if err != nil {
		return nil, err
	}
	contacts, err := table.Contacts()
	if err != nil {
		return nil, err
	}

	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	agentIDs := make([]uuid.UUID, len(agents))
	for i, a := range agents {
		agentIDs[i] = a.ID
	}

	batch := domain.NewUploadBatch(actor.ID, strings.TrimSpace(in.Filename))
	tasks, err := distribute.RoundRobin(contacts, agentIDs, batch.ID)
	if err != nil {
		return nil, err
	}
	batch.RowCount = len(tasks)
	batch.AgentCount = len(agents)

	var replaced *uuid.UUID
	previous, err := s.tasks.LatestBatch(ctx)
	switch {
	case errors.Is(err, store.ErrBatchNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load current batch: %w", err)
	default:
		replaced = &previous.ID
	}

	if err := s.tasks.ReplaceAll(ctx, batch, tasks); err != nil {
		return nil, fmt.Errorf("failed to store tasks: %w", err)
	}

	counts := distribute.Counts(tasks)
	assignments := make([]Assignment, len(agents))
	for i, a := range agents {
		assignments[i] = Assignment{AgentID: a.ID, AgentName: a.Name, Count: counts[a.ID]}
	}

	return &UploadResult{
		Batch:           batch,
		TaskCount:       len(tasks),
		Assignments:     assignments,
		ReplacedBatchID: replaced,
	}, nil
}

func isClientUploadError(err error) bool {
	var parseErr *ingest.ParseError
	var rowErr *ingest.RowError
	return errors.As(err, &parseErr) ||
		errors.As(err, &rowErr) ||
		errors.Is(err, ingest.ErrEmptyInput) ||
		errors.Is(err, ingest.ErrUnsupportedFileType) ||
		errors.Is(err, distribute.ErrNoAgents)
}

// ListDistributed implements TaskService.ListDistributed.
func (s *TaskServiceImpl) ListDistributed(ctx context.Context, actor *domain.User) ([]*domain.TaskWithAssignee, error) {
	if !actor.Can(domain.CapViewAllTasks) {
		return nil, ErrForbidden
	}

	tasks, err := s.tasks.ListWithAssignees(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list distributed tasks", "error", err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListOwn implements TaskService.ListOwn.
func (s *TaskServiceImpl) ListOwn(ctx context.Context, actor *domain.User) ([]*domain.Task, error) {
	if !actor.Can(domain.CapViewOwnTasks) {
		return nil, ErrForbidden
	}

	tasks, err := s.tasks.ListByAssignee(ctx, actor.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list agent tasks",
			"error", err,
			"agent_id", actor.ID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus implements TaskService.UpdateStatus.
func (s *TaskServiceImpl) UpdateStatus(
	ctx context.Context,
	actor *domain.User,
	taskID uuid.UUID,
	status string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	target, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		log.Error("failed to load task", "error", err, "task_id", taskID)
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	if !canUpdate(actor, task) {
		log.Warn("status update denied",
			"task_id", taskID,
			"actor_id", actorID(actor))
		return nil, ErrForbidden
	}

	updated, err := s.tasks.UpdateStatus(ctx, taskID, target)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		log.Error("failed to update task status", "error", err, "task_id", taskID)
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.metrics.IncStatusUpdate(string(target))
	return updated, nil
}

func canUpdate(actor *domain.User, task *domain.Task) bool {
	if actor.Can(domain.CapUpdateAnyTask) {
		return true
	}
	return actor.Can(domain.CapUpdateOwnTask) && task.IsAssignedTo(actor.ID)
}

func actorID(actor *domain.User) uuid.UUID {
	if actor == nil {
		return uuid.Nil
	}
	return actor.ID
}
