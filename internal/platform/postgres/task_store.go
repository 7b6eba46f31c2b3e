package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/platform/logger"
	"github.com/phrazzld/tasksplit/internal/store"
)

// replaceLockKey identifies the advisory lock that serialises ReplaceAll.
const replaceLockKey int64 = 0x7461736b73706c74

// insertChunkSize bounds rows per INSERT so the statement stays below
// PostgreSQL's 65535 bind parameter limit.
const insertChunkSize = 1000

const taskColumns = `t.id, t.batch_id, t.first_name, t.phone, t.notes, t.assigned_to, t.status, t.created_at, t.updated_at`

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
// If logger is nil, slog.Default() is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// ReplaceAll implements store.TaskStore.ReplaceAll.
// On a *sql.DB it opens its own transaction; on a store built over a *sql.Tx
// it joins the caller's transaction.
func (s *PostgresTaskStore) ReplaceAll(
	ctx context.Context,
	batch *domain.UploadBatch,
	tasks []*domain.Task,
) error {
	for _, task := range tasks {
		if task.BatchID != batch.ID {
			return fmt.Errorf("%w: task %s does not belong to batch %s",
				store.ErrInvalidEntity, task.ID, batch.ID)
		}
		if err := task.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	switch db := s.db.(type) {
	case *sql.DB:
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.replaceAll(ctx, tx, batch, tasks)
		})
	case *sql.Tx:
		return s.replaceAll(ctx, db, batch, tasks)
	default:
		return fmt.Errorf("ReplaceAll requires *sql.DB or *sql.Tx, got %T", s.db)
	}
}

func (s *PostgresTaskStore) replaceAll(
	ctx context.Context,
	tx store.DBTX,
	batch *domain.UploadBatch,
	tasks []*domain.Task,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("batch_id", batch.ID.String()))

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, replaceLockKey); err != nil {
		log.Error("failed to acquire replace lock", slog.String("error", err.Error()))
		return store.NewStoreError("task", "replace", "acquire lock", err)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO upload_batches (id, uploaded_by, filename, row_count, agent_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, batch.ID, batch.UploadedBy, batch.Filename, batch.RowCount, batch.AgentCount, batch.CreatedAt)
	if err != nil {
		log.Error("failed to insert upload batch", slog.String("error", err.Error()))
		return store.NewStoreError("task", "replace", "insert batch", MapError(err))
	}

	for start := 0; start < len(tasks); start += insertChunkSize {
		end := min(start+insertChunkSize, len(tasks))
		if err := insertTasks(ctx, tx, start, tasks[start:end]); err != nil {
			log.Error("failed to insert tasks",
				slog.Int("offset", start),
				slog.String("error", err.Error()))
			return store.NewStoreError("task", "replace", fmt.Sprintf("insert rows from %d", start), MapError(err))
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE batch_id <> $1`, batch.ID)
	if err != nil {
		log.Error("failed to delete previous tasks", slog.String("error", err.Error()))
		return store.NewStoreError("task", "replace", "delete previous tasks", MapError(err))
	}
	removed, _ := result.RowsAffected()

	log.Info("task set replaced",
		slog.Int("task_count", len(tasks)),
		slog.Int64("removed", removed))
	return nil
}

// insertTasks writes one multi-row INSERT. offset is the position of the
// first task within the batch.
func insertTasks(ctx context.Context, db store.DBTX, offset int, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	const cols = 10
	var b strings.Builder
	b.WriteString(`INSERT INTO tasks (id, batch_id, position, first_name, phone, notes, assigned_to, status, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(tasks)*cols)
	for i, t := range tasks {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * cols
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9, n+10)
		args = append(args,
			t.ID, t.BatchID, offset+i, t.FirstName, t.Phone, t.Notes,
			t.AssignedTo, t.Status, t.CreatedAt, t.UpdatedAt)
	}

	_, err := db.ExecContext(ctx, b.String(), args...)
	return err
}

// ListByAssignee implements store.TaskStore.ListByAssignee.
func (s *PostgresTaskStore) ListByAssignee(ctx context.Context, agentID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.assigned_to = $1 ORDER BY t.position`
	rows, err := s.db.QueryContext(ctx, query, agentID)
	if err != nil {
		log.Error("failed to list tasks for agent",
			slog.String("agent_id", agentID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// ListWithAssignees implements store.TaskStore.ListWithAssignees.
func (s *PostgresTaskStore) ListWithAssignees(ctx context.Context) ([]*domain.TaskWithAssignee, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `, u.id, u.name, u.email
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assigned_to
		ORDER BY t.position
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list distributed tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]*domain.TaskWithAssignee, 0)
	for rows.Next() {
		var (
			item      domain.TaskWithAssignee
			status    string
			userID    uuid.NullUUID
			userName  sql.NullString
			userEmail sql.NullString
		)
		err := rows.Scan(
			&item.ID,
			&item.BatchID,
			&item.FirstName,
			&item.Phone,
			&item.Notes,
			&item.AssignedTo,
			&status,
			&item.CreatedAt,
			&item.UpdatedAt,
			&userID,
			&userName,
			&userEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		item.Status = domain.TaskStatus(status)
		if userID.Valid {
			item.Assignee = &domain.Assignee{
				ID:    userID.UUID,
				Name:  userName.String,
				Email: userEmail.String,
			}
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return result, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return task, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus.
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.Valid() {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidTaskStatus)
	}

	query := `
		UPDATE tasks t
		SET status = $1, updated_at = $2
		WHERE t.id = $3
		RETURNING ` + taskColumns
	task, err := scanTask(s.db.QueryRowContext(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task status",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Info("task status updated",
		slog.String("task_id", id.String()),
		slog.String("status", string(status)))
	return task, nil
}

// LatestBatch implements store.TaskStore.LatestBatch.
func (s *PostgresTaskStore) LatestBatch(ctx context.Context) (*domain.UploadBatch, error) {
	var batch domain.UploadBatch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, uploaded_by, filename, row_count, agent_count, created_at
		FROM upload_batches
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(
		&batch.ID,
		&batch.UploadedBy,
		&batch.Filename,
		&batch.RowCount,
		&batch.AgentCount,
		&batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBatchNotFound
		}
		return nil, MapError(err)
	}
	return &batch, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string
	err := row.Scan(
		&task.ID,
		&task.BatchID,
		&task.FirstName,
		&task.Phone,
		&task.Notes,
		&task.AssignedTo,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
