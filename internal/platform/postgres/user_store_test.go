package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userRowColumns = []string{
	"id", "name", "email", "mobile", "role", "hashed_password", "created_at", "updated_at",
}

func newMockUserStore(t *testing.T) (*PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewPostgresUserStore(db, bcrypt.MinCost, nil), mock
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("hashes password and inserts", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		user, err := domain.NewAgent("Ada", "ada@example.com", "+15550100", "secret123")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, "Ada", "ada@example.com", "+15550100", "agent",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.Empty(t, user.Password, "plaintext should be cleared")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret123")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		user, err := domain.NewAdmin("Root", "root@example.com", "secret123")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

		err = s.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.True(t, store.IsDuplicateError(err))
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		s, _ := newMockUserStore(t)
		user := &domain.User{ID: uuid.New(), Name: "x", Email: "not-an-email", Role: domain.RoleAgent, Password: "secret123"}

		err := s.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestPostgresUserStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery("SELECT .* FROM users WHERE id").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "Ada", "ada@example.com", "+15550100", "agent", "$2a$hash", now, now))

		user, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, domain.RoleAgent, user.Role)
		assert.Equal(t, "$2a$hash", user.HashedPassword)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		id := uuid.New()

		mock.ExpectQuery("SELECT .* FROM users WHERE id").
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		user, err := s.GetByID(context.Background(), id)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	t.Parallel()

	s, mock := newMockUserStore(t)
	mock.ExpectQuery("FROM users WHERE LOWER\\(email\\) = LOWER\\(\\$1\\)").
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := s.GetByEmail(context.Background(), "  ada@example.com ")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPostgresUserStore_ListByRole(t *testing.T) {
	t.Parallel()

	s, mock := newMockUserStore(t)
	first, second := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM users WHERE role = \\$1 ORDER BY created_at, id").
		WithArgs("agent").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(first.String(), "A", "a@example.com", "1", "agent", "h", now, now).
			AddRow(second.String(), "B", "b@example.com", "2", "agent", "h", now.Add(time.Second), now))

	agents, err := s.ListByRole(context.Background(), domain.RoleAgent)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, first, agents[0].ID)
	assert.Equal(t, second, agents[1].ID)
}

func TestPostgresUserStore_Update(t *testing.T) {
	t.Parallel()

	existing := func() *domain.User {
		return &domain.User{
			ID:             uuid.New(),
			Name:           "Ada",
			Email:          "ada@example.com",
			Mobile:         "1",
			Role:           domain.RoleAgent,
			HashedPassword: "$2a$old",
		}
	}

	t.Run("keeps hash without new password", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		user := existing()

		mock.ExpectExec("UPDATE users").
			WithArgs("Ada", "ada@example.com", "1", "$2a$old", sqlmock.AnyArg(), user.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), user))
	})

	t.Run("rehashes new password", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		user := existing()
		user.Password = "newsecret"

		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), user))
		assert.NotEqual(t, "$2a$old", user.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("newsecret")))
	})

	t.Run("missing user", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), existing()), store.ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		mock.ExpectExec("UPDATE users").WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		assert.ErrorIs(t, s.Update(context.Background(), existing()), store.ErrEmailExists)
	})
}

func TestPostgresUserStore_Delete(t *testing.T) {
	t.Parallel()

	t.Run("deleted", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		id := uuid.New()
		mock.ExpectExec("DELETE FROM users WHERE id").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), id))
	})

	t.Run("missing", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		mock.ExpectExec("DELETE FROM users WHERE id").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), uuid.New()), store.ErrUserNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		s, mock := newMockUserStore(t)
		boom := errors.New("boom")
		mock.ExpectExec("DELETE FROM users WHERE id").WillReturnError(boom)

		err := s.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, boom)
		assert.False(t, store.IsNotFoundError(err))
	})
}
