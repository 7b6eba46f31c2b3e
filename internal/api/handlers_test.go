package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/api/middleware"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/mocks"
	"github.com/phrazzld/tasksplit/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUploadBytes = 1 << 10

type testEnv struct {
	router http.Handler
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
	admin  *domain.User
	agents []*domain.User
}

// newTestEnv wires real services over in-memory mocks behind the same
// middleware chain the server uses.
func newTestEnv(t *testing.T, agentCount int, allowRegistration bool) *testEnv {
	t.Helper()

	admin, err := domain.NewAdmin("Admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	seed := []*domain.User{admin}

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	agents := make([]*domain.User, agentCount)
	for i := range agents {
		agents[i], err = domain.NewAgent(
			fmt.Sprintf("Agent %c", 'A'+i),
			fmt.Sprintf("agent%d@example.com", i),
			fmt.Sprintf("+1555000%04d", i),
			"secret123",
		)
		require.NoError(t, err)
		agents[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		seed = append(seed, agents[i])
	}

	users := mocks.NewMockUserStore(seed...)
	tasks := mocks.NewMockTaskStore(users)

	authService := service.NewAuthService(users, &mocks.MockJWTService{}, &mocks.MockPasswordVerifier{}, allowRegistration, nil)
	authHandler := NewAuthHandler(authService, nil)
	agentHandler := NewAgentHandler(service.NewAgentService(users, nil, nil), nil)
	listHandler := NewListHandler(service.NewTaskService(tasks, users, nil, nil), testMaxUploadBytes, nil)
	authMiddleware := middleware.NewAuthMiddleware(authService, nil)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(nil))
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/register-admin", authHandler.RegisterAdmin)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Route("/agents", func(r chi.Router) {
			r.Use(middleware.RequireCapability(domain.CapManageAgents))
			r.Get("/", agentHandler.List)
			r.Post("/", agentHandler.Create)
			r.Put("/{id}", agentHandler.Update)
			r.Delete("/{id}", agentHandler.Delete)
		})
		r.Route("/lists", func(r chi.Router) {
			r.With(middleware.RequireCapability(domain.CapDistributeTasks)).Post("/upload", listHandler.Upload)
			r.With(middleware.RequireCapability(domain.CapViewAllTasks)).Get("/distributed", listHandler.Distributed)
			r.With(middleware.RequireCapability(domain.CapViewOwnTasks)).Get("/my-tasks", listHandler.MyTasks)
			r.With(middleware.RequireCapability(domain.CapUpdateAnyTask, domain.CapUpdateOwnTask)).
				Put("/tasks/{id}/status", listHandler.UpdateStatus)
		})
	})

	return &testEnv{router: r, users: users, tasks: tasks, admin: admin, agents: agents}
}

func (e *testEnv) do(t *testing.T, method, path string, as *domain.User, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+mocks.TokenFor(as.ID))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, as *domain.User, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, as, body, "application/json")
}

func (e *testEnv) upload(t *testing.T, as *domain.User, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, UploadFieldName, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return e.do(t, http.MethodPost, "/lists/upload", as, &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]any](t, rec)
	assert.NotEmpty(t, body["trace_id"])
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthHandler(t *testing.T) {
	t.Parallel()

	t.Run("login", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 1, false)

		tests := []struct {
			name       string
			payload    map[string]any
			wantStatus int
		}{
			{"valid", map[string]any{"email": "admin@example.com", "password": "secret123"}, http.StatusOK},
			{"wrong password", map[string]any{"email": "admin@example.com", "password": "nope123"}, http.StatusUnauthorized},
			{"unknown email", map[string]any{"email": "ghost@example.com", "password": "secret123"}, http.StatusUnauthorized},
			{"invalid email", map[string]any{"email": "admin", "password": "secret123"}, http.StatusBadRequest},
			{"missing password", map[string]any{"email": "admin@example.com"}, http.StatusBadRequest},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				rec := env.doJSON(t, http.MethodPost, "/auth/login", nil, tt.payload)
				require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
				if tt.wantStatus == http.StatusOK {
					resp := decode[AuthResponse](t, rec)
					assert.Equal(t, env.admin.ID, resp.ID)
					assert.Equal(t, domain.RoleAdmin, resp.Role)
					assert.Equal(t, mocks.TokenFor(env.admin.ID), resp.Token)
				}
			})
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 0, false)
		rec := env.do(t, http.MethodPost, "/auth/login", nil, bytes.NewBufferString("{"), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request format", errorMessage(t, rec))
	})

	t.Run("register admin", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 0, true)
		payload := map[string]any{"name": "Root", "email": "root@example.com", "password": "secret123"}

		rec := env.doJSON(t, http.MethodPost, "/auth/register-admin", nil, payload)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decode[AuthResponse](t, rec)
		assert.Equal(t, "Root", resp.Name)
		assert.NotContains(t, rec.Body.String(), "password")

		rec = env.doJSON(t, http.MethodPost, "/auth/register-admin", nil, payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email already exists", errorMessage(t, rec))
	})

	t.Run("register admin disabled", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 0, false)
		payload := map[string]any{"name": "Root", "email": "root@example.com", "password": "secret123"}

		rec := env.doJSON(t, http.MethodPost, "/auth/register-admin", nil, payload)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAgentHandler(t *testing.T) {
	t.Parallel()

	t.Run("agent cannot manage agents", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 1, false)
		rec := env.doJSON(t, http.MethodGet, "/agents", env.agents[0], nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 1, false)
		rec := env.doJSON(t, http.MethodGet, "/agents", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("crud", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 1, false)

		rec := env.doJSON(t, http.MethodPost, "/agents", env.admin, map[string]any{
			"name": "Dana", "email": "dana@example.com", "mobile": "+15551234567", "password": "secret123",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode[AgentResponse](t, rec)
		assert.Equal(t, "Dana", created.Name)

		rec = env.doJSON(t, http.MethodGet, "/agents", env.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "assword")
		listed := decode[[]AgentResponse](t, rec)
		require.Len(t, listed, 2)
		assert.Equal(t, env.agents[0].ID, listed[0].ID)

		rec = env.doJSON(t, http.MethodPut, "/agents/"+created.ID.String(), env.admin, map[string]any{"mobile": "+15559999999"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[AgentResponse](t, rec)
		assert.Equal(t, "+15559999999", updated.Mobile)
		assert.Equal(t, "Dana", updated.Name)

		rec = env.doJSON(t, http.MethodDelete, "/agents/"+created.ID.String(), env.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Agent removed", decode[MessageResponse](t, rec).Message)

		rec = env.doJSON(t, http.MethodDelete, "/agents/"+created.ID.String(), env.admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 1, false)

		tests := []struct {
			name       string
			method     string
			path       string
			payload    map[string]any
			wantStatus int
		}{
			{"missing mobile", http.MethodPost, "/agents", map[string]any{
				"name": "Dana", "email": "dana@example.com", "password": "secret123",
			}, http.StatusBadRequest},
			{"duplicate email", http.MethodPost, "/agents", map[string]any{
				"name": "Dup", "email": env.agents[0].Email, "mobile": "1", "password": "secret123",
			}, http.StatusBadRequest},
			{"bad id", http.MethodPut, "/agents/not-a-uuid", map[string]any{"name": "X"}, http.StatusBadRequest},
			{"unknown id", http.MethodPut, "/agents/" + uuid.NewString(), map[string]any{"name": "X"}, http.StatusNotFound},
			{"admin id", http.MethodPut, "/agents/" + env.admin.ID.String(), map[string]any{"name": "X"}, http.StatusNotFound},
			{"bad email update", http.MethodPut, "/agents/" + env.agents[0].ID.String(), map[string]any{"email": "x"}, http.StatusBadRequest},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				rec := env.doJSON(t, tt.method, tt.path, env.admin, tt.payload)
				assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			})
		}
	})
}

func TestListHandler_Upload(t *testing.T) {
	t.Parallel()

	csvData := []byte("FirstName,Phone,Notes\nAda,0123456789,first\nBo,0200,\nCy,0300,third\n")

	t.Run("distributes rows round robin", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 2, false)

		rec := env.upload(t, env.admin, "contacts.csv", "text/csv", csvData)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[UploadResponse](t, rec)
		assert.Equal(t, 3, resp.TaskCount)
		assert.NotEqual(t, uuid.Nil, resp.BatchID)
		require.Len(t, resp.Assignments, 2)
		assert.Equal(t, 2, resp.Assignments[0].Count)
		assert.Equal(t, 1, resp.Assignments[1].Count)

		rec = env.doJSON(t, http.MethodGet, "/lists/distributed", env.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tasks := decode[[]map[string]any](t, rec)
		require.Len(t, tasks, 3)
		assert.Equal(t, "0123456789", tasks[0]["phone"])
		assignee := tasks[1]["assignedTo"].(map[string]any)
		assert.Equal(t, "Agent B", assignee["name"])
	})

	tests := []struct {
		name        string
		as          func(e *testEnv) *domain.User
		contentType string
		data        []byte
		wantStatus  int
		wantMsg     string
	}{
		{
			name:        "missing phone column",
			contentType: "text/csv",
			data:        []byte("FirstName,Notes\nAda,x\n"),
			wantStatus:  http.StatusBadRequest,
			wantMsg:     "missing required columns: phone. Expected: FirstName, Phone, Notes",
		},
		{
			name:        "unsupported type",
			contentType: "application/pdf",
			data:        []byte("%PDF-1.4"),
			wantStatus:  http.StatusBadRequest,
			wantMsg:     "Invalid file type, only CSV, XLS and XLSX files are allowed",
		},
		{
			name:        "csv text declared as xlsx",
			contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			data:        csvData,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "too large",
			contentType: "text/csv",
			data:        append([]byte("FirstName,Phone\n"), bytes.Repeat([]byte("Ada,0100\n"), 200)...),
			wantStatus:  http.StatusRequestEntityTooLarge,
		},
		{
			name:        "agent cannot upload",
			as:          func(e *testEnv) *domain.User { return e.agents[0] },
			contentType: "text/csv",
			data:        csvData,
			wantStatus:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, 2, false)
			as := env.admin
			if tt.as != nil {
				as = tt.as(env)
			}

			rec := env.upload(t, as, "contacts.csv", tt.contentType, tt.data)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errorMessage(t, rec))
			}
			assert.Empty(t, env.tasks.Tasks())
		})
	}

	t.Run("second upload reports the batch it replaced", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 2, false)

		rec := env.upload(t, env.admin, "contacts.csv", "text/csv", csvData)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "replaced_batch_id")
		first := decode[UploadResponse](t, rec)

		rec = env.upload(t, env.admin, "contacts.csv", "text/csv", csvData)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		second := decode[UploadResponse](t, rec)
		require.NotNil(t, second.ReplacedBatchID)
		assert.Equal(t, first.BatchID, *second.ReplacedBatchID)
	})

	t.Run("no agents", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 0, false)
		rec := env.upload(t, env.admin, "contacts.csv", "text/csv", csvData)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No agents available to distribute tasks", errorMessage(t, rec))
	})

	t.Run("missing file field", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, 1, false)
		rec := env.do(t, http.MethodPost, "/lists/upload", env.admin, bytes.NewBufferString("x"), "text/plain")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file uploaded", errorMessage(t, rec))
	})
}

func TestListHandler_Tasks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 2, false)
	csvData := []byte("FirstName,Phone\nAda,0100\nBo,0200\nCy,0300\n")
	rec := env.upload(t, env.admin, "contacts.csv", "text/csv", csvData)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored := env.tasks.Tasks()
	agentA, agentB := env.agents[0], env.agents[1]

	t.Run("agent lists own tasks", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/lists/my-tasks", agentA, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tasks := decode[[]domain.Task](t, rec)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Ada", tasks[0].FirstName)
		assert.Equal(t, "Cy", tasks[1].FirstName)
	})

	t.Run("admin cannot list own tasks", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/lists/my-tasks", env.admin, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("agent cannot list everything", func(t *testing.T) {
		rec := env.doJSON(t, http.MethodGet, "/lists/distributed", agentA, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	statusPath := func(id uuid.UUID) string { return "/lists/tasks/" + id.String() + "/status" }

	tests := []struct {
		name       string
		as         *domain.User
		path       string
		status     string
		wantStatus int
	}{
		{"agent updates own task", agentA, statusPath(stored[0].ID), "in-progress", http.StatusOK},
		{"agent updates another agent's task", agentA, statusPath(stored[1].ID), "completed", http.StatusForbidden},
		{"owner updates", agentB, statusPath(stored[1].ID), "completed", http.StatusOK},
		{"admin updates any task", env.admin, statusPath(stored[2].ID), "completed", http.StatusOK},
		{"admin sends unknown status", env.admin, statusPath(stored[2].ID), "archived", http.StatusBadRequest},
		{"missing status", agentA, statusPath(stored[0].ID), "", http.StatusBadRequest},
		{"unknown task", env.admin, statusPath(uuid.New()), "pending", http.StatusNotFound},
		{"bad task id", env.admin, "/lists/tasks/42/status", "pending", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := env.doJSON(t, http.MethodPut, tt.path, tt.as, map[string]any{"status": tt.status})
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				resp := decode[UpdateStatusResponse](t, rec)
				assert.Equal(t, "Task status updated", resp.Message)
				assert.Equal(t, domain.TaskStatus(tt.status), resp.Task.Status)
			}
		})
	}

	t.Run("deleted agent loses access", func(t *testing.T) {
		require.NoError(t, env.users.Delete(context.Background(), agentB.ID))
		rec := env.doJSON(t, http.MethodGet, "/lists/my-tasks", agentB, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = env.doJSON(t, http.MethodGet, "/lists/distributed", env.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tasks := decode[[]DistributedTaskResponse](t, rec)
		require.Len(t, tasks, 3)
		assert.Nil(t, tasks[1].AssignedTo)
	})
}
