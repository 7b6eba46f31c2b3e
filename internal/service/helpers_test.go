package service

import (
	"testing"
	"time"

	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestAdmin(t *testing.T) *domain.User {
	t.Helper()
	admin, err := domain.NewAdmin("Admin", "admin@example.com", "secret123")
	require.NoError(t, err)
	return admin
}

// newTestAgents returns n agents with strictly increasing creation times.
func newTestAgents(t *testing.T, n int) []*domain.User {
	t.Helper()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	agents := make([]*domain.User, n)
	for i := range agents {
		a, err := domain.NewAgent(
			string(rune('A'+i)),
			string(rune('a'+i))+"@example.com",
			"+1555000000"+string(rune('0'+i)),
			"secret123",
		)
		require.NoError(t, err)
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		agents[i] = a
	}
	return agents
}
