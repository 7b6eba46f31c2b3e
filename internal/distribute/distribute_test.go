package distribute

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contacts(n int) []ingest.Contact {
	out := make([]ingest.Contact, n)
	for i := range out {
		out[i] = ingest.Contact{
			FirstName: fmt.Sprintf("contact-%d", i+1),
			Phone:     fmt.Sprintf("0%09d", i+1),
		}
	}
	return out
}

func agents(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestRoundRobinThreeRowsTwoAgents(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	batchID := uuid.New()

	tasks, err := RoundRobin(contacts(3), []uuid.UUID{a, b}, batchID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, a, tasks[0].AssignedTo)
	assert.Equal(t, b, tasks[1].AssignedTo)
	assert.Equal(t, a, tasks[2].AssignedTo)

	for i, task := range tasks {
		assert.Equal(t, batchID, task.BatchID)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, fmt.Sprintf("contact-%d", i+1), task.FirstName, "row order is preserved")
	}
	assert.Equal(t, "0000000001", tasks[0].Phone)
}

func TestRoundRobinEvenSplit(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 7; n++ {
		for m := 0; m <= 30; m++ {
			t.Run(fmt.Sprintf("agents=%d/rows=%d", n, m), func(t *testing.T) {
				pool := agents(n)
				tasks, err := RoundRobin(contacts(m), pool, uuid.New())
				require.NoError(t, err)
				require.Len(t, tasks, m)

				counts := Counts(tasks)
				lo, hi := m/n, (m+n-1)/n
				for _, id := range pool {
					got := counts[id]
					assert.True(t, got == lo || got == hi,
						"agent got %d tasks, want %d or %d", got, lo, hi)
				}
			})
		}
	}
}

func TestRoundRobinDeterministic(t *testing.T) {
	t.Parallel()

	pool := agents(4)
	rows := contacts(11)

	first, err := RoundRobin(rows, pool, uuid.New())
	require.NoError(t, err)
	second, err := RoundRobin(rows, pool, uuid.New())
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].AssignedTo, second[i].AssignedTo)
		assert.Equal(t, pool[i%len(pool)], first[i].AssignedTo)
	}
}

func TestRoundRobinNoAgents(t *testing.T) {
	t.Parallel()

	_, err := RoundRobin(contacts(2), nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoAgents)
}

func TestRoundRobinInvalidContact(t *testing.T) {
	t.Parallel()

	rows := []ingest.Contact{{FirstName: "Ada", Phone: "1"}, {FirstName: "", Phone: "2"}}
	_, err := RoundRobin(rows, agents(1), uuid.New())
	assert.ErrorIs(t, err, domain.ErrEmptyFirstName)
}
