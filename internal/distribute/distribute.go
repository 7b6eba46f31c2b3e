// Package distribute assigns parsed contacts to agents.
package distribute

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/ingest"
)

// ErrNoAgents is returned when there is nobody to distribute tasks to.
var ErrNoAgents = errors.New("no agents available to distribute tasks")

// RoundRobin creates one pending task per contact, cycling through agents in
// the given order: contact i goes to agents[i mod len(agents)]. Each agent
// ends up with either floor(M/N) or ceil(M/N) tasks, and the same inputs
// always produce the same assignment.
func RoundRobin(contacts []ingest.Contact, agents []uuid.UUID, batchID uuid.UUID) ([]*domain.Task, error) {
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}

	tasks := make([]*domain.Task, 0, len(contacts))
	cursor := 0
	for i, c := range contacts {
		task, err := domain.NewTask(batchID, c.FirstName, c.Phone, c.Notes, agents[cursor])
		if err != nil {
			return nil, fmt.Errorf("contact %d: %w", i+1, err)
		}
		tasks = append(tasks, task)
		cursor = (cursor + 1) % len(agents)
	}

	return tasks, nil
}

// Counts returns how many tasks each agent received.
func Counts(tasks []*domain.Task) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, t := range tasks {
		counts[t.AssignedTo]++
	}
	return counts
}
