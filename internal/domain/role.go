package domain

import "fmt"

// Role is the closed set of user roles.
type Role string

// Recognised roles.
const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Capability names an action that a role may or may not perform.
type Capability string

// Capabilities checked by the service and API layers.
const (
	CapManageAgents    Capability = "manage_agents"
	CapDistributeTasks Capability = "distribute_tasks"
	CapViewAllTasks    Capability = "view_all_tasks"
	CapViewOwnTasks    Capability = "view_own_tasks"
	CapUpdateAnyTask   Capability = "update_any_task"
	CapUpdateOwnTask   Capability = "update_own_task"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageAgents:    true,
		CapDistributeTasks: true,
		CapViewAllTasks:    true,
		CapUpdateAnyTask:   true,
	},
	RoleAgent: {
		CapViewOwnTasks:  true,
		CapUpdateOwnTask: true,
	},
}

// ParseRole converts a stored role label into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
