package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasksplit/internal/api/shared"
	"github.com/phrazzld/tasksplit/internal/service"
)

// AgentHandler serves the agent management endpoints. Routes are expected to
// be guarded by the manage_agents capability.
type AgentHandler struct {
	agentService service.AgentService
	logger       *slog.Logger
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(agentService service.AgentService, logger *slog.Logger) *AgentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentHandler{
		agentService: agentService,
		logger:       logger.With("component", "agent_handler"),
	}
}

// List handles GET /agents.
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agentService.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list agents")
		return
	}

	resp := make([]AgentResponse, len(agents))
	for i, a := range agents {
		resp[i] = agentResponse(a)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create handles POST /agents.
func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	agent, err := h.agentService.Create(r.Context(), service.CreateAgentInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create agent")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, agentResponse(agent))
}

// Update handles PUT /agents/{id}.
func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateAgentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	agent, err := h.agentService.Update(r.Context(), id, service.AgentUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update agent")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, agentResponse(agent))
}

// Delete handles DELETE /agents/{id}. The agent's tasks are kept.
func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.agentService.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete agent")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Agent removed"})
}
