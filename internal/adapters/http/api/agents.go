package api

import (
	"net/http"

	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/internal/domain/types"
)

type addAgentRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=254"`
	Mobile   string `json:"mobile" validate:"required,max=16"`
	Password string `json:"password" validate:"required,max=72"`
}

type agentCreatedResponse struct {
	Message string      `json:"message"`
	Agent   types.Agent `json:"agent"`
}

// AgentsHandler serves the agent directory.
type AgentsHandler struct {
	deps AgentDependencies
}

// NewAgentsHandler creates a new agents handler.
func NewAgentsHandler(deps AgentDependencies) *AgentsHandler {
	return &AgentsHandler{deps: deps}
}

// HandleAddAgent handles POST /api/agents/add.
func (h *AgentsHandler) HandleAddAgent(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_agent"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req addAgentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	agent, err := h.deps.AddAgent(r.Context(), model.AgentInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		fail(w, r, op, err)
		return
	}
	pub := types.FromAgent(agent)
	writeJSON(w, http.StatusCreated, agentCreatedResponse{Message: "Agent created", Agent: pub})
}

// HandleListAgents handles GET /api/agents, newest first.
func (h *AgentsHandler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_agents"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	agents, err := h.deps.ListAgents(r.Context())
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromAgents(agents))
}
