// Package types contains the JSON shapes exchanged over the HTTP API
package types

import (
	"time"

	"github.com/okian/leadsplit/internal/domain/model"
)

// Agent is the public view of an agent; it never carries the password hash.
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// ListItem is one lead inside an agent's distribution.
type ListItem struct {
	FirstName string `json:"firstName"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// AgentDistribution is one entry of GET /api/lists.
type AgentDistribution struct {
	Agent Agent      `json:"agent"`
	Count int        `json:"count"`
	Items []ListItem `json:"items"`
}

// UploadResponse is returned by POST /api/lists/upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Counts   []int  `json:"counts"`
	Total    int    `json:"total"`
	Rejected int    `json:"rejected"`
}

// User is the public view of an account.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// FromAgent converts a domain agent into its public view.
func FromAgent(a model.Agent) Agent {
	return Agent{ID: a.ID, Name: a.Name, Email: a.Email, Mobile: a.Mobile, CreatedAt: a.CreatedAt}
}

// FromAgents converts a slice of domain agents.
func FromAgents(agents []model.Agent) []Agent {
	out := make([]Agent, len(agents))
	for i, a := range agents {
		out[i] = FromAgent(a)
	}
	return out
}

// FromDistribution converts the aggregated read model. The agent creation
// time is not part of this response.
func FromDistribution(views []model.AgentDistribution) []AgentDistribution {
	out := make([]AgentDistribution, len(views))
	for i, v := range views {
		items := make([]ListItem, len(v.Items))
		for j, it := range v.Items {
			items[j] = ListItem{FirstName: it.FirstName, Phone: it.Phone, Notes: it.Notes}
		}
		agent := FromAgent(v.Agent)
		agent.CreatedAt = time.Time{}
		out[i] = AgentDistribution{Agent: agent, Count: v.Count, Items: items}
	}
	return out
}

// FromUser converts a domain user into its public view.
func FromUser(u model.User) User {
	return User{ID: u.ID, Email: u.Email, Role: u.Role}
}
