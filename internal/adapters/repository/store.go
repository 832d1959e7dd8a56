// Package repository persists agents, accounts and list assignments.
package repository

import (
	"context"
	"time"

	"github.com/okian/leadsplit/internal/domain/model"
)

// AgentStore manages the agent directory.
type AgentStore interface {
	// CreateAgent stores a new agent. Returns ErrDuplicate when the email is taken.
	CreateAgent(ctx context.Context, a model.Agent) error
	// ListAgents returns every agent, newest first.
	ListAgents(ctx context.Context) ([]model.Agent, error)
	// FirstAgents returns up to limit agents ordered by creation time ascending.
	FirstAgents(ctx context.Context, limit int) ([]model.Agent, error)
	// GetAgent returns the agent with id or ErrNotFound.
	GetAgent(ctx context.Context, id string) (model.Agent, error)
	// CountAgents returns the number of agents.
	CountAgents(ctx context.Context) (int, error)
}

// AssignmentStore persists distributed items and serves the aggregated view.
type AssignmentStore interface {
	// InsertAssignments stores all items in one transaction; either every
	// item is persisted or none is. Returns the number of rows written.
	InsertAssignments(ctx context.Context, items []model.AssignedItem) (int, error)
	// ListDistribution groups every stored item by agent, ordered by agent
	// name. Agents without items are omitted.
	ListDistribution(ctx context.Context) ([]model.AgentDistribution, error)
	// AgentItems returns the items assigned to one agent in insertion order.
	AgentItems(ctx context.Context, agentID string) ([]model.Item, error)
}

// UserStore manages admin accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdatePassword(ctx context.Context, email, hash string) error
}

// VerificationStore keeps one pending email verification per address.
type VerificationStore interface {
	// SaveVerification replaces any previous code for the address and
	// clears the verified flag.
	SaveVerification(ctx context.Context, v model.EmailVerification) error
	GetVerification(ctx context.Context, email string) (model.EmailVerification, error)
	MarkVerified(ctx context.Context, email string) error
	DeleteVerification(ctx context.Context, email string) error
}

// Store is the full persistence surface used by the application.
type Store interface {
	AgentStore
	AssignmentStore
	UserStore
	VerificationStore

	Ping(ctx context.Context) error
	Close() error
}

// Clock returns the current time; overridable in tests.
type Clock func() time.Time
