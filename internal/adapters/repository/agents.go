package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/leadsplit/internal/domain/model"
)

// CreateAgent stores a new agent. A zero CreatedAt is filled from the store clock.
func (s *SQLiteStore) CreateAgent(ctx context.Context, a model.Agent) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	defer observe("create_agent", time.Now())

	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	row := fromAgent(a)
	query, args := agentStruct.InsertInto(tableAgents, &row).Build()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("agent %s: %w", a.Email, ErrDuplicate)
		}
		return storageError("create_agent", err)
	}
	return nil
}

// ListAgents returns every agent, newest first.
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]model.Agent, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	defer observe("list_agents", time.Now())

	sb := agentStruct.SelectFrom(tableAgents)
	sb.OrderBy("created_at DESC", "seq DESC")
	return s.queryAgents(ctx, "list_agents", sb.Build)
}

// FirstAgents returns up to limit agents ordered by creation time, oldest
// first. Insertion order breaks ties.
func (s *SQLiteStore) FirstAgents(ctx context.Context, limit int) ([]model.Agent, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	defer observe("first_agents", time.Now())

	sb := agentStruct.SelectFrom(tableAgents)
	sb.OrderBy("created_at ASC", "seq ASC")
	sb.Limit(limit)
	return s.queryAgents(ctx, "first_agents", sb.Build)
}

// GetAgent returns the agent with id.
func (s *SQLiteStore) GetAgent(ctx context.Context, id string) (model.Agent, error) {
	if err := s.checkOpen(); err != nil {
		return model.Agent{}, err
	}
	defer observe("get_agent", time.Now())

	sb := agentStruct.SelectFrom(tableAgents)
	sb.Where(sb.Equal("id", id))
	agents, err := s.queryAgents(ctx, "get_agent", sb.Build)
	if err != nil {
		return model.Agent{}, err
	}
	if len(agents) == 0 {
		return model.Agent{}, fmt.Errorf("agent %s: %w", id, ErrNotFound)
	}
	return agents[0], nil
}

// CountAgents returns the number of agents.
func (s *SQLiteStore) CountAgents(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	sb := flavor.NewSelectBuilder()
	sb.Select(sb.As("COUNT(*)", "n")).From(tableAgents)
	query, args := sb.Build()

	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, storageError("count_agents", err)
	}
	return n, nil
}

func (s *SQLiteStore) queryAgents(ctx context.Context, op string, build func() (string, []interface{})) ([]model.Agent, error) {
	query, args := build()
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Agent
	for rows.Next() {
		var r agentRow
		if err := rows.Scan(agentStruct.Addr(&r)...); err != nil {
			return nil, storageError(op, err)
		}
		out = append(out, r.to())
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return out, nil
}
