package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/leadsplit/internal/domain/credentials"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
	"github.com/okian/leadsplit/pkg/metrics"
)

// AddAgent validates in, hashes the password and stores the agent.
func (s *Service) AddAgent(ctx context.Context, in model.AgentInput) (model.Agent, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := strings.TrimSpace(in.Mobile)

	if name == "" || email == "" || mobile == "" || in.Password == "" {
		return model.Agent{}, fmt.Errorf("%w: all fields required", model.ErrInvalidInput)
	}
	if !credentials.ValidEmail(email) {
		return model.Agent{}, fmt.Errorf("%w: invalid email format", model.ErrInvalidInput)
	}
	if !credentials.ValidMobile(mobile) {
		return model.Agent{}, fmt.Errorf("%w: mobile must include country code, e.g. +919876543210", model.ErrInvalidInput)
	}

	hash, err := credentials.HashPassword(in.Password)
	if err != nil {
		return model.Agent{}, err
	}

	agent := model.Agent{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateAgent(ctx, agent); err != nil {
		return model.Agent{}, err
	}

	if n, err := s.store.CountAgents(ctx); err == nil {
		metrics.UpdateAgentsTotal(n)
	}
	s.log().Info(ctx, "agent added", logger.String("agent_id", agent.ID))
	return agent, nil
}

// ListAgents returns every agent, newest first.
func (s *Service) ListAgents(ctx context.Context) ([]model.Agent, error) {
	return s.store.ListAgents(ctx)
}
