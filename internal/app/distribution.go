package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/leadsplit/internal/domain/leads"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/internal/domain/partition"
	"github.com/okian/leadsplit/internal/domain/tabular"
	"github.com/okian/leadsplit/pkg/logger"
	"github.com/okian/leadsplit/pkg/metrics"
)

// Upload decodes a lead file, drops invalid rows, splits the rest across the
// five oldest agents and persists the assignment. Nothing is written unless
// every earlier step succeeds.
func (s *Service) Upload(ctx context.Context, r io.Reader, filename string) (model.UploadResult, error) {
	start := time.Now()
	res, err := s.upload(ctx, r, filename)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if isClientError(err) {
			outcome = metrics.OutcomeRejected
		}
		metrics.RecordUpload(outcome)
		s.log().Warn(ctx, "upload failed",
			logger.String("filename", filename),
			logger.Error(err))
		return model.UploadResult{}, err
	}

	metrics.RecordUpload(metrics.OutcomeDistributed)
	metrics.RecordDistribution(res.Total, res.Rejected)
	s.log().Info(ctx, "list distributed",
		logger.String("filename", filename),
		logger.Int("total", res.Total),
		logger.Int("rejected", res.Rejected),
		logger.Any("counts", res.Counts),
		logger.Duration("took", time.Since(start)))
	return res, nil
}

func (s *Service) upload(ctx context.Context, r io.Reader, filename string) (model.UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	records, err := tabular.Decode(ctx, r, ext)
	if err != nil {
		return model.UploadResult{}, err
	}
	metrics.RecordUploadRows(len(records))

	items, rejected := leads.Filter(records)
	if len(items) == 0 {
		return model.UploadResult{}, model.ErrNoValidRows
	}

	agents, err := s.store.FirstAgents(ctx, partition.PoolSize)
	if err != nil {
		return model.UploadResult{}, err
	}
	if len(agents) < partition.PoolSize {
		return model.UploadResult{}, fmt.Errorf("%w: found %d", model.ErrInsufficientAgents, len(agents))
	}

	batch, err := partition.Partition(items, agents)
	if err != nil {
		return model.UploadResult{}, err
	}

	written, err := s.store.InsertAssignments(ctx, batch.Assigned())
	if err != nil {
		return model.UploadResult{}, err
	}

	return model.UploadResult{Total: written, Counts: batch.Counts(), Rejected: rejected}, nil
}

// ListDistribution returns every stored item grouped by agent, ordered by
// agent name.
func (s *Service) ListDistribution(ctx context.Context) ([]model.AgentDistribution, error) {
	return s.store.ListDistribution(ctx)
}

// ExportAgent returns the agent and its items for the CSV export. An unknown
// agent, or one with nothing assigned, is model.ErrNotFound.
func (s *Service) ExportAgent(ctx context.Context, agentID string) (model.AgentDistribution, error) {
	if strings.TrimSpace(agentID) == "" {
		return model.AgentDistribution{}, fmt.Errorf("%w: agent_id is required", model.ErrInvalidInput)
	}
	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return model.AgentDistribution{}, err
	}
	items, err := s.store.AgentItems(ctx, agentID)
	if err != nil {
		return model.AgentDistribution{}, err
	}
	if len(items) == 0 {
		return model.AgentDistribution{}, fmt.Errorf("no items assigned to %s: %w", agentID, model.ErrNotFound)
	}
	return model.AgentDistribution{Agent: agent, Count: len(items), Items: items}, nil
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get().Named("service")
	}
	return s.logger
}
