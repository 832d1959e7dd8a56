// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/leadsplit/internal/adapters/auth"
	"github.com/okian/leadsplit/internal/adapters/mail"
	mailqueue "github.com/okian/leadsplit/internal/adapters/mq/queue"
	workerpool "github.com/okian/leadsplit/internal/adapters/mq/worker"
	"github.com/okian/leadsplit/internal/adapters/repository"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
	"github.com/okian/leadsplit/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultOTPTTL          = 10 * time.Minute
	defaultMailQueueSize   = 256
	defaultMailWorkerCount = 2
	stopTimeout            = 10 * time.Second
)

// Sentinel kinds for service lifecycle errors.
var (
	ErrNoStore  = errors.New("service: store is required")
	ErrNoIssuer = errors.New("service: token issuer is required")
	ErrStopped  = errors.New("service: not started")
)

// Service implements the API dependencies for lead distribution, the agent
// directory and account management.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	issuer    *auth.Issuer
	mailer    mail.Mailer
	mailQueue *mailqueue.InMemoryQueue
	pool      *workerpool.Pool

	// Configuration
	otpTTL          time.Duration
	mailQueueSize   int
	mailWorkerCount int
	now             func() time.Time
	newID           func() string

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence layer.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithIssuer sets the token issuer used by Login.
func WithIssuer(iss *auth.Issuer) Option {
	return func(s *Service) {
		if iss != nil {
			s.issuer = iss
		}
	}
}

// WithMailer sets the mail transport. Defaults to a LogMailer.
func WithMailer(m mail.Mailer) Option {
	return func(s *Service) {
		if m != nil {
			s.mailer = m
		}
	}
}

// WithOTPTTL sets how long verification and reset codes stay valid.
func WithOTPTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.otpTTL = ttl
		}
	}
}

// WithMailQueueSize sets the capacity of the outbound mail queue.
func WithMailQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.mailQueueSize = size
		}
	}
}

// WithMailWorkerCount sets the number of mail delivery goroutines.
func WithMailWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.mailWorkerCount = count
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		otpTTL:          defaultOTPTTL,
		mailQueueSize:   defaultMailQueueSize,
		mailWorkerCount: defaultMailWorkerCount,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates the mail queue and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.issuer == nil {
		return ErrNoIssuer
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.mailer == nil {
		s.mailer = mail.NewLogMailer(nil)
	}

	s.logger.Info(ctx, "starting lead distribution service...")

	s.mailQueue = mailqueue.NewInMemoryQueue(mailqueue.WithCapacity(s.mailQueueSize))
	s.pool = workerpool.NewPool(s.mailWorkerCount, s.mailQueue, mail.NewDispatcher(s.mailer))
	// Workers outlive the start context; Stop drains them.
	s.pool.Start(context.WithoutCancel(ctx))

	if n, err := s.store.CountAgents(ctx); err == nil {
		metrics.UpdateAgentsTotal(n)
	}

	s.started = true
	s.logger.Info(ctx, "lead distribution service started",
		logger.Int("mailWorkers", s.mailWorkerCount),
		logger.Int("mailQueueSize", s.mailQueueSize),
		logger.Duration("otpTTL", s.otpTTL),
	)

	return nil
}

// Stop drains queued mail and stops the workers. The store is owned by the
// caller and stays open.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping lead distribution service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "mail workers did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "lead distribution service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"mailWorkerCount": s.mailWorkerCount,
		"mailQueueSize":   s.mailQueueSize,
		"otpTTLSeconds":   int(s.otpTTL.Seconds()),
	}

	if s.started {
		stats["mailQueueLength"] = s.mailQueue.Len(ctx)
		if n, err := s.store.CountAgents(ctx); err == nil {
			stats["agents"] = n
			metrics.UpdateAgentsTotal(n)
		}
	}

	return stats
}

// Ready reports whether the service is started and its store reachable.
func (s *Service) Ready(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrStopped
	}
	return s.store.Ping(ctx)
}

// enqueueMail queues a job, reporting backpressure as model.ErrMailUnavailable.
func (s *Service) enqueueMail(ctx context.Context, kind model.MailKind, to, code string) error {
	s.mu.RLock()
	q := s.mailQueue
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.ErrMailUnavailable
	}

	job := model.MailJob{ID: s.newID(), Kind: kind, To: to, Code: code, Enqueued: s.now()}
	if !q.Enqueue(ctx, job) {
		s.logger.Warn(ctx, "mail queue rejected job",
			logger.String("kind", string(kind)),
			logger.Int("queueLength", q.Len(ctx)))
		return model.ErrMailUnavailable
	}
	return nil
}
