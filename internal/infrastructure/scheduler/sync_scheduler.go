package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// LinkedSellerProvider lists the users whose marketplace accounts are
// currently linked and active
type LinkedSellerProvider interface {
	FindLinkedIDs(ctx context.Context) ([]uuid.UUID, error)
}

// OrderSyncRunner runs one order aggregation pass for a user
type OrderSyncRunner interface {
	SyncOrders(ctx context.Context, userID uuid.UUID) ([]crm.CustomerSummary, error)
}

// SyncSchedulerConfig holds settings for the background sync loop
type SyncSchedulerConfig struct {
	// Interval is the pause between full passes over all linked users
	Interval time.Duration
	// PerUserTimeout bounds one user's sync so a slow upstream cannot
	// stall the whole pass
	PerUserTimeout time.Duration
}

// DefaultSyncSchedulerConfig returns default scheduler configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Interval:       15 * time.Minute,
		PerUserTimeout: 2 * time.Minute,
	}
}

// SyncScheduler periodically refreshes the order aggregates of every
// linked user so dashboards stay warm without manual syncs. One user's
// failure never stops the pass.
type SyncScheduler struct {
	config  SyncSchedulerConfig
	sellers LinkedSellerProvider
	runner  OrderSyncRunner
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new background sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, sellers LinkedSellerProvider, runner OrderSyncRunner, logger *zap.Logger) *SyncScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSyncSchedulerConfig().Interval
	}
	if config.PerUserTimeout <= 0 {
		config.PerUserTimeout = DefaultSyncSchedulerConfig().PerUserTimeout
	}
	return &SyncScheduler{
		config:  config,
		sellers: sellers,
		runner:  runner,
		logger:  logger,
	}
}

// Start launches the background loop. Calling Start on a running
// scheduler is a no-op.
func (s *SyncScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Order sync scheduler started",
		zap.Duration("interval", s.config.Interval))
}

// Stop halts the loop and waits for an in-flight pass to finish or the
// given context to expire
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Order sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunPass(ctx)
		}
	}
}

// RunPass syncs every linked user once
func (s *SyncScheduler) RunPass(ctx context.Context) {
	ids, err := s.sellers.FindLinkedIDs(ctx)
	if err != nil {
		s.logger.Warn("Failed to list linked sellers for sync pass", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}

	started := time.Now()
	failed := 0

	for _, userID := range ids {
		if ctx.Err() != nil {
			return
		}

		userCtx, cancel := context.WithTimeout(ctx, s.config.PerUserTimeout)
		_, err := s.runner.SyncOrders(userCtx, userID)
		cancel()

		if err != nil {
			failed++
			s.logger.Warn("Scheduled order sync failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Scheduled sync pass finished",
		zap.Int("users", len(ids)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(started)))
}
