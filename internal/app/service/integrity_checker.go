package service

import (
	"context"
	"time"

	apprepository "github.com/sifan077/blt/internal/app/repository"
	infraPrometheus "github.com/sifan077/blt/internal/infra/prometheus"
	"go.uber.org/zap"
)

const defaultIntegrityInterval = 5 * time.Minute

// IntegrityChecker periodically counts external ids held by more than one live
// UniversalClient. Concurrent first contacts can still produce duplicates when
// rows are written outside the atomic get-or-create path.
type IntegrityChecker struct {
	logger   *zap.Logger
	repo     apprepository.UniversalClientRepository
	interval time.Duration
}

// NewIntegrityChecker creates a new duplicate identity checker.
func NewIntegrityChecker(logger *zap.Logger, repo apprepository.UniversalClientRepository, interval time.Duration) *IntegrityChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultIntegrityInterval
	}
	return &IntegrityChecker{
		logger:   logger,
		repo:     repo,
		interval: interval,
	}
}

// Run checks once immediately and then on every tick until ctx is cancelled.
func (c *IntegrityChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ticker.C:
			c.Check(ctx)
		case <-ctx.Done():
			c.logger.Info("integrity checker stopped")
			return
		}
	}
}

// Check runs a single scan and returns the number of duplicated external ids.
func (c *IntegrityChecker) Check(ctx context.Context) int64 {
	count, err := c.repo.CountDuplicateExternalIDs(ctx)
	if err != nil {
		c.logger.Error("failed to count duplicate external ids", zap.Error(err))
		return 0
	}

	infraPrometheus.DuplicateIdentities.Set(float64(count))
	if count > 0 {
		c.logger.Warn("duplicate universal clients detected",
			zap.Int64("external_ids", count),
		)
	}
	return count
}
