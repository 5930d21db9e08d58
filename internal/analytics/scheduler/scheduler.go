package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-erp-service/config"
	"github.com/fekuna/omnipos-erp-service/internal/analytics"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"go.uber.org/zap"
)

// Scheduler runs the periodic analytics jobs for every active organization.
type Scheduler struct {
	uc     analytics.UseCase
	cfg    config.JobsConfig
	logger logger.ZapLogger
}

func NewScheduler(uc analytics.UseCase, cfg config.JobsConfig, log logger.ZapLogger) *Scheduler {
	return &Scheduler{uc: uc, cfg: cfg, logger: log}
}

// Run blocks until ctx is done. Both jobs also run once at start.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.MetricsInterval <= 0 || s.cfg.LowStockInterval <= 0 {
		return fmt.Errorf("scheduler: intervals must be positive (metrics %s, low stock %s)",
			s.cfg.MetricsInterval, s.cfg.LowStockInterval)
	}
	metrics := time.NewTicker(s.cfg.MetricsInterval)
	defer metrics.Stop()
	lowStock := time.NewTicker(s.cfg.LowStockInterval)
	defer lowStock.Stop()

	s.RunMetrics(ctx)
	s.RunLowStock(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-metrics.C:
			s.RunMetrics(ctx)
		case <-lowStock.C:
			s.RunLowStock(ctx)
		}
	}
}

// RunMetrics recomputes today's metric and tomorrow's predictions.
func (s *Scheduler) RunMetrics(ctx context.Context) {
	s.each(ctx, "metrics", func(ctx context.Context, org string) error {
		if _, err := s.uc.CalculateDailyMetrics(ctx, org, time.Time{}); err != nil {
			return err
		}
		_, err := s.uc.GeneratePredictions(ctx, org)
		return err
	})
}

func (s *Scheduler) RunLowStock(ctx context.Context) {
	s.each(ctx, "low_stock", func(ctx context.Context, org string) error {
		n, err := s.uc.CheckLowStock(ctx, org)
		if n > 0 {
			s.logger.Info("low stock alerts published", zap.String("organization_id", org), zap.Int("count", n))
		}
		return err
	})
}

func (s *Scheduler) each(ctx context.Context, job string, fn func(context.Context, string) error) {
	orgs, err := s.uc.Organizations(ctx)
	if err != nil {
		s.logger.Error("job failed to list organizations", zap.String("job", job), zap.Error(err))
		return
	}
	for _, org := range orgs {
		if ctx.Err() != nil {
			return
		}
		if err := fn(auth.System(ctx, org), org); err != nil {
			s.logger.Error("job failed",
				zap.String("job", job),
				zap.String("organization_id", org),
				zap.Error(err),
			)
		}
	}
}
