package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/medikart/pos-engine/internal/config"
	"github.com/medikart/pos-engine/internal/service/pos"
	"github.com/medikart/pos-engine/internal/service/reporting"
)

// Scheduler manages the engine's recurring tasks: the daily sales summary
// export and the idle-session sweep.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	engine       *pos.Engine
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, engine *pos.Engine, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local",
			zap.String("timezone", cfg.Reporting.Timezone),
			zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		engine:       engine,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Reporting.SummaryCronSchedule, s.exportDailySummary); err != nil {
		s.logger.Error("failed to schedule daily summary", zap.Error(err))
	}

	if _, err := s.cron.AddFunc("@every 15m", s.sweepIdleSessions); err != nil {
		s.logger.Error("failed to schedule session sweep", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) exportDailySummary() {
	s.logger.Info("exporting daily sales summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.reportingSvc.ExportDailySummary(ctx, time.Now()); err != nil {
		s.logger.Error("failed to export daily summary", zap.Error(err))
	}
}

func (s *Scheduler) sweepIdleSessions() {
	s.engine.SweepIdle(s.cfg.Sessions.IdleTimeout)
}
