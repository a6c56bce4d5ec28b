// Package scheduler runs the periodic jobs: the daily membership status
// sweep and the nightly data backup.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/app/service/backup"
	"github.com/flexfit/gymdesk/internal/app/service/lifecycle"
	"github.com/flexfit/gymdesk/pkg/config"
)

type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	lifecycle *lifecycle.Service
	backup    *backup.Service
	log       *zap.SugaredLogger
}

func New(cfg *config.Config, lc *lifecycle.Service, bk *backup.Service, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		cfg:       cfg,
		lifecycle: lc,
		backup:    bk,
		log:       log,
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	changed, err := s.lifecycle.UpdateMembershipStatuses(ctx)
	if err != nil {
		s.log.Errorw("status sweep failed", "err", err)
		return
	}
	s.log.Infow("status sweep finished", "changed", changed)
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	info, err := s.backup.Create(ctx)
	if err != nil {
		s.log.Errorw("scheduled backup failed", "err", err)
		return
	}
	s.log.Infow("scheduled backup finished", "name", info.Name)
}

// Start registers the cron jobs and runs the status sweep once immediately
// so statuses are reconciled at startup, not just at the next tick.
func (s *Scheduler) Start() error {
	if expr := s.cfg.Jobs.StatusSweep; expr != "" {
		if _, err := s.cron.AddFunc(expr, s.runSweep); err != nil {
			return fmt.Errorf("invalid status sweep schedule %q: %w", expr, err)
		}
	}
	if expr := s.cfg.Jobs.Backup; expr != "" {
		if _, err := s.cron.AddFunc(expr, s.runBackup); err != nil {
			return fmt.Errorf("invalid backup schedule %q: %w", expr, err)
		}
	}

	s.cron.Start()
	go s.runSweep()

	s.log.Infow("scheduler started",
		"status_sweep", s.cfg.Jobs.StatusSweep, "backup", s.cfg.Jobs.Backup)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error { return s.Start() },
			OnStop: func(context.Context) error {
				s.Stop()
				return nil
			},
		})
	}),
)
