package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/config"
	"github.com/mamadbah2/hatchery/internal/service/audit"
)

const reportEntity = "report/daily"

// Reporter produces the daily digest.
type Reporter interface {
	ExportDaily(ctx context.Context, day time.Time) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	location *time.Location
	reporter Reporter
	sink     audit.Sink
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, sink audit.Sink, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		schedule: cfg.CronSchedule,
		location: loc,
		reporter: reporter,
		sink:     sink,
		logger:   logger,
	}, nil
}

// Start registers the daily report and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.sendDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailyReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	digest, err := s.reporter.ExportDaily(ctx, time.Now().In(s.location))
	if err != nil {
		s.logger.Error("failed to export daily report", zap.Error(err))
		return
	}

	s.sink.Note(ctx, reportEntity, digest)
	s.logger.Info("daily report sent successfully")
}
