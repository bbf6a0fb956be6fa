package service

import (
	"context"
	"fmt"
	"time"

	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService publishes an update_all task on a cron schedule.
type SchedulerService interface {
	// Start blocks until ctx is done.
	Start(ctx context.Context) error
	// NextRun returns the first scheduled time after t.
	NextRun(t time.Time) time.Time
}

type schedulerService struct {
	publisher TokenTaskService
	schedule  cron.Schedule
	spec      string
	timeout   time.Duration
	logger    *logger.Logger
}

// NewSchedulerService parses spec with the standard five fields plus descriptors such as "@hourly".
func NewSchedulerService(publisher TokenTaskService, spec string, logger *logger.Logger) (SchedulerService, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	return &schedulerService{
		publisher: publisher,
		schedule:  schedule,
		spec:      spec,
		timeout:   10 * time.Second,
		logger:    logger,
	}, nil
}

func (s *schedulerService) NextRun(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s *schedulerService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))
	c.Schedule(s.schedule, cron.FuncJob(func() {
		s.publish(ctx)
	}))
	c.Start()
	s.logger.Info("Scheduler started",
		logger.StringField("cron", s.spec),
		logger.Field("next_run", s.NextRun(time.Now().UTC())))

	<-ctx.Done()
	s.logger.Info("Scheduler service stopping")
	<-c.Stop().Done()
	return nil
}

func (s *schedulerService) publish(ctx context.Context) {
	pubCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.publisher.Publish(pubCtx, dto.UpdateTask{Kind: dto.TaskUpdateAll}); err != nil {
		s.logger.Error("Failed to publish scheduled update", logger.ErrorField(err))
	}
}
