package service

import (
	"context"
	"testing"
	"time"

	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPublisher struct {
	published chan dto.UpdateTask
}

func (p *countingPublisher) Publish(_ context.Context, task dto.UpdateTask) (string, error) {
	p.published <- task
	return "1-0", nil
}

func (p *countingPublisher) ProcessTask(context.Context) {}

func (p *countingPublisher) ProcessRetries(context.Context) {}

func (p *countingPublisher) Execute(context.Context, dto.UpdateTask) error { return nil }

func TestSchedulerService_NextRun(t *testing.T) {
	s, err := NewSchedulerService(&countingPublisher{}, "*/15 * * * *", logger.NewNop())
	require.NoError(t, err)

	from := time.Date(2024, 5, 1, 10, 7, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC), s.NextRun(from))

	hourly, err := NewSchedulerService(&countingPublisher{}, "@hourly", logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), hourly.NextRun(from))
}

func TestSchedulerService_InvalidExpression(t *testing.T) {
	_, err := NewSchedulerService(&countingPublisher{}, "every five minutes", logger.NewNop())
	assert.Error(t, err)

	_, err = NewSchedulerService(&countingPublisher{}, "* * * * * *", logger.NewNop())
	assert.Error(t, err)
}

func TestSchedulerService_StartStopsWithContext(t *testing.T) {
	s, err := NewSchedulerService(&countingPublisher{published: make(chan dto.UpdateTask, 1)}, "@yearly", logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerService_PublishesUpdateAll(t *testing.T) {
	pub := &countingPublisher{published: make(chan dto.UpdateTask, 1)}
	s := &schedulerService{publisher: pub, timeout: time.Second, logger: logger.NewNop()}

	s.publish(context.Background())
	assert.Equal(t, dto.UpdateTask{Kind: dto.TaskUpdateAll}, <-pub.published)
}
