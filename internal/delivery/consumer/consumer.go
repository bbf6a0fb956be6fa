package consumer

import (
	"context"
	"sync"
	"time"

	"golang-dex-token-analyzer/internal/config"
	"golang-dex-token-analyzer/internal/service"
	"golang-dex-token-analyzer/pkg/common"
	"golang-dex-token-analyzer/pkg/logger"
	"golang-dex-token-analyzer/pkg/utils"
)

// RedisConsumer drives the token update stream.
type RedisConsumer struct {
	cfg         *config.Config
	taskService service.TokenTaskService
	logger      *logger.Logger
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, taskService service.TokenTaskService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:         cfg,
		taskService: taskService,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the consumer's task processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.taskService.ProcessTask, common.RedisStreamTokenUpdate, c.taskTimeout())

	interval := c.cfg.Worker.RetryInterval
	if interval <= 0 {
		interval = time.Minute
	}
	c.RegisterTickerHandler(ctx, c.taskService.ProcessRetries, interval, c.taskTimeout(), common.RedisStreamTokenUpdate+"-retry")
}

func (c *RedisConsumer) taskTimeout() time.Duration {
	if c.cfg.Worker.TaskTimeout > 0 {
		return c.cfg.Worker.TaskTimeout
	}
	return 2 * time.Minute
}

// RegisterStreamHandler calls fn in a loop, each call bounded by timeout, until ctx is done or Stop is called.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(c.logger, func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.Field("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer. It is safe to call more than once.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
