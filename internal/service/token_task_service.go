package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-dex-token-analyzer/internal/config"
	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/metrics"
	"golang-dex-token-analyzer/pkg/common"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidTask is returned for stream messages that cannot be executed.
var ErrInvalidTask = errors.New("invalid update task")

// TokenTaskService moves update tasks through the Redis stream.
type TokenTaskService interface {
	// Publish appends the task to the stream and returns the message ID.
	Publish(ctx context.Context, task dto.UpdateTask) (string, error)
	// ProcessTask reads at most one message, executes it and acknowledges it.
	ProcessTask(ctx context.Context)
	// ProcessRetries claims one message a crashed consumer left pending and runs it.
	ProcessRetries(ctx context.Context)
	// Execute runs a task directly.
	Execute(ctx context.Context, task dto.UpdateTask) error
}

type tokenTaskService struct {
	cfg         *config.Config
	redisClient *redis.Client
	updater     TokenUpdaterService
	log         *logger.Logger
}

func NewTokenTaskService(cfg *config.Config, redisClient *redis.Client, updater TokenUpdaterService, log *logger.Logger) TokenTaskService {
	return &tokenTaskService{
		cfg:         cfg,
		redisClient: redisClient,
		updater:     updater,
		log:         log,
	}
}

func (s *tokenTaskService) Publish(ctx context.Context, task dto.UpdateTask) (string, error) {
	if err := ValidateTask(task); err != nil {
		return "", err
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}

	id, err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamTokenUpdate,
		Values: map[string]interface{}{common.RedisStreamPayloadField: payload},
		MaxLen: s.cfg.Redis.StreamMaxLen,
		Approx: true,
	}).Result()
	if err != nil {
		metrics.RecordStreamTask(string(task.Kind), "publish_failed")
		s.log.ErrorContext(ctx, "Failed to enqueue task", logger.ErrorField(err), logger.StringField("kind", string(task.Kind)))
		return "", err
	}

	metrics.RecordStreamTask(string(task.Kind), "published")
	s.log.InfoContext(ctx, "Task published successfully", logger.StringField("message_id", id), logger.StringField("kind", string(task.Kind)))
	return id, nil
}

func (s *tokenTaskService) ProcessTask(ctx context.Context) {
	block := s.cfg.Worker.BlockTimeout
	if block <= 0 {
		block = 2 * time.Second
	}

	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamTokenUpdate, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		// Idle reads and shutdown are expected.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		// Avoid spinning on a broken connection.
		time.Sleep(block)
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}
	s.handleMessage(ctx, streams[0].Messages[0])
}

func (s *tokenTaskService) ProcessRetries(ctx context.Context) {
	minIdle := s.cfg.Worker.MaxIdle
	if minIdle <= 0 {
		minIdle = 5 * time.Minute
	}

	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamTokenUpdate,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  minIdle,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.log.Error("Failed to claim pending task", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		s.log.Debug("No pending tasks to retry", logger.StringField("stream", common.RedisStreamTokenUpdate))
		return
	}

	s.log.Info("Retrying pending task", logger.StringField("message_id", msgs[0].ID))
	metrics.RecordStreamTask("unknown", "reclaimed")
	s.handleMessage(ctx, msgs[0])
}

func (s *tokenTaskService) handleMessage(ctx context.Context, message redis.XMessage) {
	task, err := DecodeTask(message.Values)
	if err != nil {
		metrics.RecordStreamTask("unknown", "invalid")
		s.log.Error("Dropping invalid task", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		s.ackAndDelete(ctx, message.ID)
		return
	}

	if err := s.Execute(ctx, task); err != nil {
		metrics.RecordStreamTask(string(task.Kind), "failed")
		s.log.Error("Failed to execute task", logger.ErrorField(err), logger.StringField("message_id", message.ID), logger.StringField("kind", string(task.Kind)))
	} else {
		metrics.RecordStreamTask(string(task.Kind), "done")
	}

	// Failed tasks are acknowledged too; the next scheduled run retries implicitly.
	s.ackAndDelete(ctx, message.ID)
}

func (s *tokenTaskService) Execute(ctx context.Context, task dto.UpdateTask) error {
	if err := ValidateTask(task); err != nil {
		return err
	}

	switch task.Kind {
	case dto.TaskUpdateAll:
		_, err := s.updater.UpdateAll(ctx)
		return err
	case dto.TaskSearch:
		_, err := s.updater.FetchAndAnalyze(ctx, task.Query)
		return err
	case dto.TaskTokens:
		_, err := s.updater.UpdateByTokenAddresses(ctx, task.Addresses)
		return err
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidTask, task.Kind)
}

func (s *tokenTaskService) ackAndDelete(ctx context.Context, id string) {
	// Use a fresh context so a task that ran into its timeout is still acknowledged.
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.redisClient.XAck(ackCtx, common.RedisStreamTokenUpdate, common.RedisStreamGroup, id).Err(); err != nil {
		s.log.Error("Failed to acknowledge task", logger.ErrorField(err), logger.StringField("message_id", id))
		return
	}
	if err := s.redisClient.XDel(ackCtx, common.RedisStreamTokenUpdate, id).Err(); err != nil {
		s.log.Error("Failed to delete task", logger.ErrorField(err), logger.StringField("message_id", id))
	}
}

// DecodeTask reads the JSON payload field of a stream message.
func DecodeTask(values map[string]interface{}) (dto.UpdateTask, error) {
	var task dto.UpdateTask

	raw, ok := values[common.RedisStreamPayloadField]
	if !ok {
		return task, fmt.Errorf("%w: field %q missing", ErrInvalidTask, common.RedisStreamPayloadField)
	}
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return task, fmt.Errorf("%w: field %q has type %T", ErrInvalidTask, common.RedisStreamPayloadField, raw)
	}

	if err := json.Unmarshal(data, &task); err != nil {
		return task, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	return task, ValidateTask(task)
}

// ValidateTask checks that the task carries what its kind needs.
func ValidateTask(task dto.UpdateTask) error {
	switch task.Kind {
	case dto.TaskUpdateAll:
		return nil
	case dto.TaskSearch:
		if strings.TrimSpace(task.Query) == "" {
			return fmt.Errorf("%w: search task without query", ErrInvalidTask)
		}
		return nil
	case dto.TaskTokens:
		if len(task.Addresses) == 0 {
			return fmt.Errorf("%w: tokens task without addresses", ErrInvalidTask)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidTask, task.Kind)
}
