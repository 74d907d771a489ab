package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/circlehub/backend/pkg/queue"
)

// FlagCountKey is the Redis key holding the cached flag count for a circle.
func FlagCountKey(circleID int64) string {
	return "moderation:flags:" + strconv.FormatInt(circleID, 10)
}

// FlagCounter reads the authoritative flag count from the store.
type FlagCounter interface {
	CountByCircle(ctx context.Context, circleID int64) (int, error)
}

// ModerationProcessor consumes flag jobs: recounts a circle's flags from the
// store, caches the count in Redis, and surfaces circles past the review
// threshold in the logs.
type ModerationProcessor struct {
	flags     FlagCounter
	redis     *redis.Client
	queue     *queue.Queue
	threshold int
	logger    *zap.Logger
}

// NewModerationProcessor creates a moderation job processor.
func NewModerationProcessor(flags FlagCounter, rdb *redis.Client, q *queue.Queue, threshold int, logger *zap.Logger) *ModerationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationProcessor{flags: flags, redis: rdb, queue: q, threshold: threshold, logger: logger}
}

// Process executes one moderation job.
func (p *ModerationProcessor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeFlagRaised, queue.JobTypeFlagsCleared:
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ModerationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	count, err := p.flags.CountByCircle(ctx, payload.CircleID)
	if err != nil {
		return fmt.Errorf("count flags: %w", err)
	}

	if err := p.redis.Set(ctx, FlagCountKey(payload.CircleID), count, 0).Err(); err != nil {
		return fmt.Errorf("cache flag count: %w", err)
	}

	if job.Type == queue.JobTypeFlagRaised && count >= p.threshold {
		p.logger.Warn("circle needs review",
			zap.Int64("circle_id", payload.CircleID),
			zap.Int("flag_count", count),
			zap.Int("threshold", p.threshold),
		)
	}
	p.logger.Debug("moderation job processed",
		zap.String("job_id", job.ID),
		zap.Int64("circle_id", payload.CircleID),
		zap.Int("flag_count", count),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ModerationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("moderation worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
