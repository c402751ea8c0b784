package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-service/models"
	awspkg "catalog-service/pkg/aws"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	importQueueKey = "bulk_import:queue"
	importJobTTL   = 24 * time.Hour
)

func importJobKey(id string) string {
	return "bulk_import:job:" + id
}

// JobDispatcher carries job ids from the HTTP layer to the worker.
type JobDispatcher interface {
	Push(ctx context.Context, jobID string) error
	// Consume calls handle for every dispatched id until ctx is done.
	Consume(ctx context.Context, handle func(ctx context.Context, jobID string)) error
}

// ImportJobQueue stores async import jobs in Redis. Job ids travel over a
// Redis list unless another dispatcher is configured.
type ImportJobQueue struct {
	rdb      *redis.Client
	dispatch JobDispatcher
	now      func() time.Time
}

func NewImportJobQueue(rdb *redis.Client) *ImportJobQueue {
	return &ImportJobQueue{rdb: rdb, dispatch: &redisDispatcher{rdb: rdb}, now: time.Now}
}

// WithDispatcher replaces the Redis list transport.
func (q *ImportJobQueue) WithDispatcher(d JobDispatcher) *ImportJobQueue {
	if d != nil {
		q.dispatch = d
	}
	return q
}

// Enqueue records a pending job for an already staged upload and queues it.
func (q *ImportJobQueue) Enqueue(ctx context.Context, uploadKey string) (*models.ImportJob, error) {
	now := q.now().UTC()
	job := &models.ImportJob{
		ID:        uuid.New().String(),
		Status:    models.JobPending,
		UploadKey: uploadKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.Save(ctx, job); err != nil {
		return nil, err
	}
	if err := q.dispatch.Push(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("enqueue import job: %w", err)
	}
	return job, nil
}

func (q *ImportJobQueue) Get(ctx context.Context, id string) (*models.ImportJob, error) {
	raw, err := q.rdb.Get(ctx, importJobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read import job: %w", err)
	}
	var job models.ImportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode import job: %w", err)
	}
	return &job, nil
}

func (q *ImportJobQueue) Save(ctx context.Context, job *models.ImportJob) error {
	job.UpdatedAt = q.now().UTC()
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode import job: %w", err)
	}
	if err := q.rdb.Set(ctx, importJobKey(job.ID), raw, importJobTTL).Err(); err != nil {
		return fmt.Errorf("save import job: %w", err)
	}
	return nil
}

// Consume feeds dispatched job ids to handle until ctx is done.
func (q *ImportJobQueue) Consume(ctx context.Context, handle func(ctx context.Context, jobID string)) error {
	return q.dispatch.Consume(ctx, handle)
}

type redisDispatcher struct {
	rdb *redis.Client
}

func (d *redisDispatcher) Push(ctx context.Context, jobID string) error {
	return d.rdb.RPush(ctx, importQueueKey, jobID).Err()
}

func (d *redisDispatcher) Consume(ctx context.Context, handle func(ctx context.Context, jobID string)) error {
	for {
		res, err := d.rdb.BLPop(ctx, 0, importQueueKey).Result()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			zap.L().Error("redis BLPop failed", zap.Error(err))
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if len(res) < 2 {
			zap.L().Warn("unexpected BLPOP reply", zap.Strings("reply", res))
			continue
		}
		handle(ctx, res[1])
	}
}

// SQSMessageQueue is the subset of an SQS queue used to dispatch job ids.
type SQSMessageQueue interface {
	Send(ctx context.Context, body string) error
	Poll(ctx context.Context, handler awspkg.MessageHandler) error
}

// SQSDispatcher sends job ids through SQS. Job state stays in Redis.
type SQSDispatcher struct {
	queue SQSMessageQueue
}

func NewSQSDispatcher(queue SQSMessageQueue) *SQSDispatcher {
	return &SQSDispatcher{queue: queue}
}

func (d *SQSDispatcher) Push(ctx context.Context, jobID string) error {
	return d.queue.Send(ctx, jobID)
}

func (d *SQSDispatcher) Consume(ctx context.Context, handle func(ctx context.Context, jobID string)) error {
	return d.queue.Poll(ctx, func(ctx context.Context, body string) error {
		handle(ctx, body)
		return nil
	})
}
