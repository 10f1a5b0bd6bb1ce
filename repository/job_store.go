package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chamado-service/models"

	"github.com/redis/go-redis/v9"
)

// ErrJobNotFound is returned for unknown or expired job ids.
var ErrJobNotFound = errors.New("job not found")

const (
	jobQueueKey  = "chamado:batch:queue"
	jobKeyPrefix = "chamado:batch:job:"
)

// JobStore persists batch jobs and queues their ids.
type JobStore interface {
	Enqueue(ctx context.Context, job *models.BatchJob) error
	Get(ctx context.Context, id string) (*models.BatchJob, error)
	Update(ctx context.Context, job *models.BatchJob) error
	// Next blocks up to timeout for a queued id. It returns "" and no error
	// when nothing arrived.
	Next(ctx context.Context, timeout time.Duration) (string, error)
}

// RedisJobStore keeps job state under chamado:batch:job:<id> and the queue
// in a redis list.
type RedisJobStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisJobStore(rdb *redis.Client, ttl time.Duration) *RedisJobStore {
	return &RedisJobStore{rdb: rdb, ttl: ttl}
}

func (s *RedisJobStore) Enqueue(ctx context.Context, job *models.BatchJob) error {
	if err := s.Update(ctx, job); err != nil {
		return err
	}
	return s.rdb.RPush(ctx, jobQueueKey, job.ID).Err()
}

func (s *RedisJobStore) Get(ctx context.Context, id string) (*models.BatchJob, error) {
	val, err := s.rdb.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var job models.BatchJob
	if err := json.Unmarshal(val, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

func (s *RedisJobStore) Update(ctx context.Context, job *models.BatchJob) error {
	job.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return s.rdb.Set(ctx, jobKeyPrefix+job.ID, b, s.ttl).Err()
}

func (s *RedisJobStore) Next(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := s.rdb.BLPop(ctx, timeout, jobQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}
