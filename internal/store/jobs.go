package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const jobKeyPrefix = "orgdb:provisioning_job:"

// RedisJobStore keeps provisioning job records in Redis, expiring them after ttl.
type RedisJobStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisJobStore(client redis.Cmdable, ttl time.Duration) *RedisJobStore {
	return &RedisJobStore{client: client, ttl: ttl}
}

func jobKey(id uuid.UUID) string {
	return jobKeyPrefix + id.String()
}

func (s *RedisJobStore) Save(ctx context.Context, j *domain.ProvisioningJob) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, jobKey(j.ID), data, s.ttl).Err()
}

func (s *RedisJobStore) Get(ctx context.Context, id uuid.UUID) (*domain.ProvisioningJob, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	j := &domain.ProvisioningJob{}
	if err := json.Unmarshal(data, j); err != nil {
		return nil, err
	}
	return j, nil
}

// MemoryJobStore is the in-process JobStore used when Redis is not configured.
// Records older than ttl are pruned on write.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]domain.ProvisioningJob
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryJobStore(ttl time.Duration) *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[uuid.UUID]domain.ProvisioningJob),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *MemoryJobStore) Save(ctx context.Context, j *domain.ProvisioningJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for id, existing := range s.jobs {
		if existing.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
	s.jobs[j.ID] = *j
	return nil
}

func (s *MemoryJobStore) Get(ctx context.Context, id uuid.UUID) (*domain.ProvisioningJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}
