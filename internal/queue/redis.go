package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces queue lists in Redis.
const DefaultKeyPrefix = "feesync:queue:"

// Redis is a queue backed by a Redis list: LPUSH on enqueue, BRPOP on dequeue.
type Redis struct {
	name   string
	key    string
	client redis.UniversalClient
	poll   time.Duration
}

var _ Queue = (*Redis)(nil)

// NewRedis returns a queue stored under prefix+name.
func NewRedis(client redis.UniversalClient, prefix, name string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{name: name, key: prefix + name, client: client, poll: time.Second}
}

func (r *Redis) Name() string { return r.name }

func (r *Redis) Enqueue(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.Name, err)
	}
	if err := r.client.LPush(ctx, r.key, raw).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", r.key, err)
	}
	return nil
}

// Dequeue polls BRPOP in short intervals so ctx cancellation is observed.
func (r *Redis) Dequeue(ctx context.Context) (Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Job{}, err
		}
		res, err := r.client.BRPop(ctx, r.poll, r.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, fmt.Errorf("brpop %s: %w", r.key, err)
		}
		// res is [key, value]
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return Job{}, fmt.Errorf("decode job from %s: %w", r.key, err)
		}
		return job, nil
	}
}

// Len reports the list length.
func (r *Redis) Len(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.key).Result()
}
