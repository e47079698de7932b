package taskboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/deepthink-labs/deepthink-engine/internal/config"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Persister stores the board state between restarts
type Persister interface {
	LoadTasks(ctx context.Context) ([]*models.Task, error)
	LoadProgress(ctx context.Context) (*models.Progress, error)
	SaveTasks(ctx context.Context, tasks []*models.Task) error
	SaveProgress(ctx context.Context, progress models.Progress) error
	Close() error
}

// ErrNoState marks an absent key, as opposed to a broken store
var ErrNoState = redis.Nil

// RedisPersister keeps the task list and progress serialized as JSON under
// two fixed keys.
type RedisPersister struct {
	client      *redis.Client
	tasksKey    string
	progressKey string
}

// NewRedisPersister creates a Redis-backed persister and verifies connectivity
func NewRedisPersister(cfg config.RedisConfig) (*RedisPersister, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPersister{
		client:      client,
		tasksKey:    cfg.TasksKey,
		progressKey: cfg.ProgressKey,
	}, nil
}

// LoadTasks reads the stored task list. Returns ErrNoState when never saved.
func (p *RedisPersister) LoadTasks(ctx context.Context) ([]*models.Task, error) {
	raw, err := p.client.Get(ctx, p.tasksKey).Result()
	if err != nil {
		return nil, err
	}

	var tasks []*models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse stored tasks: %w", err)
	}
	return tasks, nil
}

// LoadProgress reads the stored progress. Returns ErrNoState when never saved.
func (p *RedisPersister) LoadProgress(ctx context.Context) (*models.Progress, error) {
	raw, err := p.client.Get(ctx, p.progressKey).Result()
	if err != nil {
		return nil, err
	}

	var progress models.Progress
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		return nil, fmt.Errorf("failed to parse stored progress: %w", err)
	}
	return &progress, nil
}

// SaveTasks writes the task list
func (p *RedisPersister) SaveTasks(ctx context.Context, tasks []*models.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return p.client.Set(ctx, p.tasksKey, data, 0).Err()
}

// SaveProgress writes the progress record
func (p *RedisPersister) SaveProgress(ctx context.Context, progress models.Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	return p.client.Set(ctx, p.progressKey, data, 0).Err()
}

// Close closes the Redis connection
func (p *RedisPersister) Close() error {
	return p.client.Close()
}
