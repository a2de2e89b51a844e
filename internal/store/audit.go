package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/config"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// AuditStore records engine activity for later inspection
	AuditStore interface {
		Append(ctx context.Context, entry *api.AuditEntry) error
		Query(
			ctx context.Context, filter *api.AuditFilter,
		) ([]*api.AuditEntry, error)
		Close() error
	}

	// RedisAuditStore keeps a capped audit trail in a Redis list, newest
	// entries first
	RedisAuditStore struct {
		client *redis.Client
		prefix string
		max    int64
		ttl    time.Duration
	}
)

var ErrAuditUnavailable = errors.New("audit store unavailable")

// NewRedisAuditStore connects an audit trail to the configured Redis
func NewRedisAuditStore(cfg *config.AuditConfig) *RedisAuditStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisAuditStore{
		client: client,
		prefix: cfg.Prefix,
		max:    int64(cfg.MaxEntries),
		ttl:    cfg.TTL,
	}
}

// Append pushes an entry onto the trail and trims to capacity
func (s *RedisAuditStore) Append(
	ctx context.Context, entry *api.AuditEntry,
) error {
	buf, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuditUnavailable, err)
	}
	key := s.trailKey()
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, buf)
	pipe.LTrim(ctx, key, 0, s.max-1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrAuditUnavailable, err)
	}
	return nil
}

// Query returns entries matching the filter, newest first
func (s *RedisAuditStore) Query(
	ctx context.Context, filter *api.AuditFilter,
) ([]*api.AuditEntry, error) {
	raw, err := s.client.LRange(ctx, s.trailKey(), 0, s.max-1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditUnavailable, err)
	}

	limit := 0
	if filter != nil {
		limit = filter.Limit
	}

	var res []*api.AuditEntry
	for _, item := range raw {
		var entry api.AuditEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		if !matchesFilter(&entry, filter) {
			continue
		}
		res = append(res, &entry)
		if limit > 0 && len(res) >= limit {
			break
		}
	}
	return res, nil
}

// Close releases the underlying Redis connection
func (s *RedisAuditStore) Close() error {
	return s.client.Close()
}

func (s *RedisAuditStore) trailKey() string {
	return s.prefix + ":audit"
}

func matchesFilter(entry *api.AuditEntry, filter *api.AuditFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Kind != "" && entry.Kind != filter.Kind {
		return false
	}
	if filter.ExecutionID != "" && entry.ExecutionID != filter.ExecutionID {
		return false
	}
	if !filter.From.IsZero() && entry.At.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && entry.At.After(filter.To) {
		return false
	}
	return true
}
