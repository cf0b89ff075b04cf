package cachestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"video-embed-pipeline/internal/domain"
)

// RedisStore persists the record table as a single Redis hash: one field per
// video ID, JSON-encoded record values. The key is namespaced by the caller
// to avoid collisions with other applications sharing the instance.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	key    string
}

// NewRedisStore creates a Redis-backed store under the given hash key.
func NewRedisStore(client *redis.Client, logger *zap.Logger, key string) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
		key:    key,
	}
}

// Load reads the full hash. An unreachable instance or a missing key yields
// an empty table; individual fields that fail to decode are skipped.
func (s *RedisStore) Load(ctx context.Context) (map[string]domain.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		s.logger.Warn("cache hash unreadable, starting cold",
			zap.String("key", s.key),
			zap.Error(err),
		)

		return map[string]domain.Record{}, nil
	}

	records := make(map[string]domain.Record, len(fields))
	for id, raw := range fields {
		var rec domain.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warn("cache record corrupt, skipped",
				zap.String("key", s.key),
				zap.String("video_id", id),
				zap.Error(err),
			)

			continue
		}
		records[id] = rec
	}

	s.logger.Debug("cache hash loaded",
		zap.String("key", s.key),
		zap.Int("records", len(records)),
	)

	return records, nil
}

// Save replaces the hash with the given table. Delete and rewrite run in one
// transaction so superseded IDs do not linger.
func (s *RedisStore) Save(ctx context.Context, records map[string]domain.Record) error {
	fields := make(map[string]interface{}, len(records))
	for id, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", id, err)
		}
		fields[id] = data
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(fields) > 0 {
		pipe.HSet(ctx, s.key, fields)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("cache hash save failed",
			zap.String("key", s.key),
			zap.Int("records", len(records)),
			zap.Error(err),
		)

		return fmt.Errorf("saving cache table: %w", err)
	}

	s.logger.Debug("cache hash saved",
		zap.String("key", s.key),
		zap.Int("records", len(records)),
	)

	return nil
}
