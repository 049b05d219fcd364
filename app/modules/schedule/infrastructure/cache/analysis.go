package schedulecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "schedule:analysis"

	// DefaultAnalysisTTL applies when the configured TTL is zero.
	DefaultAnalysisTTL = 15 * time.Minute
)

// AnalysisCache stores analysis responses in Redis as JSON. Every key written
// for a season is also tracked in a per-season set so Invalidate can drop them
// without a SCAN.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewAnalysisCache creates a Redis-backed analysis cache.
func NewAnalysisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *AnalysisCache {
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisCache{client: client, ttl: ttl, logger: logger}
}

var _ scheduleservice.AnalysisCache = (*AnalysisCache)(nil)

func analysisKey(k scheduleservice.AnalysisKey) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, k.SeasonID, k.SourceSeasonID, k.Fingerprint)
}

func indexKey(seasonID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:keys", keyPrefix, seasonID)
}

// Load unmarshals a cached response into dst. A miss returns false, nil.
func (c *AnalysisCache) Load(ctx context.Context, k scheduleservice.AnalysisKey, dst any) (bool, error) {
	key := analysisKey(k)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("schedulecache.Load: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A payload from an older release; drop it and treat as a miss.
		c.logger.WarnContext(ctx, "Discarding unreadable cached analysis", "key", key, "error", err)
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// Store caches v for the configured TTL.
func (c *AnalysisCache) Store(ctx context.Context, k scheduleservice.AnalysisKey, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("schedulecache.Store: marshal: %w", err)
	}

	key := analysisKey(k)
	index := indexKey(k.SeasonID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, index, key)
		pipe.Expire(ctx, index, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("schedulecache.Store: %w", err)
	}
	return nil
}

// Invalidate drops every cached analysis of the season.
func (c *AnalysisCache) Invalidate(ctx context.Context, seasonID uuid.UUID) error {
	index := indexKey(seasonID)
	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("schedulecache.Invalidate: %w", err)
	}
	if err := c.client.Del(ctx, append(keys, index)...).Err(); err != nil {
		return fmt.Errorf("schedulecache.Invalidate: %w", err)
	}
	return nil
}
