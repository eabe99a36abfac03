package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/metrics"
	"matching-workers/internal/models"
)

const candidatePoolKeyPrefix = "candidates:eligible:"

// CachedCandidateRepository keeps the eligible pool in Redis. The cached
// JSON keeps the source order, so scoring results do not depend on
// whether the pool came from the cache. Redis failures fall back to the
// source.
type CachedCandidateRepository struct {
	source CandidateSource
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCandidateRepository(source CandidateSource, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedCandidateRepository {
	return &CachedCandidateRepository{
		source: source,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"repository": "candidates-cache"}),
	}
}

func candidatePoolKey(minFollowers int64) string {
	return fmt.Sprintf("%s%d", candidatePoolKeyPrefix, minFollowers)
}

func (r *CachedCandidateRepository) FetchEligibleCandidates(ctx context.Context, minFollowers int64) ([]models.CandidateProfile, error) {
	key := candidatePoolKey(minFollowers)

	val, err := r.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var pool []models.CandidateProfile
		if jsonErr := json.Unmarshal([]byte(val), &pool); jsonErr == nil {
			metrics.CandidateCacheLookups.WithLabelValues("hit").Inc()
			return pool, nil
		}
		metrics.CandidateCacheLookups.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CandidateCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CandidateCacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("candidate cache read failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}

	pool, err := r.source.FetchEligibleCandidates(ctx, minFollowers)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(pool)
	if err != nil {
		return pool, nil
	}
	if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("candidate cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
	return pool, nil
}

// Invalidate drops the cached pool for minFollowers.
func (r *CachedCandidateRepository) Invalidate(ctx context.Context, minFollowers int64) error {
	return r.redis.Del(ctx, candidatePoolKey(minFollowers)).Err()
}
