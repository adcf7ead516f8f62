// Package cache provides a Redis-backed cache for computed campaign reports.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zapflow/zapflow/pkg/models"
)

// ErrMiss indicates no cached report exists for the campaign.
var ErrMiss = errors.New("report cache miss")

// ReportCache stores assembled campaign reports keyed by campaign id.
type ReportCache interface {
	Get(ctx context.Context, campaignID string) (*models.CampaignReport, error)
	Set(ctx context.Context, campaignID string, report *models.CampaignReport) error
	Invalidate(ctx context.Context, campaignID string) error
}

// RedisReportCache implements ReportCache on Redis with a short TTL. Reports
// are derived data, so losing a cache entry only costs a recomputation.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReportCache parses a redis:// URL and returns a ready cache.
func NewRedisReportCache(redisURL string, ttl time.Duration) (*RedisReportCache, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &RedisReportCache{
		client: redis.NewClient(options),
		ttl:    ttl,
	}, nil
}

func key(campaignID string) string {
	return "zapflow:report:" + campaignID
}

// Get returns a cached report or ErrMiss.
func (c *RedisReportCache) Get(ctx context.Context, campaignID string) (*models.CampaignReport, error) {
	data, err := c.client.Get(ctx, key(campaignID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}

		return nil, err
	}

	var report models.CampaignReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// Set stores a report under the configured TTL.
func (c *RedisReportCache) Set(ctx context.Context, campaignID string, report *models.CampaignReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key(campaignID), data, c.ttl).Err()
}

// Invalidate drops the cached report for a campaign.
func (c *RedisReportCache) Invalidate(ctx context.Context, campaignID string) error {
	return c.client.Del(ctx, key(campaignID)).Err()
}

// Close releases the underlying client.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
