package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luischz/inventario_ventas/internal/domain"
)

// trackingKey holds the set of cached report keys so invalidation does not
// need a SCAN over the keyspace.
const trackingKey = "reportes:rango:keys"

// ReportCache caches range reports in Redis. Any sale mutation invalidates
// every cached report, since a single sale can move several buckets.
type ReportCache struct {
	client    *redis.Client
	reportTTL time.Duration
}

// NewReportCache creates a new Redis report cache instance
func NewReportCache(client *redis.Client, reportTTL time.Duration) *ReportCache {
	return &ReportCache{
		client:    client,
		reportTTL: reportTTL,
	}
}

func (c *ReportCache) rangeKey(from, to time.Time, period string) string {
	return fmt.Sprintf("reportes:rango:%d:%d:%s", from.Unix(), to.Unix(), period)
}

// GetRangeReport retrieves a cached range report
func (c *ReportCache) GetRangeReport(ctx context.Context, from, to time.Time, period string) (*domain.RangeReport, error) {
	key := c.rangeKey(from, to, period)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var report domain.RangeReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// SetRangeReport stores a range report and tracks its key in a SET
func (c *ReportCache) SetRangeReport(ctx context.Context, from, to time.Time, period string, report *domain.RangeReport) error {
	key := c.rangeKey(from, to, period)

	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reportTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reportTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateReports removes every cached range report using SET-based tracking
func (c *ReportCache) InvalidateReports(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, trackingKey)
		return c.client.Unlink(ctx, keys...).Err()
	}

	return nil
}
