// File: internal/infra/redis/quota_limiter.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/razavioo/notimetolie.com/internal/domain"
)

// QuotaLimiter counts submissions per configuration per UTC day.
type QuotaLimiter struct {
	client Client
}

func NewQuotaLimiter(client Client) *QuotaLimiter {
	return &QuotaLimiter{client: client}
}

func quotaKey(configID string, day time.Time) string {
	return fmt.Sprintf("ai_quota:%s:%s", configID, day.UTC().Format("2006-01-02"))
}

// Allow consumes one unit of the configuration's daily budget. The first
// increment of the day sets a TTL so stale counters expire on their own.
// Returns domain.ErrQuotaExceeded once the limit is crossed; limit <= 0
// means unlimited.
func (l *QuotaLimiter) Allow(ctx context.Context, configID string, limit int) error {
	if limit <= 0 {
		return nil
	}
	key := quotaKey(configID, time.Now())
	n, err := l.client.Incr(ctx, key)
	if err != nil {
		return fmt.Errorf("quota incr: %w", err)
	}
	if n == 1 {
		if _, err := l.client.Expire(ctx, key, 48*time.Hour); err != nil {
			return fmt.Errorf("quota expire: %w", err)
		}
	}
	if n > int64(limit) {
		return domain.ErrQuotaExceeded
	}
	return nil
}
