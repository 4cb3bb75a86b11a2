package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicore/booking-platform/pkg/logging"
)

// SummaryCache keeps rendered dashboard summaries in redis for a short TTL.
// Nil receiver and nil client both degrade to cache-off: lookups miss and
// writes are dropped, so the dashboard still works without redis.
type SummaryCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewSummaryCache creates a cache over the given redis client.
func NewSummaryCache(redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *SummaryCache {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SummaryCache{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *SummaryCache) adminKey() string {
	return "clinic:dashboard:admin"
}

func (c *SummaryCache) doctorKey(doctorID string) string {
	return fmt.Sprintf("clinic:dashboard:doctor:%s", doctorID)
}

// GetAdmin returns the cached admin summary if present.
func (c *SummaryCache) GetAdmin(ctx context.Context) (*AdminSummary, bool) {
	var summary AdminSummary
	if !c.get(ctx, c.adminKey(), &summary) {
		return nil, false
	}
	return &summary, true
}

// SetAdmin stores the admin summary.
func (c *SummaryCache) SetAdmin(ctx context.Context, summary *AdminSummary) {
	c.set(ctx, c.adminKey(), summary)
}

// GetDoctor returns the cached doctor summary if present.
func (c *SummaryCache) GetDoctor(ctx context.Context, doctorID string) (*DoctorSummary, bool) {
	var summary DoctorSummary
	if !c.get(ctx, c.doctorKey(doctorID), &summary) {
		return nil, false
	}
	return &summary, true
}

// SetDoctor stores the doctor summary.
func (c *SummaryCache) SetDoctor(ctx context.Context, doctorID string, summary *DoctorSummary) {
	c.set(ctx, c.doctorKey(doctorID), summary)
}

func (c *SummaryCache) get(ctx context.Context, key string, out any) bool {
	if c == nil || c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Error("dashboard cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error("dashboard cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *SummaryCache) set(ctx context.Context, key string, value any) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("dashboard cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("dashboard cache write failed", "key", key, "error", err)
	}
}
