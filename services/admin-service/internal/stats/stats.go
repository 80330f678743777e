// Package stats aggregates platform-wide counters for the admin dashboard.
package stats

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	cacheKey = "admin:stats"
	cacheTTL = 30 * time.Second
)

type Dashboard struct {
	TotalUsers        int64   `json:"total_users"`
	TotalProviders    int64   `json:"total_providers"`
	ActiveServices    int64   `json:"active_services"`
	TotalBookings     int64   `json:"total_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	AvgServiceRating  float64 `json:"avg_service_rating"`
	TotalReviews      int64   `json:"total_reviews"`
}

type Collector struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewCollector(db *gorm.DB, rdb *redis.Client) *Collector {
	return &Collector{db: db, rdb: rdb}
}

// Collect runs the dashboard aggregates, serving a recent snapshot from
// redis when one exists. A failed counter logs and leaves its field zero
// so one broken table does not blank the whole dashboard.
func (c *Collector) Collect(ctx context.Context) (*Dashboard, error) {
	if cached := c.snapshot(ctx); cached != nil {
		return cached, nil
	}

	var d Dashboard
	c.count(ctx, &d.TotalUsers, "SELECT COUNT(*) FROM users WHERE role = 'user'")
	c.count(ctx, &d.TotalProviders, "SELECT COUNT(*) FROM users WHERE role = 'provider'")
	c.count(ctx, &d.ActiveServices, "SELECT COUNT(*) FROM services WHERE is_active")
	c.count(ctx, &d.TotalBookings, "SELECT COUNT(*) FROM bookings")
	c.count(ctx, &d.CompletedBookings, "SELECT COUNT(*) FROM bookings WHERE status = 'completed'")
	c.count(ctx, &d.TotalReviews, "SELECT COUNT(*) FROM reviews")

	var avg *float64
	if err := c.db.WithContext(ctx).Raw("SELECT AVG(rating) FROM services WHERE total_reviews > 0").Scan(&avg).Error; err != nil {
		log.Printf("[admin] avg rating query failed: %v", err)
	} else if avg != nil {
		d.AvgServiceRating = *avg
	}

	c.store(ctx, &d)
	return &d, nil
}

func (c *Collector) count(ctx context.Context, dst *int64, query string) {
	if err := c.db.WithContext(ctx).Raw(query).Scan(dst).Error; err != nil {
		log.Printf("[admin] stats query failed: %v", err)
	}
}

func (c *Collector) snapshot(ctx context.Context) *Dashboard {
	raw, err := c.rdb.Get(ctx, cacheKey).Result()
	if err != nil {
		return nil
	}
	var d Dashboard
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil
	}
	return &d
}

func (c *Collector) store(ctx context.Context, d *Dashboard) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, cacheKey, b, cacheTTL).Err()
}
