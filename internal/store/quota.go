package store

import (
	"context"
	"fmt"
	"time"
)

// Quota resolves day/week scope keys against an injected clock and applies
// the atomic check-and-increment of the backing store. Old scope keys are
// retained but never consulted again once the day or week rolls over.
type Quota struct {
	store *Store
	now   func() time.Time
}

// NewQuota creates a limiter; now defaults to time.Now when nil.
func NewQuota(store *Store, now func() time.Time) *Quota {
	if now == nil {
		now = time.Now
	}
	return &Quota{store: store, now: now}
}

// DayKey returns the daily scope key (YYYY-MM-DD) for t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey returns the ISO-8601 week scope key (YYYY-Www, Monday-start) for t.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// AllowDaily consumes one unit of today's quota, returning false without
// mutating state once the daily limit is reached.
func (q *Quota) AllowDaily(ctx context.Context, limit int) (bool, error) {
	return q.store.CheckAndIncrement(ctx, DayKey(q.now()), limit)
}

// AllowWeekly consumes one unit of this ISO week's quota.
func (q *Quota) AllowWeekly(ctx context.Context, limit int) (bool, error) {
	return q.store.CheckAndIncrement(ctx, WeekKey(q.now()), limit)
}
