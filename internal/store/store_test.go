package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestSeenLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	hash := "deadbeef"

	seen, err := s.IsSeen(ctx, hash)
	require.NoError(t, err)
	require.False(t, seen, "fresh hash must not be seen")

	require.NoError(t, s.MarkSeen(ctx, hash, 1700000000))

	seen, err = s.IsSeen(ctx, hash)
	require.NoError(t, err)
	require.True(t, seen)

	// Marking again is a no-op, not an error.
	require.NoError(t, s.MarkSeen(ctx, hash, 1800000000))

	seen, err = s.IsSeen(ctx, hash)
	require.NoError(t, err)
	require.True(t, seen)
}

func TestSeenSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.MarkSeen(ctx, "cafe01", 1700000000))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.IsSeen(ctx, "cafe01")
	require.NoError(t, err)
	require.True(t, seen, "seen marks must survive restarts")
}

func TestCheckAndIncrementStopsAtLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	key := "2026-08-30"

	for i := 0; i < 2; i++ {
		ok, err := s.CheckAndIncrement(ctx, key, 2)
		require.NoError(t, err)
		require.True(t, ok, "increment %d within limit must be permitted", i+1)
	}

	ok, err := s.CheckAndIncrement(ctx, key, 2)
	require.NoError(t, err)
	require.False(t, ok, "third increment must be denied")

	count, err := s.QuotaCount(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 2, count, "denial must not mutate the counter")
}

func TestQuotaDailyRollover(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	current := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	quota := NewQuota(s, func() time.Time { return current })

	for i := 0; i < 2; i++ {
		ok, err := quota.AllowDaily(ctx, 2)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := quota.AllowDaily(ctx, 2)
	require.NoError(t, err)
	require.False(t, ok)

	// A new day starts its counter at 0.
	current = current.AddDate(0, 0, 1)
	ok, err = quota.AllowDaily(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestQuotaWeeklyRollover(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Monday of an ISO week.
	current := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	quota := NewQuota(s, func() time.Time { return current })

	days := []int{0, 2, 4}
	for _, offset := range days {
		current = time.Date(2026, 8, 24+offset, 9, 0, 0, 0, time.UTC)
		ok, err := quota.AllowWeekly(ctx, 3)
		require.NoError(t, err)
		require.True(t, ok, "increments across days of the same week must share the counter")
	}

	current = time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) // Saturday, same week
	ok, err := quota.AllowWeekly(ctx, 3)
	require.NoError(t, err)
	require.False(t, ok, "fourth increment within the week must be denied")

	current = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) // next Monday
	ok, err = quota.AllowWeekly(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok, "week rollover resets eligibility")
}

func TestWeekKeyISOSemantics(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		// Jan 1 2026 is a Thursday, so it belongs to 2026-W01.
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		// Dec 29 2025 is the Monday of the week containing that Thursday.
		{time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), "2026-W01"},
		// Jan 3 2027 is a Sunday still inside 2026's last ISO week.
		{time.Date(2027, 1, 3, 0, 0, 0, 0, time.UTC), "2026-W53"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, WeekKey(tc.date), "WeekKey(%s)", tc.date)
	}
}

func TestStopMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "STOP")
	marker := NewStopMarker(path)

	require.False(t, marker.IsSet())

	require.NoError(t, marker.Set())
	require.True(t, marker.IsSet())

	// Setting twice is a no-op.
	require.NoError(t, marker.Set())
	require.True(t, marker.IsSet())

	require.NoError(t, marker.Clear())
	require.False(t, marker.IsSet())

	// Clearing an absent marker is a no-op.
	require.NoError(t, marker.Clear())
}

func TestStopMarkerDegradesToFalse(t *testing.T) {
	// An unreadable path must read as not-stopped, never panic or error.
	marker := NewStopMarker(filepath.Join(t.TempDir(), "missing", "deeper", "STOP"))
	require.False(t, marker.IsSet())

	var nilMarker *StopMarker
	require.False(t, nilMarker.IsSet())
}
