package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shifa-care/shifa-api/internal/aggregator"
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/store"
)

func viewWithPending(pending int) aggregator.View {
	return aggregator.View{
		Metrics:   aggregator.Metrics{PendingReportCount: pending},
		UpdatedAt: time.Now().UTC(),
	}
}

func TestBadgeFollowsPendingReports(t *testing.T) {
	svc := NewBadgeService(nil, 99, nil, testLogger())

	views := make(chan aggregator.View, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, views)

	updates, stop := svc.Subscribe()
	defer stop()

	views <- viewWithPending(4)

	select {
	case badge := <-updates:
		assert.Equal(t, 4, badge.Unread)
		assert.False(t, badge.Capped)
	case <-time.After(2 * time.Second):
		t.Fatal("no badge update delivered")
	}

	assert.Equal(t, 4, svc.Current().Unread)
}

func TestBadgeCapsUnreadCount(t *testing.T) {
	svc := NewBadgeService(nil, 99, nil, testLogger())

	views := make(chan aggregator.View, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, views)

	updates, stop := svc.Subscribe()
	defer stop()

	views <- viewWithPending(1500)

	select {
	case badge := <-updates:
		assert.Equal(t, 99, badge.Unread)
		assert.True(t, badge.Capped)
	case <-time.After(2 * time.Second):
		t.Fatal("no badge update delivered")
	}
}

func TestBadgeSkipsBroadcastWhenUnchanged(t *testing.T) {
	svc := NewBadgeService(nil, 99, nil, testLogger())

	views := make(chan aggregator.View, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, views)

	updates, stop := svc.Subscribe()
	defer stop()

	at := time.Now().UTC()
	view := aggregator.View{Metrics: aggregator.Metrics{PendingReportCount: 2}, UpdatedAt: at}
	views <- view
	<-updates

	views <- view

	select {
	case badge := <-updates:
		t.Fatalf("unchanged badge rebroadcast: %+v", badge)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBadgeWarmsFromRedisCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	require.NoError(t, server.Set("shifa:badge", `{"unread":7,"capped":false,"updated_at":"2026-01-02T03:04:05Z"}`))

	svc := NewBadgeService(nil, 99, redisClient, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, make(chan aggregator.View))

	assert.Equal(t, 7, svc.Current().Unread)
}

func TestBadgeSeedsFromAggregatorView(t *testing.T) {
	states := aggregator.New(testLogger())
	states.Apply(store.CollectionReports, []store.Document{
		{"id": "r1", "status": models.ReportStatusPending},
		{"id": "r2", "status": models.ReportStatusPending},
		{"id": "r3", "status": models.ReportStatusResolved},
	})

	svc := NewBadgeService(states, 99, nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, make(chan aggregator.View))

	assert.Equal(t, 2, svc.Current().Unread)
}

func TestBadgeCachesToRedisOnChange(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	svc := NewBadgeService(nil, 99, redisClient, testLogger())
	views := make(chan aggregator.View, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx, views)

	updates, stop := svc.Subscribe()
	defer stop()

	views <- viewWithPending(3)
	<-updates

	cached, err := server.Get("shifa:badge")
	require.NoError(t, err)
	assert.Contains(t, cached, `"unread":3`)
}

func TestSubscribeCleanupClosesChannel(t *testing.T) {
	svc := NewBadgeService(nil, 99, nil, testLogger())

	updates, stop := svc.Subscribe()
	stop()
	stop()

	_, open := <-updates
	assert.False(t, open)
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "now"},
		{"single minute", now.Add(-90 * time.Second), "1 minute"},
		{"minutes", now.Add(-45 * time.Minute), "45 minutes"},
		{"single hour", now.Add(-1 * time.Hour), "1 hour"},
		{"hours", now.Add(-23 * time.Hour), "23 hours"},
		{"calendar date", now.Add(-48 * time.Hour), "13 Mar 2026"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeAgo(tc.at, now))
		})
	}
}
