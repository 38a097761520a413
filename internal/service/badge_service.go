package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/aggregator"
	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/observability"
)

const (
	badgeBufferSize = 8
	badgeCacheKey   = "shifa:badge"
	badgeCacheTTL   = 10 * time.Minute
)

// BadgeService derives the lightweight notification badge from aggregator
// views so presentation surfaces never query the document store for it.
type BadgeService interface {
	Current() dto.BadgeResponse
	Subscribe() (<-chan dto.BadgeResponse, func())
	Start(ctx context.Context, views <-chan aggregator.View)
}

type badgeService struct {
	states *aggregator.StateStore
	cap    int
	redis  *redis.Client
	logger zerolog.Logger

	mu     sync.RWMutex
	latest dto.BadgeResponse

	broker *badgeBroker
}

type badgeBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.BadgeResponse]struct{}
}

// NewBadgeService constructs the dispatcher. The redis client may be nil; it
// is only used to keep the last badge warm across restarts.
func NewBadgeService(states *aggregator.StateStore, unreadCap int, redisClient *redis.Client, logger zerolog.Logger) BadgeService {
	if unreadCap <= 0 {
		unreadCap = 99
	}
	return &badgeService{
		states: states,
		cap:    unreadCap,
		redis:  redisClient,
		logger: logger.With().Str("component", "badge_service").Logger(),
		broker: &badgeBroker{subscribers: make(map[chan dto.BadgeResponse]struct{})},
	}
}

// Start consumes aggregator views until the context is cancelled.
func (s *badgeService) Start(ctx context.Context, views <-chan aggregator.View) {
	if cached := s.fetchCached(ctx); cached != nil {
		s.mu.Lock()
		s.latest = *cached
		s.mu.Unlock()
	} else if s.states != nil {
		s.mu.Lock()
		s.latest = s.derive(s.states.View())
		s.mu.Unlock()
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case view, ok := <-views:
				if !ok {
					return
				}
				s.apply(ctx, view)
			}
		}
	}()
}

// Current returns the last derived badge.
func (s *badgeService) Current() dto.BadgeResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Subscribe registers a badge observer feeding the SSE and websocket
// surfaces. The cleanup func must be called when the surface goes away.
func (s *badgeService) Subscribe() (<-chan dto.BadgeResponse, func()) {
	ch := make(chan dto.BadgeResponse, badgeBufferSize)
	s.broker.subscribe(ch)
	observability.BadgeSubscribersActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(ch)
		observability.BadgeSubscribersActive().Dec()
	}
	return ch, cleanup
}

func (s *badgeService) apply(ctx context.Context, view aggregator.View) {
	badge := s.derive(view)

	s.mu.Lock()
	changed := badge != s.latest
	s.latest = badge
	s.mu.Unlock()

	if !changed {
		return
	}

	// cache first; a broadcast means the badge is already readable from redis
	s.cache(ctx, badge)
	s.broker.broadcast(badge)
}

func (s *badgeService) derive(view aggregator.View) dto.BadgeResponse {
	unread := view.Metrics.PendingReportCount
	capped := unread > s.cap
	if capped {
		unread = s.cap
	}
	return dto.BadgeResponse{Unread: unread, Capped: capped, UpdatedAt: view.UpdatedAt}
}

func (s *badgeService) cache(ctx context.Context, badge dto.BadgeResponse) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(badge)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, badgeCacheKey, payload, badgeCacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache badge")
	}
}

func (s *badgeService) fetchCached(ctx context.Context) *dto.BadgeResponse {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, badgeCacheKey).Result()
	if err != nil {
		return nil
	}
	var badge dto.BadgeResponse
	if err := json.Unmarshal([]byte(raw), &badge); err != nil {
		return nil
	}
	return &badge
}

func (b *badgeBroker) subscribe(ch chan dto.BadgeResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

func (b *badgeBroker) unsubscribe(ch chan dto.BadgeResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *badgeBroker) broadcast(badge dto.BadgeResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- badge:
		default:
		}
	}
}

// TimeAgo renders the distance between two instants the way the dashboards
// display it: "now" inside a minute, relative minutes and hours inside a
// day, and a plain calendar date beyond that.
func TimeAgo(t, now time.Time) string {
	delta := now.Sub(t)
	switch {
	case delta < time.Minute:
		return "now"
	case delta < time.Hour:
		minutes := int(delta.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	case delta < 24*time.Hour:
		hours := int(delta.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		return t.Format("2 Jan 2006")
	}
}
