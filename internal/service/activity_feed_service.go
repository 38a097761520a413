package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/store"
)

const defaultActivityFeedLimit = 50

// ActivityFeedService serves the append-only audit feed to the dashboards.
type ActivityFeedService interface {
	List(ctx context.Context, limit int) ([]dto.ActivityResponse, error)
}

type activityFeedService struct {
	docs   store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewActivityFeedService constructs the feed service.
func NewActivityFeedService(docs store.Store, logger zerolog.Logger) ActivityFeedService {
	return &activityFeedService{
		docs:   docs,
		logger: logger.With().Str("component", "activity_feed_service").Logger(),
		now:    time.Now,
	}
}

func (s *activityFeedService) List(ctx context.Context, limit int) ([]dto.ActivityResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultActivityFeedLimit
	}

	docs, err := s.docs.Fetch(ctx, store.Query{
		Collection: store.CollectionActivities,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := make([]dto.ActivityResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, dto.NewActivityResponse(doc, TimeAgo(doc.Time("created_at"), now)))
	}
	return out, nil
}
