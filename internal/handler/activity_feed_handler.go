package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/service"
	"github.com/shifa-care/shifa-api/internal/utils"
)

// ActivityFeedHandler serves the append-only audit feed.
type ActivityFeedHandler struct {
	service service.ActivityFeedService
	logger  zerolog.Logger
}

// NewActivityFeedHandler constructs a handler instance.
func NewActivityFeedHandler(service service.ActivityFeedService, logger zerolog.Logger) *ActivityFeedHandler {
	return &ActivityFeedHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_feed_handler").Logger(),
	}
}

// Register binds the activity feed routes.
func (h *ActivityFeedHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *ActivityFeedHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	activities, err := h.service.List(c.UserContext(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activities")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activities")
	}
	return utils.SendSuccess(c, "activities", activities)
}
