package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/middleware"
	"github.com/shifa-care/shifa-api/internal/service"
	"github.com/shifa-care/shifa-api/internal/utils"
)

// BadgeHandler serves the notification badge, both as a one-shot read and as
// an SSE stream.
type BadgeHandler struct {
	service   service.BadgeService
	logger    zerolog.Logger
	keepAlive time.Duration
}

// NewBadgeHandler constructs a handler instance.
func NewBadgeHandler(service service.BadgeService, logger zerolog.Logger, keepAlive time.Duration) *BadgeHandler {
	return &BadgeHandler{
		service:   service,
		logger:    logger.With().Str("component", "badge_handler").Logger(),
		keepAlive: keepAlive,
	}
}

// Register binds the badge routes.
func (h *BadgeHandler) Register(router fiber.Router) {
	router.Get("/", h.current)
	router.Get("/stream", h.stream)
}

func (h *BadgeHandler) current(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "badge", h.service.Current())
}

func (h *BadgeHandler) stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
	ctx, cancel := context.WithCancel(ctx)

	badges, cleanup := h.service.Subscribe()
	initial := h.service.Current()

	keepAlive := h.keepAlive
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		if err := writeBadgeEvent(w, initial); err != nil {
			return
		}

		ticker := time.NewTicker(keepAlive / 2)
		defer ticker.Stop()

		for {
			select {
			case badge, ok := <-badges:
				if !ok {
					return
				}
				if err := writeBadgeEvent(w, badge); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write badge event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write badge keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func writeBadgeEvent(w *bufio.Writer, badge dto.BadgeResponse) error {
	payload, err := json.Marshal(badge)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
