package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/aggregator"
	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/geo"
	"github.com/shifa-care/shifa-api/internal/observability"
	"github.com/shifa-care/shifa-api/internal/store"
	"github.com/shifa-care/shifa-api/internal/utils"
)

const liveKeepAlive = 30 * time.Second

// DashboardHandler serves the derived monitoring state: metrics, the
// governorate shortage map and a live websocket stream of views.
type DashboardHandler struct {
	states *aggregator.StateStore
	logger zerolog.Logger
}

// NewDashboardHandler constructs a handler instance.
func NewDashboardHandler(states *aggregator.StateStore, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		states: states,
		logger: logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register binds the dashboard routes.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/metrics", h.metrics)
	router.Get("/map", h.regionMap)
	router.Get("/live", websocket.New(h.live))
}

func (h *DashboardHandler) metrics(c *fiber.Ctx) error {
	view := h.states.View()
	return utils.SendSuccess(c, "dashboard metrics", dto.NewDashboardMetricsResponse(view))
}

func (h *DashboardHandler) regionMap(c *fiber.Ctx) error {
	view := h.states.View()
	statuses := geo.Correlate(view.Docs(store.CollectionReports))
	return utils.SendSuccess(c, "region statuses", dto.NewRegionStatusResponseSlice(statuses))
}

type liveEvent struct {
	Metrics dto.DashboardMetricsResponse `json:"metrics"`
	Regions []dto.RegionStatusResponse   `json:"regions"`
}

func (h *DashboardHandler) live(conn *websocket.Conn) {
	views, cancel := h.states.Watch()
	defer cancel()

	observability.LiveStreamClients().Inc()
	defer observability.LiveStreamClients().Dec()

	// send the current state immediately so a reconnecting dashboard does
	// not wait for the next change
	if err := conn.WriteJSON(h.eventFor(h.states.View())); err != nil {
		return
	}

	for {
		select {
		case view, ok := <-views:
			if !ok {
				return
			}
			if err := conn.WriteJSON(h.eventFor(view)); err != nil {
				h.logger.Debug().Err(err).Msg("live stream write failed")
				return
			}
		case <-time.After(liveKeepAlive):
			if err := conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				h.logger.Debug().Err(err).Msg("live stream ping failed")
				return
			}
		}
	}
}

func (h *DashboardHandler) eventFor(view aggregator.View) liveEvent {
	return liveEvent{
		Metrics: dto.NewDashboardMetricsResponse(view),
		Regions: dto.NewRegionStatusResponseSlice(geo.Correlate(view.Docs(store.CollectionReports))),
	}
}
