package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/service"
	"github.com/shifa-care/shifa-api/internal/utils"
)

// ReportHandler exposes the shortage report lifecycle commands.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs a handler instance.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register binds the report routes.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id/advance", h.advance)
	router.Delete("/:id", h.remove)
}

func (h *ReportHandler) list(c *fiber.Ctx) error {
	reports, err := h.service.List(c.UserContext(), c.Query("status"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list reports")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list reports")
	}
	return utils.SendSuccess(c, "reports", reports)
}

func (h *ReportHandler) create(c *fiber.Ctx) error {
	var payload dto.ReportCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	report, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) || errors.Is(err, service.ErrUnknownGovernorate) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create report")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "report created", report)
}

func (h *ReportHandler) get(c *fiber.Ctx) error {
	report, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "report not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch report")
	}
	return utils.SendSuccess(c, "report", report)
}

func (h *ReportHandler) advance(c *fiber.Ctx) error {
	report, err := h.service.Advance(c.UserContext(), actorFromContext(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "report not found")
		case errors.Is(err, service.ErrInvalidTransition):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to advance report")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to advance report")
		}
	}
	return utils.SendSuccess(c, "report advanced", report)
}

func (h *ReportHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), actorFromContext(c), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "report not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete report")
	}
	return utils.SendSuccess(c, "report deleted", nil)
}
