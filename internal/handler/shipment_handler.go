package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/service"
	"github.com/shifa-care/shifa-api/internal/utils"
)

// ShipmentHandler exposes shipment tracking operations.
type ShipmentHandler struct {
	service service.ShipmentService
	logger  zerolog.Logger
}

// NewShipmentHandler constructs a handler instance.
func NewShipmentHandler(service service.ShipmentService, logger zerolog.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
		logger:  logger.With().Str("component", "shipment_handler").Logger(),
	}
}

// Register binds the shipment routes.
func (h *ShipmentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Patch("/:id", h.updateProgress)
}

func (h *ShipmentHandler) list(c *fiber.Ctx) error {
	shipments, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list shipments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list shipments")
	}
	return utils.SendSuccess(c, "shipments", shipments)
}

func (h *ShipmentHandler) create(c *fiber.Ctx) error {
	var payload dto.ShipmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	shipment, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create shipment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create shipment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "shipment created", shipment)
}

func (h *ShipmentHandler) updateProgress(c *fiber.Ctx) error {
	var payload dto.ShipmentProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	shipment, err := h.service.UpdateProgress(c.UserContext(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "shipment not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update shipment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update shipment")
		}
	}
	return utils.SendSuccess(c, "shipment updated", shipment)
}
