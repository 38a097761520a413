package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/service"
	"github.com/shifa-care/shifa-api/internal/utils"
)

// MedicineHandler exposes admin CRUD over the medicines collection.
type MedicineHandler struct {
	service service.InventoryService
	logger  zerolog.Logger
}

// NewMedicineHandler constructs a handler instance.
func NewMedicineHandler(service service.InventoryService, logger zerolog.Logger) *MedicineHandler {
	return &MedicineHandler{
		service: service,
		logger:  logger.With().Str("component", "medicine_handler").Logger(),
	}
}

// Register binds the medicine routes.
func (h *MedicineHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *MedicineHandler) list(c *fiber.Ctx) error {
	medicines, err := h.service.List(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list medicines")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list medicines")
	}
	return utils.SendSuccess(c, "medicines", medicines)
}

func (h *MedicineHandler) create(c *fiber.Ctx) error {
	var payload dto.MedicineCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	medicine, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create medicine")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create medicine")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "medicine created", medicine)
}

func (h *MedicineHandler) update(c *fiber.Ctx) error {
	var payload dto.MedicineUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	medicine, err := h.service.Update(c.UserContext(), actorFromContext(c), c.Params("id"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMedicineNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "medicine not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update medicine")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update medicine")
		}
	}
	return utils.SendSuccess(c, "medicine updated", medicine)
}

func (h *MedicineHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), actorFromContext(c), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrMedicineNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "medicine not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete medicine")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete medicine")
	}
	return utils.SendSuccess(c, "medicine deleted", nil)
}
