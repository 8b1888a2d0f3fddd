package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/praxislab/praxis-api/internal/service"
	"github.com/praxislab/praxis-api/internal/utils"
)

// ProgressHandler serves progress and statistics routes.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler builds a progress handler instance.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the student route to the provided router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/:assignment", h.studentProgress)
}

// RegisterAdmin attaches the admin overview routes.
func (h *ProgressHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/progress/:assignment", h.adminProgress)
	router.Get("/statistics/:assignment", h.statistics)
}

func (h *ProgressHandler) studentProgress(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.StudentProgress(c.Context(), studentID, assignmentNumber)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, progress)
}

func (h *ProgressHandler) adminProgress(c *fiber.Ctx) error {
	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.AdminProgress(c.Context(), assignmentNumber)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute admin progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, progress)
}

func (h *ProgressHandler) statistics(c *fiber.Ctx) error {
	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.Statistics(c.Context(), assignmentNumber)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, stats)
}
