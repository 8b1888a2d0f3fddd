package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/service"
	"github.com/praxislab/praxis-api/internal/utils"
)

// AdminFileHandler serves tutor-side file submission review routes.
type AdminFileHandler struct {
	service service.FileChallengeService
	logger  zerolog.Logger
}

// NewAdminFileHandler builds an admin file handler instance.
func NewAdminFileHandler(service service.FileChallengeService, logger zerolog.Logger) *AdminFileHandler {
	return &AdminFileHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_file_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminFileHandler) Register(router fiber.Router) {
	router.Get("/file-submissions/pending", h.pending)
	router.Post("/file-submissions/:id/grade", h.grade)
	router.Post("/file-submissions/:id/access", h.trackAccess)
}

func (h *AdminFileHandler) pending(c *fiber.Ctx) error {
	assignmentNumber, err := parseQueryInt(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListPending(c.Context(), assignmentNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, submissions)
}

func (h *AdminFileHandler) grade(c *fiber.Ctx) error {
	graderID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FileGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Grade(c.Context(), graderID, submissionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, submission)
}

func (h *AdminFileHandler) trackAccess(c *fiber.Ctx) error {
	accessorID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FileAccessRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	access, err := h.service.TrackAccess(c.Context(), accessorID, submissionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, access)
}

func (h *AdminFileHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
