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

// AdminGradingHandler serves grading configuration, bulk grading, and
// archive review routes.
type AdminGradingHandler struct {
	grading  service.GradingAdminService
	archives service.ArchiveService
	logger   zerolog.Logger
}

// NewAdminGradingHandler builds an admin grading handler instance.
func NewAdminGradingHandler(grading service.GradingAdminService, archives service.ArchiveService, logger zerolog.Logger) *AdminGradingHandler {
	return &AdminGradingHandler{
		grading:  grading,
		archives: archives,
		logger:   logger.With().Str("component", "admin_grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminGradingHandler) Register(router fiber.Router) {
	router.Get("/grading/config/:assignment", h.listConfigs)
	router.Get("/grading/config/:assignment/:type", h.getConfig)
	router.Put("/grading/config", h.upsertConfig)
	router.Post("/grading/bulk", h.bulkGrade)
	router.Get("/grading/bulk/:jobId", h.jobStatus)

	router.Get("/archives/:assignment", h.listArchives)
	router.Post("/archives/:id/grade", h.gradeArchive)
	router.Post("/archives/:id/auto-grade", h.autoGradeArchive)
}

func (h *AdminGradingHandler) listConfigs(c *fiber.Ctx) error {
	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	configs, err := h.grading.ListConfigs(c.Context(), assignmentNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, configs)
}

func (h *AdminGradingHandler) getConfig(c *fiber.Ctx) error {
	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	config, err := h.grading.GetConfig(c.Context(), assignmentNumber, c.Params("type"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, config)
}

func (h *AdminGradingHandler) upsertConfig(c *fiber.Ctx) error {
	var payload dto.GradingConfigRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	config, err := h.grading.UpsertConfig(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, config)
}

func (h *AdminGradingHandler) bulkGrade(c *fiber.Ctx) error {
	var payload dto.BulkGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	job, err := h.grading.BulkGrade(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, job)
}

func (h *AdminGradingHandler) jobStatus(c *fiber.Ctx) error {
	status, err := h.grading.JobStatus(c.Context(), c.Params("jobId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, status)
}

func (h *AdminGradingHandler) listArchives(c *fiber.Ctx) error {
	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.archives.ListByAssignment(c.Context(), assignmentNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, submissions)
}

func (h *AdminGradingHandler) gradeArchive(c *fiber.Ctx) error {
	graderID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ArchiveGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.archives.Grade(c.Context(), graderID, submissionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, submission)
}

func (h *AdminGradingHandler) autoGradeArchive(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.archives.AutoGrade(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, submission)
}

func (h *AdminGradingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrGradingConfigNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grading config not found")
	case errors.Is(err, service.ErrBulkJobNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "bulk grading job not found")
	case errors.Is(err, service.ErrNothingToGrade):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "no pending submissions to grade")
	case errors.Is(err, service.ErrArchiveSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "archive submission not found")
	case errors.Is(err, service.ErrArchiveFileMissing):
		return utils.SendError(c, fiber.StatusGone, "archive file missing")
	case errors.Is(err, service.ErrInvalidChallengeType):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid challenge type")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
