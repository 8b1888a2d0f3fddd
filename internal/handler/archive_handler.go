package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/praxislab/praxis-api/internal/middleware"
	"github.com/praxislab/praxis-api/internal/service"
	"github.com/praxislab/praxis-api/internal/utils"
)

// ArchiveHandler serves the legacy per-assignment archive submission routes.
type ArchiveHandler struct {
	service service.ArchiveService
	logger  zerolog.Logger
}

// NewArchiveHandler builds an archive handler instance.
func NewArchiveHandler(service service.ArchiveService, logger zerolog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		service: service,
		logger:  logger.With().Str("component", "archive_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Submission
// routes are student-only; tutors grade through the admin surface.
func (h *ArchiveHandler) Register(router fiber.Router) {
	router.Post("/:assignment/submissions", middleware.WithAuth(h.submit, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Get("/my-submissions", middleware.WithAuth(h.mySubmissions, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
}

func (h *ArchiveHandler) submit(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	submission, err := h.service.Submit(c.Context(), studentID, assignmentNumber, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, submission)
}

func (h *ArchiveHandler) mySubmissions(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	submissions, err := h.service.ListByStudent(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, submissions)
}

func (h *ArchiveHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrArchiveSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "archive submission not found")
	case errors.Is(err, service.ErrFileRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "submission file is required")
	case errors.Is(err, service.ErrStorageFailure):
		return utils.SendError(c, fiber.StatusInternalServerError, "file storage failed")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
