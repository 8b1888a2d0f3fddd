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

// FileChallengeHandler serves the file-upload challenge routes.
type FileChallengeHandler struct {
	service service.FileChallengeService
	logger  zerolog.Logger
}

// NewFileChallengeHandler builds a file challenge handler instance.
func NewFileChallengeHandler(service service.FileChallengeService, logger zerolog.Logger) *FileChallengeHandler {
	return &FileChallengeHandler{
		service: service,
		logger:  logger.With().Str("component", "file_challenge_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FileChallengeHandler) Register(router fiber.Router) {
	router.Post("/:challengeId/file", h.submit)
	router.Get("/:challengeId/file", h.get)
}

func (h *FileChallengeHandler) submit(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	payload := dto.FileSubmitRequest{Comments: c.FormValue("comments")}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	submission, err := h.service.Submit(c.Context(), studentID, c.Params("challengeId"), file, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, submission)
}

func (h *FileChallengeHandler) get(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	submission, err := h.service.Get(c.Context(), studentID, c.Params("challengeId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, submission)
}

func (h *FileChallengeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrChallengeNotSelected):
		return utils.SendError(c, fiber.StatusForbidden, "challenge not selected")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrFileRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "submission file is required")
	case errors.Is(err, service.ErrFileTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file type not allowed")
	case errors.Is(err, service.ErrStorageFailure):
		return utils.SendError(c, fiber.StatusInternalServerError, "file storage failed")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
