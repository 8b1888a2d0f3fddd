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

// CodeHandler serves the coding challenge routes.
type CodeHandler struct {
	service service.CodeService
	logger  zerolog.Logger
}

// NewCodeHandler builds a code handler instance.
func NewCodeHandler(service service.CodeService, logger zerolog.Logger) *CodeHandler {
	return &CodeHandler{
		service: service,
		logger:  logger.With().Str("component", "code_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *CodeHandler) Register(router fiber.Router) {
	router.Get("/:challengeId/code/problem", h.problem)
	router.Post("/:challengeId/code/run", h.run)
	router.Post("/:challengeId/code/submit", h.submit)
	router.Get("/:challengeId/code/result", h.result)
}

func (h *CodeHandler) problem(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	problem, err := h.service.GetProblem(c.Context(), studentID, c.Params("challengeId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, problem)
}

func (h *CodeHandler) run(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.CodeRunRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunTests(c.Context(), studentID, c.Params("challengeId"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, result)
}

func (h *CodeHandler) submit(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.CodeSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), studentID, c.Params("challengeId"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, result)
}

func (h *CodeHandler) result(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	result, err := h.service.Result(c.Context(), studentID, c.Params("challengeId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, result)
}

func (h *CodeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "coding problem not found")
	case errors.Is(err, service.ErrChallengeNotSelected):
		return utils.SendError(c, fiber.StatusForbidden, "challenge not selected")
	case errors.Is(err, service.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusBadRequest, "challenge already submitted")
	case errors.Is(err, service.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported language")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
