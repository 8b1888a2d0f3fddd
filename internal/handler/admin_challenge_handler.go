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

// AdminChallengeHandler serves catalog and pool authoring routes.
type AdminChallengeHandler struct {
	catalog service.CatalogService
	pools   service.PoolService
	logger  zerolog.Logger
}

// NewAdminChallengeHandler builds an admin challenge handler instance.
func NewAdminChallengeHandler(catalog service.CatalogService, pools service.PoolService, logger zerolog.Logger) *AdminChallengeHandler {
	return &AdminChallengeHandler{
		catalog: catalog,
		pools:   pools,
		logger:  logger.With().Str("component", "admin_challenge_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminChallengeHandler) Register(router fiber.Router) {
	router.Get("/challenges", h.list)
	router.Post("/challenges", h.create)
	router.Patch("/challenges/:challengeId", h.update)
	router.Delete("/challenges/:challengeId", h.remove)

	router.Get("/questions/:assignment", h.listQuestions)
	router.Post("/questions", h.createQuestion)
	router.Delete("/questions/:id", h.deleteQuestion)

	router.Get("/problems/:assignment", h.listProblems)
	router.Post("/problems", h.createProblem)
	router.Delete("/problems/:id", h.deleteProblem)
}

func (h *AdminChallengeHandler) list(c *fiber.Ctx) error {
	assignmentNumber, err := parseQueryInt(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var challengeType *string
	if value := c.Query("type"); value != "" {
		challengeType = &value
	}

	challenges, err := h.catalog.List(c.Context(), assignmentNumber, challengeType, false)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, challenges)
}

func (h *AdminChallengeHandler) create(c *fiber.Ctx) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.ChallengeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	challenge, err := h.catalog.Create(c.Context(), adminID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, challenge)
}

func (h *AdminChallengeHandler) update(c *fiber.Ctx) error {
	var payload dto.ChallengeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	challenge, err := h.catalog.Update(c.Context(), c.Params("challengeId"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, challenge)
}

func (h *AdminChallengeHandler) remove(c *fiber.Ctx) error {
	if err := h.catalog.Delete(c.Context(), c.Params("challengeId")); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, nil)
}

func (h *AdminChallengeHandler) listQuestions(c *fiber.Ctx) error {
	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.pools.ListQuestions(c.Context(), assignmentNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, questions)
}

func (h *AdminChallengeHandler) createQuestion(c *fiber.Ctx) error {
	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.pools.CreateQuestion(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, question)
}

func (h *AdminChallengeHandler) deleteQuestion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.pools.DeleteQuestion(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, nil)
}

func (h *AdminChallengeHandler) listProblems(c *fiber.Ctx) error {
	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	problems, err := h.pools.ListProblems(c.Context(), assignmentNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, problems)
}

func (h *AdminChallengeHandler) createProblem(c *fiber.Ctx) error {
	var payload dto.CodeProblemCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	problem, err := h.pools.CreateProblem(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, problem)
}

func (h *AdminChallengeHandler) deleteProblem(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.pools.DeleteProblem(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, nil)
}

func (h *AdminChallengeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "coding problem not found")
	case errors.Is(err, service.ErrInvalidChallengeType):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid challenge type")
	case errors.Is(err, service.ErrInvalidCorrectAnswer):
		return utils.SendError(c, fiber.StatusBadRequest, "correct answer index out of range")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
