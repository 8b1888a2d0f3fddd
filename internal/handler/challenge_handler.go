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

// ChallengeHandler serves the student-facing catalog and selection routes.
type ChallengeHandler struct {
	catalog    service.CatalogService
	selections service.SelectionService
	logger     zerolog.Logger
}

// NewChallengeHandler builds a challenge handler instance.
func NewChallengeHandler(catalog service.CatalogService, selections service.SelectionService, logger zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		catalog:    catalog,
		selections: selections,
		logger:     logger.With().Str("component", "challenge_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ChallengeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/available/:assignment", h.available)
	router.Post("/select", h.selectChallenges)
	router.Get("/selection/:assignment", h.selection)
	router.Get("/:challengeId", h.get)
}

func (h *ChallengeHandler) list(c *fiber.Ctx) error {
	assignmentNumber, err := parseQueryInt(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var challengeType *string
	if value := c.Query("type"); value != "" {
		challengeType = &value
	}

	challenges, err := h.catalog.List(c.Context(), assignmentNumber, challengeType, true)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, challenges)
}

func (h *ChallengeHandler) get(c *fiber.Ctx) error {
	challenge, err := h.catalog.Get(c.Context(), c.Params("challengeId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, challenge)
}

func (h *ChallengeHandler) available(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	available, err := h.selections.Available(c.Context(), studentID, assignmentNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, available)
}

func (h *ChallengeHandler) selectChallenges(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.SelectionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	selection, err := h.selections.Select(c.Context(), studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, selection)
}

func (h *ChallengeHandler) selection(c *fiber.Ctx) error {
	studentID, err := currentUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	assignmentNumber, err := parseIntParam(c, "assignment")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	selection, err := h.selections.Get(c.Context(), studentID, assignmentNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, selection)
}

func (h *ChallengeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrSelectionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "selection not found")
	case errors.Is(err, service.ErrUnknownChallengeSelected):
		return utils.SendError(c, fiber.StatusBadRequest, "selection contains unknown or inactive challenges")
	case errors.Is(err, service.ErrInvalidChallengeType):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid challenge type")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
