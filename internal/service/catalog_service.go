package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/repository"
)

var (
	// ErrChallengeNotFound indicates the challenge does not exist.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrInvalidChallengeType indicates an unknown challenge type string.
	ErrInvalidChallengeType = errors.New("invalid challenge type")
	// ErrProblemNotFound indicates the referenced coding problem does not exist.
	ErrProblemNotFound = errors.New("coding problem not found")
)

// CatalogService manages the published challenge catalog.
type CatalogService interface {
	List(ctx context.Context, assignmentNumber *int, challengeType *string, activeOnly bool) ([]dto.ChallengeResponse, error)
	Get(ctx context.Context, challengeID string) (dto.ChallengeResponse, error)
	Create(ctx context.Context, createdBy uint, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error)
	Update(ctx context.Context, challengeID string, payload dto.ChallengeUpdateRequest) (dto.ChallengeResponse, error)
	Delete(ctx context.Context, challengeID string) error
}

type catalogService struct {
	challenges repository.ChallengeRepository
	problems   repository.CodingProblemRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(challengeRepo repository.ChallengeRepository, problemRepo repository.CodingProblemRepository, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		challenges: challengeRepo,
		problems:   problemRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "catalog_service").Logger(),
		now:        time.Now,
	}
}

func (s *catalogService) List(ctx context.Context, assignmentNumber *int, challengeType *string, activeOnly bool) ([]dto.ChallengeResponse, error) {
	filter := repository.ChallengeFilter{
		AssignmentNumber: assignmentNumber,
		ActiveOnly:       activeOnly,
	}
	if challengeType != nil && *challengeType != "" {
		parsed := models.ChallengeType(*challengeType)
		if !parsed.IsValid() {
			return nil, ErrInvalidChallengeType
		}
		filter.Type = &parsed
	}

	challenges, err := s.challenges.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewChallengeResponseSlice(challenges), nil
}

func (s *catalogService) Get(ctx context.Context, challengeID string) (dto.ChallengeResponse, error) {
	challenge, err := s.challenges.GetByChallengeID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	return dto.NewChallengeResponse(challenge), nil
}

func (s *catalogService) Create(ctx context.Context, createdBy uint, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challengeType := models.ChallengeType(payload.Type)
	if !challengeType.IsValid() {
		return dto.ChallengeResponse{}, ErrInvalidChallengeType
	}

	if challengeType == models.ChallengeTypeCoding {
		if payload.ProblemID == nil {
			return dto.ChallengeResponse{}, ErrProblemNotFound
		}
		if _, err := s.problems.GetByID(ctx, *payload.ProblemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ChallengeResponse{}, ErrProblemNotFound
			}
			return dto.ChallengeResponse{}, err
		}
	}

	// The ordinal is the highest existing suffix plus one, not the row
	// count: deleting a middle challenge must not make the next create
	// collide with a surviving identifier.
	existingIDs, err := s.challenges.ListIDsByAssignmentAndType(ctx, payload.AssignmentNumber, challengeType)
	if err != nil {
		return dto.ChallengeResponse{}, err
	}
	var ordinal int64
	for _, id := range existingIDs {
		if n := challengeOrdinal(id); n > ordinal {
			ordinal = n
		}
	}

	challenge := models.Challenge{
		ChallengeID:      models.BuildChallengeID(challengeType, payload.AssignmentNumber, ordinal+1),
		Type:             challengeType,
		AssignmentNumber: payload.AssignmentNumber,
		Title:            payload.Title,
		Description:      payload.Description,
		Active:           true,
		ProblemID:        payload.ProblemID,
		CreatedBy:        createdBy,
	}
	if payload.MaxScore != nil {
		challenge.MaxScore = *payload.MaxScore
	}
	if payload.TimeLimitMinutes != nil {
		challenge.TimeLimitMinutes = payload.TimeLimitMinutes
	}
	if payload.QuestionCount != nil {
		challenge.QuestionCount = *payload.QuestionCount
	}

	if err := s.challenges.Create(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	s.logger.Info().Str("challenge_id", challenge.ChallengeID).Int("assignment", challenge.AssignmentNumber).Msg("challenge published")

	return dto.NewChallengeResponse(challenge), nil
}

// challengeOrdinal extracts the trailing one-based ordinal from a slug
// like "mcq-quiz-3-2". Unparsable identifiers count as zero.
func challengeOrdinal(challengeID string) int64 {
	idx := strings.LastIndex(challengeID, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.ParseInt(challengeID[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *catalogService) Update(ctx context.Context, challengeID string, payload dto.ChallengeUpdateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge, err := s.challenges.GetByChallengeID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	if payload.Title != nil {
		challenge.Title = *payload.Title
	}
	if payload.Description != nil {
		challenge.Description = *payload.Description
	}
	if payload.MaxScore != nil {
		challenge.MaxScore = *payload.MaxScore
	}
	if payload.TimeLimitMinutes != nil {
		challenge.TimeLimitMinutes = payload.TimeLimitMinutes
	}
	if payload.QuestionCount != nil {
		challenge.QuestionCount = *payload.QuestionCount
	}
	if payload.Active != nil {
		challenge.Active = *payload.Active
	}

	if err := s.challenges.Update(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	return dto.NewChallengeResponse(challenge), nil
}

func (s *catalogService) Delete(ctx context.Context, challengeID string) error {
	if err := s.challenges.Delete(ctx, challengeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return err
	}

	s.logger.Info().Str("challenge_id", challengeID).Msg("challenge removed")

	return nil
}
