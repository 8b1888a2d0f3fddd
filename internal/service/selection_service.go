package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/repository"
)

var (
	// ErrSelectionNotFound indicates the student has not selected challenges yet.
	ErrSelectionNotFound = errors.New("selection not found")
	// ErrUnknownChallengeSelected indicates the request named an inactive or
	// foreign challenge.
	ErrUnknownChallengeSelected = errors.New("selection contains unknown or inactive challenges")
)

// SelectionService maintains the per-student challenge selection ledger.
type SelectionService interface {
	Available(ctx context.Context, studentID uint, assignmentNumber int) (dto.AvailableChallengesResponse, error)
	Select(ctx context.Context, studentID uint, payload dto.SelectionRequest) (dto.SelectionResponse, error)
	Get(ctx context.Context, studentID uint, assignmentNumber int) (dto.SelectionResponse, error)
}

type selectionService struct {
	selections repository.SelectionRepository
	challenges repository.ChallengeRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSelectionService constructs a SelectionService instance.
func NewSelectionService(selectionRepo repository.SelectionRepository, challengeRepo repository.ChallengeRepository, validate *validator.Validate, logger zerolog.Logger) SelectionService {
	return &selectionService{
		selections: selectionRepo,
		challenges: challengeRepo,
		validator:  validate,
		logger:     logger.With().Str("component", "selection_service").Logger(),
		now:        time.Now,
	}
}

// Available returns the active catalog for the assignment alongside the
// student's current selection, so clients render both in one round trip.
func (s *selectionService) Available(ctx context.Context, studentID uint, assignmentNumber int) (dto.AvailableChallengesResponse, error) {
	challenges, err := s.challenges.List(ctx, repository.ChallengeFilter{
		AssignmentNumber: &assignmentNumber,
		ActiveOnly:       true,
	})
	if err != nil {
		return dto.AvailableChallengesResponse{}, err
	}

	selected := []string{}
	selection, err := s.selections.Get(ctx, studentID, assignmentNumber)
	if err == nil {
		selected = selection.ChallengeIDs
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AvailableChallengesResponse{}, err
	}

	return dto.AvailableChallengesResponse{
		AssignmentNumber: assignmentNumber,
		Challenges:       dto.NewChallengeResponseSlice(challenges),
		Selected:         selected,
	}, nil
}

// Select replaces the student's selection for the assignment wholesale.
// Every requested ID must resolve to an active challenge of that assignment.
func (s *selectionService) Select(ctx context.Context, studentID uint, payload dto.SelectionRequest) (dto.SelectionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SelectionResponse{}, err
	}

	unique := make([]string, 0, len(payload.ChallengeIDs))
	seen := make(map[string]struct{}, len(payload.ChallengeIDs))
	for _, id := range payload.ChallengeIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	active, err := s.challenges.FindActiveByIDs(ctx, payload.AssignmentNumber, unique)
	if err != nil {
		return dto.SelectionResponse{}, err
	}
	if len(active) != len(unique) {
		s.logger.Warn().
			Uint("student_id", studentID).
			Int("assignment", payload.AssignmentNumber).
			Int("invalid", len(unique)-len(active)).
			Msg("selection rejected")
		return dto.SelectionResponse{}, fmt.Errorf("%w: %d invalid", ErrUnknownChallengeSelected, len(unique)-len(active))
	}

	selection := models.ChallengeSelection{
		StudentID:        studentID,
		AssignmentNumber: payload.AssignmentNumber,
		ChallengeIDs:     unique,
		SelectedAt:       s.now(),
	}

	if err := s.selections.Upsert(ctx, &selection); err != nil {
		return dto.SelectionResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Int("assignment", payload.AssignmentNumber).
		Int("count", len(unique)).
		Msg("challenge selection replaced")

	return dto.NewSelectionResponse(selection), nil
}

func (s *selectionService) Get(ctx context.Context, studentID uint, assignmentNumber int) (dto.SelectionResponse, error) {
	selection, err := s.selections.Get(ctx, studentID, assignmentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SelectionResponse{}, ErrSelectionNotFound
		}
		return dto.SelectionResponse{}, err
	}

	return dto.NewSelectionResponse(selection), nil
}
