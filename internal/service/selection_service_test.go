package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
)

func activeChallenge(id string, assignment int, t models.ChallengeType) models.Challenge {
	return models.Challenge{
		ChallengeID:      id,
		Type:             t,
		AssignmentNumber: assignment,
		Title:            id,
		Description:      "desc",
		MaxScore:         15,
		Active:           true,
	}
}

func TestSelectionServiceReplacesSelectionWholesale(t *testing.T) {
	challenges := &stubChallengeRepo{challenges: []models.Challenge{
		activeChallenge("mcq-quiz-3-1", 3, models.ChallengeTypeMCQQuiz),
		activeChallenge("coding-challenge-3-1", 3, models.ChallengeTypeCoding),
		activeChallenge("file-upload-3-1", 3, models.ChallengeTypeFileUpload),
	}}
	selections := &stubSelectionRepo{}
	svc := NewSelectionService(selections, challenges, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	first, err := svc.Select(context.Background(), 7, dto.SelectionRequest{
		AssignmentNumber: 3,
		ChallengeIDs:     []string{"mcq-quiz-3-1", "coding-challenge-3-1"},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"mcq-quiz-3-1", "coding-challenge-3-1"}, first.ChallengeIDs)

	second, err := svc.Select(context.Background(), 7, dto.SelectionRequest{
		AssignmentNumber: 3,
		ChallengeIDs:     []string{"file-upload-3-1"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"file-upload-3-1"}, second.ChallengeIDs)

	require.NotNil(t, selections.upserted)
	require.Equal(t, []string{"file-upload-3-1"}, []string(selections.upserted.ChallengeIDs))
}

func TestSelectionServiceDeduplicatesIDs(t *testing.T) {
	challenges := &stubChallengeRepo{challenges: []models.Challenge{
		activeChallenge("mcq-quiz-3-1", 3, models.ChallengeTypeMCQQuiz),
	}}
	selections := &stubSelectionRepo{}
	svc := NewSelectionService(selections, challenges, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	resp, err := svc.Select(context.Background(), 7, dto.SelectionRequest{
		AssignmentNumber: 3,
		ChallengeIDs:     []string{"mcq-quiz-3-1", "mcq-quiz-3-1"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"mcq-quiz-3-1"}, resp.ChallengeIDs)
}

func TestSelectionServiceRejectsUnknownChallenge(t *testing.T) {
	challenges := &stubChallengeRepo{challenges: []models.Challenge{
		activeChallenge("mcq-quiz-3-1", 3, models.ChallengeTypeMCQQuiz),
	}}
	svc := NewSelectionService(&stubSelectionRepo{}, challenges, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	_, err := svc.Select(context.Background(), 7, dto.SelectionRequest{
		AssignmentNumber: 3,
		ChallengeIDs:     []string{"mcq-quiz-3-1", "mcq-quiz-3-99"},
	})
	require.True(t, errors.Is(err, ErrUnknownChallengeSelected))
}

func TestSelectionServiceRejectsInactiveChallenge(t *testing.T) {
	inactive := activeChallenge("mcq-quiz-3-1", 3, models.ChallengeTypeMCQQuiz)
	inactive.Active = false
	challenges := &stubChallengeRepo{challenges: []models.Challenge{inactive}}
	svc := NewSelectionService(&stubSelectionRepo{}, challenges, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	_, err := svc.Select(context.Background(), 7, dto.SelectionRequest{
		AssignmentNumber: 3,
		ChallengeIDs:     []string{"mcq-quiz-3-1"},
	})
	require.True(t, errors.Is(err, ErrUnknownChallengeSelected))
}

func TestSelectionServiceGetNotFound(t *testing.T) {
	svc := NewSelectionService(&stubSelectionRepo{}, &stubChallengeRepo{}, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	_, err := svc.Get(context.Background(), 7, 3)
	require.True(t, errors.Is(err, ErrSelectionNotFound))
}

func TestSelectionServiceAvailableIncludesCurrentSelection(t *testing.T) {
	challenges := &stubChallengeRepo{challenges: []models.Challenge{
		activeChallenge("mcq-quiz-3-1", 3, models.ChallengeTypeMCQQuiz),
		activeChallenge("coding-challenge-3-1", 3, models.ChallengeTypeCoding),
	}}
	selections := &stubSelectionRepo{
		exists: true,
		selection: models.ChallengeSelection{
			StudentID:        7,
			AssignmentNumber: 3,
			ChallengeIDs:     []string{"mcq-quiz-3-1"},
		},
	}
	svc := NewSelectionService(selections, challenges, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	resp, err := svc.Available(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, resp.Challenges, 2)
	require.Equal(t, []string{"mcq-quiz-3-1"}, resp.Selected)
}
