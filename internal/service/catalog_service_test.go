package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/internal/dto"
)

func newCatalogService(repo *stubChallengeRepo) CatalogService {
	return NewCatalogService(
		repo,
		&stubCodingProblemRepo{},
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func publishQuiz(t *testing.T, svc CatalogService) dto.ChallengeResponse {
	t.Helper()

	created, err := svc.Create(context.Background(), 1, dto.ChallengeCreateRequest{
		Type:             "mcq_quiz",
		AssignmentNumber: 3,
		Title:            "Fundamentals Quiz",
		Description:      "Ten questions on the basics.",
	})
	require.NoError(t, err)
	return created
}

func TestCatalogServiceCreateAssignsSequentialOrdinals(t *testing.T) {
	svc := newCatalogService(&stubChallengeRepo{})

	require.Equal(t, "mcq-quiz-3-1", publishQuiz(t, svc).ChallengeID)
	require.Equal(t, "mcq-quiz-3-2", publishQuiz(t, svc).ChallengeID)
	require.Equal(t, "mcq-quiz-3-3", publishQuiz(t, svc).ChallengeID)
}

func TestCatalogServiceCreateSkipsDeletedOrdinals(t *testing.T) {
	svc := newCatalogService(&stubChallengeRepo{})

	for i := 0; i < 3; i++ {
		publishQuiz(t, svc)
	}
	require.NoError(t, svc.Delete(context.Background(), "mcq-quiz-3-2"))

	// Deleting a middle challenge leaves "-3" alive; the next create must
	// continue past it instead of reusing an existing identifier.
	require.Equal(t, "mcq-quiz-3-4", publishQuiz(t, svc).ChallengeID)
}

func TestCatalogServiceCreateRejectsUnknownType(t *testing.T) {
	svc := newCatalogService(&stubChallengeRepo{})

	_, err := svc.Create(context.Background(), 1, dto.ChallengeCreateRequest{
		Type:             "essay",
		AssignmentNumber: 3,
		Title:            "Essay",
	})
	require.Error(t, err)
}
