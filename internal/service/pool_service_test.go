package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/internal/dto"
)

func newPoolService() PoolService {
	return NewPoolService(
		&stubQuestionRepo{},
		&stubCodingProblemRepo{},
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func TestPoolServiceCreateProblemKeepsConstraints(t *testing.T) {
	svc := newPoolService()

	problem, err := svc.CreateProblem(context.Background(), dto.CodeProblemCreateRequest{
		AssignmentNumber: 3,
		Title:            "Reverse a string",
		Description:      "Print the input reversed.",
		Constraints:      []string{"1 <= len(s) <= 100", "ascii input only"},
		TestCases: []dto.TestCaseInput{
			{Input: "abc", ExpectedOutput: "cba"},
			{Input: "racecar", ExpectedOutput: "racecar", Hidden: true},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"1 <= len(s) <= 100", "ascii input only"}, problem.Constraints)

	listed, err := svc.ListProblems(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, problem.Constraints, listed[0].Constraints)
}

func TestPoolServiceCreateQuestionRejectsOutOfRangeAnswer(t *testing.T) {
	svc := newPoolService()

	_, err := svc.CreateQuestion(context.Background(), dto.QuestionCreateRequest{
		AssignmentNumber: 3,
		Question:         "pick one",
		Options:          []string{"a", "b"},
		CorrectAnswer:    2,
	})
	require.True(t, errors.Is(err, ErrInvalidCorrectAnswer))
}
