package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/repository"
)

var (
	// ErrQuestionNotFound indicates the question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidCorrectAnswer indicates the answer index is out of range.
	ErrInvalidCorrectAnswer = errors.New("correct answer index out of range")
)

// PoolService lets admins author the per-assignment question and coding
// problem pools the engines draw from.
type PoolService interface {
	CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	ListQuestions(ctx context.Context, assignmentNumber int) ([]dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id uint) error
	CreateProblem(ctx context.Context, payload dto.CodeProblemCreateRequest) (dto.CodeProblemResponse, error)
	ListProblems(ctx context.Context, assignmentNumber int) ([]dto.CodeProblemResponse, error)
	DeleteProblem(ctx context.Context, id uint) error
}

type poolService struct {
	questions repository.QuestionRepository
	problems  repository.CodingProblemRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPoolService constructs a PoolService instance.
func NewPoolService(questionRepo repository.QuestionRepository, problemRepo repository.CodingProblemRepository, validate *validator.Validate, logger zerolog.Logger) PoolService {
	return &poolService{
		questions: questionRepo,
		problems:  problemRepo,
		validator: validate,
		logger:    logger.With().Str("component", "pool_service").Logger(),
	}
}

func (s *poolService) CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}
	if payload.CorrectAnswer >= len(payload.Options) {
		return dto.QuestionResponse{}, ErrInvalidCorrectAnswer
	}

	difficulty := payload.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	question := models.MCQQuestion{
		AssignmentNumber: payload.AssignmentNumber,
		Question:         payload.Question,
		Options:          payload.Options,
		CorrectAnswer:    payload.CorrectAnswer,
		Explanation:      payload.Explanation,
		Difficulty:       difficulty,
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *poolService) ListQuestions(ctx context.Context, assignmentNumber int) ([]dto.QuestionResponse, error) {
	questions, err := s.questions.ListByAssignment(ctx, assignmentNumber)
	if err != nil {
		return nil, err
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *poolService) DeleteQuestion(ctx context.Context, id uint) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	return nil
}

func (s *poolService) CreateProblem(ctx context.Context, payload dto.CodeProblemCreateRequest) (dto.CodeProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CodeProblemResponse{}, err
	}

	cases := make([]models.TestCase, 0, len(payload.TestCases))
	for _, tc := range payload.TestCases {
		cases = append(cases, models.TestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Hidden:         tc.Hidden,
		})
	}

	problem := models.CodingProblem{
		AssignmentNumber: payload.AssignmentNumber,
		Title:            payload.Title,
		Description:      payload.Description,
		StarterCode:      payload.StarterCode,
		Constraints:      payload.Constraints,
		TestCases:        cases,
	}
	if payload.TimeLimitMinutes != nil {
		problem.TimeLimitMinutes = *payload.TimeLimitMinutes
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return dto.CodeProblemResponse{}, err
	}

	return dto.NewCodeProblemResponse(problem), nil
}

func (s *poolService) ListProblems(ctx context.Context, assignmentNumber int) ([]dto.CodeProblemResponse, error) {
	problems, err := s.problems.ListByAssignment(ctx, assignmentNumber)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CodeProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, dto.NewCodeProblemResponse(problem))
	}

	return responses, nil
}

func (s *poolService) DeleteProblem(ctx context.Context, id uint) error {
	if err := s.problems.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProblemNotFound
		}
		return err
	}

	return nil
}
