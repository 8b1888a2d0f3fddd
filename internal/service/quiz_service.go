package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/observability"
	"github.com/praxislab/praxis-api/internal/realtime"
	"github.com/praxislab/praxis-api/internal/repository"
)

var (
	// ErrAlreadySubmitted indicates the student already has a graded
	// submission for this challenge.
	ErrAlreadySubmitted = errors.New("challenge already submitted")
	// ErrChallengeNotSelected indicates the challenge is not part of the
	// student's selection for the assignment.
	ErrChallengeNotSelected = errors.New("challenge not selected")
	// ErrNoQuestionsAvailable indicates the assignment has no question pool.
	ErrNoQuestionsAvailable = errors.New("no questions available for assignment")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
)

// roundToTenth rounds a score to one decimal place.
func roundToTenth(value float64) float64 {
	return math.Round(value*10) / 10
}

// QuizService runs the MCQ challenge flow: start hands out a sampled
// question sheet with answers stripped, submit grades positionally against
// the assignment's question pool.
type QuizService interface {
	Start(ctx context.Context, studentID uint, challengeID string) (dto.QuizStartResponse, error)
	Submit(ctx context.Context, studentID uint, challengeID string, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error)
	Result(ctx context.Context, studentID uint, challengeID string) (dto.QuizResultResponse, error)
}

type quizService struct {
	challenges  repository.ChallengeRepository
	selections  repository.SelectionRepository
	questions   repository.QuestionRepository
	submissions repository.QuizSubmissionRepository
	broadcaster realtime.Broadcaster
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewQuizService constructs a QuizService instance.
func NewQuizService(
	challengeRepo repository.ChallengeRepository,
	selectionRepo repository.SelectionRepository,
	questionRepo repository.QuestionRepository,
	submissionRepo repository.QuizSubmissionRepository,
	broadcaster realtime.Broadcaster,
	validate *validator.Validate,
	logger zerolog.Logger,
) QuizService {
	return &quizService{
		challenges:  challengeRepo,
		selections:  selectionRepo,
		questions:   questionRepo,
		submissions: submissionRepo,
		broadcaster: broadcaster,
		validator:   validate,
		logger:      logger.With().Str("component", "quiz_service").Logger(),
		now:         time.Now,
	}
}

func (s *quizService) Start(ctx context.Context, studentID uint, challengeID string) (dto.QuizStartResponse, error) {
	challenge, err := s.loadChallenge(ctx, studentID, challengeID)
	if err != nil {
		return dto.QuizStartResponse{}, err
	}

	if _, err := s.submissions.GetByStudentAndChallenge(ctx, studentID, challengeID); err == nil {
		return dto.QuizStartResponse{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.QuizStartResponse{}, err
	}

	sampled, err := s.questions.Sample(ctx, challenge.AssignmentNumber, challenge.QuestionCount)
	if err != nil {
		return dto.QuizStartResponse{}, err
	}
	if len(sampled) == 0 {
		return dto.QuizStartResponse{}, ErrNoQuestionsAvailable
	}

	return dto.QuizStartResponse{
		ChallengeID:      challenge.ChallengeID,
		Title:            challenge.Title,
		TimeLimitMinutes: challenge.TimeLimitMinutes,
		Questions:        dto.NewQuizQuestionResponseSlice(sampled),
		StartedAt:        s.now(),
	}, nil
}

func (s *quizService) Submit(ctx context.Context, studentID uint, challengeID string, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResultResponse{}, err
	}

	challenge, err := s.loadChallenge(ctx, studentID, challengeID)
	if err != nil {
		return dto.QuizResultResponse{}, err
	}

	if _, err := s.submissions.GetByStudentAndChallenge(ctx, studentID, challengeID); err == nil {
		return dto.QuizResultResponse{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.QuizResultResponse{}, err
	}

	questions, err := s.questions.FirstN(ctx, challenge.AssignmentNumber, challenge.QuestionCount)
	if err != nil {
		return dto.QuizResultResponse{}, err
	}
	if len(questions) == 0 {
		return dto.QuizResultResponse{}, ErrNoQuestionsAvailable
	}

	graded := len(payload.Answers)
	if len(questions) < graded {
		graded = len(questions)
	}

	correct := 0
	questionIDs := make([]uint, 0, len(questions))
	for i, question := range questions {
		questionIDs = append(questionIDs, question.ID)
		if i < graded && payload.Answers[i] == question.CorrectAnswer {
			correct++
		}
	}

	score := roundToTenth(float64(correct) / float64(graded) * challenge.MaxScore)

	startedAt := s.now()
	if payload.StartedAt != nil {
		startedAt = *payload.StartedAt
	}

	submission := models.QuizSubmission{
		StudentID:        studentID,
		ChallengeID:      challengeID,
		AssignmentNumber: challenge.AssignmentNumber,
		Answers:          payload.Answers,
		QuestionIDs:      questionIDs,
		Score:            score,
		MaxScore:         challenge.MaxScore,
		CorrectAnswers:   correct,
		TotalQuestions:   len(questions),
		TimeSpentMinutes: payload.TimeSpentMinutes,
		StartedAt:        startedAt,
		SubmittedAt:      s.now(),
		Feedback:         fmt.Sprintf("You answered %d out of %d questions correctly.", correct, len(questions)),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.QuizResultResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Str("challenge_id", challengeID).
		Float64("score", score).
		Msg("quiz submission graded")
	observability.SubmissionsGraded().WithLabelValues(string(models.ChallengeTypeMCQQuiz)).Inc()

	result := dto.NewQuizResultResponse(submission)
	s.broadcaster.Emit(ctx, realtime.ChallengeChannel(challengeID), realtime.EventSubmissionUpdate, map[string]interface{}{
		"student_id":   studentID,
		"challenge_id": challengeID,
		"score":        score,
		"max_score":    challenge.MaxScore,
	})
	s.broadcaster.Emit(ctx, realtime.AdminChannel, realtime.EventAnalyticsUpdate, map[string]interface{}{
		"assignment_number": challenge.AssignmentNumber,
		"challenge_id":      challengeID,
		"type":              string(models.ChallengeTypeMCQQuiz),
	})

	return result, nil
}

func (s *quizService) Result(ctx context.Context, studentID uint, challengeID string) (dto.QuizResultResponse, error) {
	submission, err := s.submissions.GetByStudentAndChallenge(ctx, studentID, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResultResponse{}, ErrSubmissionNotFound
		}
		return dto.QuizResultResponse{}, err
	}

	return dto.NewQuizResultResponse(submission), nil
}

// loadChallenge fetches an active MCQ challenge and verifies the student
// selected it.
func (s *quizService) loadChallenge(ctx context.Context, studentID uint, challengeID string) (models.Challenge, error) {
	challenge, err := s.challenges.GetByChallengeIDAndType(ctx, challengeID, models.ChallengeTypeMCQQuiz)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Challenge{}, ErrChallengeNotFound
		}
		return models.Challenge{}, err
	}
	if !challenge.Active {
		return models.Challenge{}, ErrChallengeNotFound
	}

	selection, err := s.selections.Get(ctx, studentID, challenge.AssignmentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Challenge{}, ErrChallengeNotSelected
		}
		return models.Challenge{}, err
	}
	if !selection.Contains(challengeID) {
		return models.Challenge{}, ErrChallengeNotSelected
	}

	return challenge, nil
}
