package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/repository"
)

// ProgressService aggregates submission state across the three challenge
// engines into per-student and per-assignment views.
type ProgressService interface {
	StudentProgress(ctx context.Context, studentID uint, assignmentNumber int) (dto.StudentProgressResponse, error)
	AdminProgress(ctx context.Context, assignmentNumber int) (dto.AdminProgressResponse, error)
	Statistics(ctx context.Context, assignmentNumber int) (dto.AssignmentStatisticsResponse, error)
}

type progressService struct {
	challenges      repository.ChallengeRepository
	selections      repository.SelectionRepository
	students        repository.StudentRepository
	quizSubmissions repository.QuizSubmissionRepository
	codeSubmissions repository.CodeSubmissionRepository
	fileSubmissions repository.FileSubmissionRepository
	cache           *redis.Client
	cacheTTL        time.Duration
	logger          zerolog.Logger
	now             func() time.Time
}

// NewProgressService constructs a ProgressService. The cache client may be
// nil; statistics are then computed on every call.
func NewProgressService(
	challengeRepo repository.ChallengeRepository,
	selectionRepo repository.SelectionRepository,
	studentRepo repository.StudentRepository,
	quizRepo repository.QuizSubmissionRepository,
	codeRepo repository.CodeSubmissionRepository,
	fileRepo repository.FileSubmissionRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ProgressService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &progressService{
		challenges:      challengeRepo,
		selections:      selectionRepo,
		students:        studentRepo,
		quizSubmissions: quizRepo,
		codeSubmissions: codeRepo,
		fileSubmissions: fileRepo,
		cache:           cache,
		cacheTTL:        cacheTTL,
		logger:          logger.With().Str("component", "progress_service").Logger(),
		now:             time.Now,
	}
}

// StudentProgress reports completion over the student's selection. A
// student with no selection gets an empty zero-percent report, not an
// error.
func (s *progressService) StudentProgress(ctx context.Context, studentID uint, assignmentNumber int) (dto.StudentProgressResponse, error) {
	response := dto.StudentProgressResponse{
		StudentID:        studentID,
		AssignmentNumber: assignmentNumber,
		Challenges:       []dto.ChallengeProgressEntry{},
	}

	selection, err := s.selections.Get(ctx, studentID, assignmentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil
		}
		return dto.StudentProgressResponse{}, err
	}
	if len(selection.ChallengeIDs) == 0 {
		return response, nil
	}

	challenges, err := s.challenges.FindActiveByIDs(ctx, assignmentNumber, selection.ChallengeIDs)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	quizzes, err := s.quizSubmissions.ListByStudentAndChallenges(ctx, studentID, selection.ChallengeIDs)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}
	codes, err := s.codeSubmissions.ListByStudentAndChallenges(ctx, studentID, selection.ChallengeIDs)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}
	files, err := s.fileSubmissions.ListByStudentAndChallenges(ctx, studentID, selection.ChallengeIDs)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	type outcome struct {
		score       *float64
		submittedAt time.Time
		graded      bool
	}
	outcomes := make(map[string]outcome, len(selection.ChallengeIDs))
	for _, sub := range quizzes {
		score := sub.Score
		outcomes[sub.ChallengeID] = outcome{score: &score, submittedAt: sub.SubmittedAt, graded: true}
	}
	for _, sub := range codes {
		score := sub.Score
		outcomes[sub.ChallengeID] = outcome{score: &score, submittedAt: sub.SubmittedAt, graded: true}
	}
	for _, sub := range files {
		outcomes[sub.ChallengeID] = outcome{score: sub.Score, submittedAt: sub.SubmittedAt, graded: sub.IsGraded()}
	}

	for _, challenge := range challenges {
		entry := dto.ChallengeProgressEntry{
			ChallengeID: challenge.ChallengeID,
			Type:        string(challenge.Type),
			Title:       challenge.Title,
			MaxScore:    challenge.MaxScore,
		}
		response.MaxPossibleScore += challenge.MaxScore

		if done, ok := outcomes[challenge.ChallengeID]; ok {
			entry.Started = true
			entry.Completed = done.graded
			entry.Score = done.score
			submittedAt := done.submittedAt
			entry.SubmittedAt = &submittedAt
			if done.graded {
				response.Completed++
			}
			if done.score != nil {
				response.TotalScore += *done.score
			}
		}

		response.Challenges = append(response.Challenges, entry)
	}

	response.Selected = len(challenges)
	if response.Selected > 0 {
		response.CompletionPercent = roundToTenth(float64(response.Completed) / float64(response.Selected) * 100)
	}
	response.TotalScore = roundToTenth(response.TotalScore)

	return response, nil
}

func (s *progressService) AdminProgress(ctx context.Context, assignmentNumber int) (dto.AdminProgressResponse, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return dto.AdminProgressResponse{}, err
	}

	response := dto.AdminProgressResponse{
		AssignmentNumber: assignmentNumber,
		Students:         make([]dto.AdminProgressRow, 0, len(students)),
	}

	for _, student := range students {
		progress, err := s.StudentProgress(ctx, student.ID, assignmentNumber)
		if err != nil {
			return dto.AdminProgressResponse{}, err
		}

		response.Students = append(response.Students, dto.AdminProgressRow{
			StudentID:         student.ID,
			FullName:          student.FullName,
			SerialNumber:      student.SerialNumber,
			Selected:          progress.Selected,
			Completed:         progress.Completed,
			CompletionPercent: progress.CompletionPercent,
			TotalScore:        progress.TotalScore,
		})
	}

	return response, nil
}

// Statistics summarizes submission volume for an assignment. Results are
// cached briefly; the admin dashboard polls this endpoint.
func (s *progressService) Statistics(ctx context.Context, assignmentNumber int) (dto.AssignmentStatisticsResponse, error) {
	cacheKey := fmt.Sprintf("stats:assignment:%d", assignmentNumber)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AssignmentStatisticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Int("assignment", assignmentNumber).Msg("statistics cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read statistics cache")
		}
	}

	quizzes, err := s.quizSubmissions.ListByAssignment(ctx, assignmentNumber)
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}
	codes, err := s.codeSubmissions.ListByAssignment(ctx, assignmentNumber)
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}
	files, err := s.fileSubmissions.List(ctx, repository.FileSubmissionFilter{AssignmentNumber: &assignmentNumber})
	if err != nil {
		return dto.AssignmentStatisticsResponse{}, err
	}

	response := dto.AssignmentStatisticsResponse{
		AssignmentNumber: assignmentNumber,
		ByType: map[string]int{
			string(models.ChallengeTypeMCQQuiz):    len(quizzes),
			string(models.ChallengeTypeCoding):     len(codes),
			string(models.ChallengeTypeFileUpload): len(files),
		},
		GeneratedAt: s.now(),
	}

	var scoreSum float64
	var scored int64
	for _, sub := range quizzes {
		response.TotalSubmissions++
		response.GradedSubmissions++
		scoreSum += sub.Score
		scored++
	}
	for _, sub := range codes {
		response.TotalSubmissions++
		response.GradedSubmissions++
		scoreSum += sub.Score
		scored++
	}
	for _, sub := range files {
		response.TotalSubmissions++
		if sub.IsGraded() {
			response.GradedSubmissions++
			scoreSum += *sub.Score
			scored++
		}
	}
	response.PendingGrading = response.TotalSubmissions - response.GradedSubmissions
	if scored > 0 {
		response.AverageScore = roundToTenth(scoreSum / float64(scored))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store statistics cache")
			}
		}
	}

	return response, nil
}
