package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/observability"
	"github.com/praxislab/praxis-api/internal/realtime"
	"github.com/praxislab/praxis-api/internal/repository"
)

// ErrArchiveSubmissionNotFound indicates the archive submission is missing.
var ErrArchiveSubmissionNotFound = errors.New("archive submission not found")

// ArchiveService runs the legacy assignment flow: students upload a project
// archive per assignment, tutors grade it manually or the auto-grader
// scores it against the fixed rubric.
type ArchiveService interface {
	Submit(ctx context.Context, studentID uint, assignmentNumber int, file *multipart.FileHeader) (dto.ArchiveSubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentNumber int) ([]dto.ArchiveSubmissionResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.ArchiveSubmissionResponse, error)
	Grade(ctx context.Context, graderID uint, submissionID uint, payload dto.ArchiveGradeRequest) (dto.ArchiveSubmissionResponse, error)
	AutoGrade(ctx context.Context, submissionID uint) (dto.ArchiveSubmissionResponse, error)
}

type archiveService struct {
	submissions repository.ArchiveSubmissionRepository
	students    repository.StudentRepository
	grader      ArchiveGrader
	broadcaster realtime.Broadcaster
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	storageRoot string
	now         func() time.Time
}

// NewArchiveService constructs an ArchiveService. Archives are kept on
// local disk under storageRoot so the auto-grader can read them back.
func NewArchiveService(
	submissionRepo repository.ArchiveSubmissionRepository,
	studentRepo repository.StudentRepository,
	grader ArchiveGrader,
	broadcaster realtime.Broadcaster,
	validate *validator.Validate,
	logger zerolog.Logger,
	storageRoot string,
) ArchiveService {
	if storageRoot == "" {
		storageRoot = filepath.Join(os.TempDir(), "praxis-archives")
	}

	return &archiveService{
		submissions: submissionRepo,
		students:    studentRepo,
		grader:      grader,
		broadcaster: broadcaster,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "archive_service").Logger(),
		storageRoot: storageRoot,
		now:         time.Now,
	}
}

func (s *archiveService) Submit(ctx context.Context, studentID uint, assignmentNumber int, file *multipart.FileHeader) (dto.ArchiveSubmissionResponse, error) {
	if file == nil {
		return dto.ArchiveSubmissionResponse{}, ErrFileRequired
	}
	if assignmentNumber < 1 {
		return dto.ArchiveSubmissionResponse{}, fmt.Errorf("invalid assignment number")
	}

	storedPath, err := s.persistFile(studentID, file)
	if err != nil {
		s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to store archive")
		return dto.ArchiveSubmissionResponse{}, ErrStorageFailure
	}

	submission := models.ArchiveSubmission{
		StudentID:        studentID,
		AssignmentNumber: assignmentNumber,
		FileName:         file.Filename,
		FileURL:          storedPath,
		SubmittedAt:      s.now(),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.ArchiveSubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Int("assignment", assignmentNumber).
		Str("file", file.Filename).
		Msg("archive submitted")

	s.broadcaster.Emit(ctx, realtime.AssignmentChannel(assignmentNumber), realtime.EventSubmissionUpdate, map[string]interface{}{
		"submission_id":     submission.ID,
		"student_id":        studentID,
		"assignment_number": assignmentNumber,
		"file_name":         file.Filename,
	})

	return dto.NewArchiveSubmissionResponse(submission), nil
}

func (s *archiveService) ListByAssignment(ctx context.Context, assignmentNumber int) ([]dto.ArchiveSubmissionResponse, error) {
	submissions, err := s.submissions.ListByAssignment(ctx, assignmentNumber)
	if err != nil {
		return nil, err
	}

	return dto.NewArchiveSubmissionResponseSlice(submissions), nil
}

func (s *archiveService) ListByStudent(ctx context.Context, studentID uint) ([]dto.ArchiveSubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewArchiveSubmissionResponseSlice(submissions), nil
}

func (s *archiveService) Grade(ctx context.Context, graderID uint, submissionID uint, payload dto.ArchiveGradeRequest) (dto.ArchiveSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ArchiveSubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ArchiveSubmissionResponse{}, ErrArchiveSubmissionNotFound
		}
		return dto.ArchiveSubmissionResponse{}, err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	score := payload.Score
	gradedAt := s.now()

	submission.Score = &score
	submission.Feedback = feedback
	submission.GradedAt = &gradedAt
	submission.GradedBy = &graderID

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.ArchiveSubmissionResponse{}, err
	}

	s.recomputeTotalPoints(ctx, submission.StudentID)
	observability.SubmissionsGraded().WithLabelValues("archive").Inc()

	s.broadcaster.Emit(ctx, realtime.AssignmentChannel(submission.AssignmentNumber), realtime.EventSubmissionGraded, map[string]interface{}{
		"submission_id": submission.ID,
		"student_id":    submission.StudentID,
		"score":         score,
	})
	s.broadcaster.Emit(ctx, realtime.UserChannel(submission.StudentID), realtime.EventGradeNotification, map[string]interface{}{
		"assignment_number": submission.AssignmentNumber,
		"score":             score,
		"has_feedback":      feedback != "",
	})

	return dto.NewArchiveSubmissionResponse(submission), nil
}

// AutoGrade scores the stored archive against the fixed rubric. Extraction
// or format failures still produce a graded zero-score submission; only a
// missing file aborts.
func (s *archiveService) AutoGrade(ctx context.Context, submissionID uint) (dto.ArchiveSubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ArchiveSubmissionResponse{}, ErrArchiveSubmissionNotFound
		}
		return dto.ArchiveSubmissionResponse{}, err
	}

	result, err := s.grader.Grade(submission.FileURL, submission.StudentID)
	if err != nil {
		return dto.ArchiveSubmissionResponse{}, err
	}

	gradedAt := s.now()
	submission.Score = &result.Score
	submission.Feedback = result.Feedback
	submission.Rubric = datatypes.NewJSONType(result.Rubric)
	submission.GradedAt = &gradedAt
	submission.GradedBy = nil

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.ArchiveSubmissionResponse{}, err
	}

	s.recomputeTotalPoints(ctx, submission.StudentID)
	observability.SubmissionsGraded().WithLabelValues("archive").Inc()

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("score", result.Score).
		Msg("archive auto-graded")

	s.broadcaster.Emit(ctx, realtime.UserChannel(submission.StudentID), realtime.EventGradeNotification, map[string]interface{}{
		"assignment_number": submission.AssignmentNumber,
		"score":             result.Score,
		"has_feedback":      result.Feedback != "",
	})

	return dto.NewArchiveSubmissionResponse(submission), nil
}

// recomputeTotalPoints keeps the student's aggregate equal to the sum of
// their graded archive scores. Failures here are logged, not surfaced: the
// grade itself is already durable.
func (s *archiveService) recomputeTotalPoints(ctx context.Context, studentID uint) {
	total, err := s.submissions.SumScoresByStudent(ctx, studentID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to sum archive scores")
		return
	}

	if err := s.students.UpdateTotalPoints(ctx, studentID, total); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to update total points")
	}
}

func (s *archiveService) persistFile(studentID uint, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.storageRoot, 0o755); err != nil {
		return "", err
	}

	reader, err := file.Open()
	if err != nil {
		return "", err
	}
	defer reader.Close()

	name := fmt.Sprintf("%d-%d-%s", studentID, s.now().Unix(), filepath.Base(file.Filename))
	target := filepath.Join(s.storageRoot, name)

	out, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(target)
		return "", err
	}

	return target, nil
}
