package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/observability"
	"github.com/praxislab/praxis-api/internal/realtime"
	"github.com/praxislab/praxis-api/internal/repository"
	"github.com/praxislab/praxis-api/pkg/cloudinary"
)

var (
	// ErrFileRequired indicates the multipart payload carried no file.
	ErrFileRequired = errors.New("submission file is required")
	// ErrFileTooLarge indicates the file exceeded the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrFileTypeNotAllowed indicates the MIME type is not permitted.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	// ErrStorageFailure indicates the file store rejected the upload. The
	// ledger is never touched when this is returned.
	ErrStorageFailure = errors.New("file storage failed")
)

var allowedSubmissionTypes = []string{
	"application/zip",
	"application/x-rar-compressed",
	"application/x-rar",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"image/png",
	"image/jpeg",
}

// FileStore abstracts the durable store for submission files.
type FileStore interface {
	Store(ctx context.Context, name string, reader io.Reader) (cloudinary.StoredFile, error)
	Delete(ctx context.Context, publicID string) error
}

// FileChallengeService runs the manual-grading file upload flow.
type FileChallengeService interface {
	Submit(ctx context.Context, studentID uint, challengeID string, file *multipart.FileHeader, payload dto.FileSubmitRequest) (dto.FileSubmissionResponse, error)
	Get(ctx context.Context, studentID uint, challengeID string) (dto.FileSubmissionResponse, error)
	ListPending(ctx context.Context, assignmentNumber *int) ([]dto.FileSubmissionResponse, error)
	Grade(ctx context.Context, graderID uint, submissionID uint, payload dto.FileGradeRequest) (dto.FileSubmissionResponse, error)
	TrackAccess(ctx context.Context, accessorID uint, submissionID uint, payload dto.FileAccessRequest) (dto.FileAccessResponse, error)
}

type fileChallengeService struct {
	challenges  repository.ChallengeRepository
	selections  repository.SelectionRepository
	submissions repository.FileSubmissionRepository
	accesses    repository.FileAccessRepository
	store       FileStore
	broadcaster realtime.Broadcaster
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	maxSize     int64
	now         func() time.Time
}

// NewFileChallengeService constructs a FileChallengeService instance.
func NewFileChallengeService(
	challengeRepo repository.ChallengeRepository,
	selectionRepo repository.SelectionRepository,
	submissionRepo repository.FileSubmissionRepository,
	accessRepo repository.FileAccessRepository,
	store FileStore,
	broadcaster realtime.Broadcaster,
	validate *validator.Validate,
	logger zerolog.Logger,
	maxSizeMB int,
) FileChallengeService {
	if maxSizeMB <= 0 {
		maxSizeMB = 50
	}

	return &fileChallengeService{
		challenges:  challengeRepo,
		selections:  selectionRepo,
		submissions: submissionRepo,
		accesses:    accessRepo,
		store:       store,
		broadcaster: broadcaster,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "file_challenge_service").Logger(),
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		now:         time.Now,
	}
}

// Submit stores the uploaded file and records the submission. A repeat
// submission replaces the stored file and resets any existing grade, so the
// latest upload is always the one graded.
func (s *fileChallengeService) Submit(ctx context.Context, studentID uint, challengeID string, file *multipart.FileHeader, payload dto.FileSubmitRequest) (dto.FileSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FileSubmissionResponse{}, err
	}
	if file == nil {
		return dto.FileSubmissionResponse{}, ErrFileRequired
	}
	if file.Size > s.maxSize {
		return dto.FileSubmissionResponse{}, ErrFileTooLarge
	}

	challenge, err := s.loadChallenge(ctx, studentID, challengeID)
	if err != nil {
		return dto.FileSubmissionResponse{}, err
	}

	detected, err := s.validateType(file)
	if err != nil {
		return dto.FileSubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.FileSubmissionResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	// Storage first: if the store rejects the file the ledger stays
	// untouched and any prior submission remains valid.
	stored, err := s.store.Store(ctx, file.Filename, reader)
	if err != nil {
		s.logger.Error().Err(err).Str("challenge_id", challengeID).Msg("file store rejected upload")
		return dto.FileSubmissionResponse{}, ErrStorageFailure
	}

	comments := strings.TrimSpace(s.sanitizer.Sanitize(payload.Comments))

	existing, err := s.submissions.GetByStudentAndChallenge(ctx, studentID, challengeID)
	switch {
	case err == nil:
		previousPublicID := existing.FilePublicID
		existing.FileName = file.Filename
		existing.FileURL = stored.URL
		existing.FilePublicID = stored.PublicID
		existing.FileType = detected
		existing.FileSize = file.Size
		existing.Comments = comments
		existing.Score = nil
		existing.Feedback = ""
		existing.GradedAt = nil
		existing.GradedBy = nil
		existing.SubmittedAt = s.now()

		if err := s.submissions.Update(ctx, &existing); err != nil {
			return dto.FileSubmissionResponse{}, err
		}
		if previousPublicID != "" {
			if err := s.store.Delete(ctx, previousPublicID); err != nil {
				s.logger.Warn().Err(err).Str("public_id", previousPublicID).Msg("failed to delete replaced submission file")
			}
		}

		s.emitSubmitted(ctx, studentID, challenge, existing)

		return dto.NewFileSubmissionResponse(existing), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		submission := models.FileSubmission{
			StudentID:        studentID,
			ChallengeID:      challengeID,
			AssignmentNumber: challenge.AssignmentNumber,
			FileName:         file.Filename,
			FileURL:          stored.URL,
			FilePublicID:     stored.PublicID,
			FileType:         detected,
			FileSize:         file.Size,
			Comments:         comments,
			SubmittedAt:      s.now(),
		}

		if err := s.submissions.Create(ctx, &submission); err != nil {
			return dto.FileSubmissionResponse{}, err
		}

		s.emitSubmitted(ctx, studentID, challenge, submission)

		return dto.NewFileSubmissionResponse(submission), nil
	default:
		return dto.FileSubmissionResponse{}, err
	}
}

func (s *fileChallengeService) Get(ctx context.Context, studentID uint, challengeID string) (dto.FileSubmissionResponse, error) {
	submission, err := s.submissions.GetByStudentAndChallenge(ctx, studentID, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FileSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.FileSubmissionResponse{}, err
	}

	return dto.NewFileSubmissionResponse(submission), nil
}

func (s *fileChallengeService) ListPending(ctx context.Context, assignmentNumber *int) ([]dto.FileSubmissionResponse, error) {
	graded := false
	submissions, err := s.submissions.List(ctx, repository.FileSubmissionFilter{
		AssignmentNumber: assignmentNumber,
		Graded:           &graded,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewFileSubmissionResponseSlice(submissions), nil
}

func (s *fileChallengeService) Grade(ctx context.Context, graderID uint, submissionID uint, payload dto.FileGradeRequest) (dto.FileSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FileSubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FileSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.FileSubmissionResponse{}, err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	score := payload.Score
	gradedAt := s.now()

	submission.Score = &score
	submission.Feedback = feedback
	submission.GradedAt = &gradedAt
	submission.GradedBy = &graderID

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.FileSubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submissionID).
		Uint("grader_id", graderID).
		Float64("score", score).
		Msg("file submission graded")
	observability.SubmissionsGraded().WithLabelValues(string(models.ChallengeTypeFileUpload)).Inc()

	s.broadcaster.Emit(ctx, realtime.ChallengeChannel(submission.ChallengeID), realtime.EventSubmissionGraded, map[string]interface{}{
		"submission_id": submission.ID,
		"student_id":    submission.StudentID,
		"challenge_id":  submission.ChallengeID,
		"score":         score,
	})
	s.broadcaster.Emit(ctx, realtime.UserChannel(submission.StudentID), realtime.EventGradeNotification, map[string]interface{}{
		"challenge_id": submission.ChallengeID,
		"score":        score,
		"has_feedback": feedback != "",
	})

	return dto.NewFileSubmissionResponse(submission), nil
}

// TrackAccess records a view or download of a submission file. Repeat
// accesses of the same kind refresh the timestamp rather than piling up.
func (s *fileChallengeService) TrackAccess(ctx context.Context, accessorID uint, submissionID uint, payload dto.FileAccessRequest) (dto.FileAccessResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FileAccessResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FileAccessResponse{}, ErrSubmissionNotFound
		}
		return dto.FileAccessResponse{}, err
	}

	access := models.FileAccess{
		StudentID:    accessorID,
		SubmissionID: submissionID,
		AccessType:   models.FileAccessType(payload.AccessType),
		AccessedAt:   s.now(),
	}

	if err := s.accesses.Record(ctx, &access); err != nil {
		return dto.FileAccessResponse{}, err
	}

	s.broadcaster.Emit(ctx, realtime.AdminFileActivity, realtime.EventFileActivity, map[string]interface{}{
		"submission_id": submissionID,
		"student_id":    submission.StudentID,
		"accessor_id":   accessorID,
		"access_type":   payload.AccessType,
		"file_name":     submission.FileName,
	})

	return dto.NewFileAccessResponse(access), nil
}

func (s *fileChallengeService) emitSubmitted(ctx context.Context, studentID uint, challenge models.Challenge, submission models.FileSubmission) {
	s.broadcaster.Emit(ctx, realtime.ChallengeChannel(challenge.ChallengeID), realtime.EventSubmissionUpdate, map[string]interface{}{
		"student_id":   studentID,
		"challenge_id": challenge.ChallengeID,
		"file_name":    submission.FileName,
	})
	s.broadcaster.Emit(ctx, realtime.AdminFileActivity, realtime.EventFileActivity, map[string]interface{}{
		"submission_id": submission.ID,
		"student_id":    studentID,
		"access_type":   "upload",
		"file_name":     submission.FileName,
	})
}

func (s *fileChallengeService) validateType(file *multipart.FileHeader) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	kind, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	for _, allowed := range allowedSubmissionTypes {
		if kind.Is(allowed) {
			return kind.String(), nil
		}
	}

	return "", ErrFileTypeNotAllowed
}

func (s *fileChallengeService) loadChallenge(ctx context.Context, studentID uint, challengeID string) (models.Challenge, error) {
	challenge, err := s.challenges.GetByChallengeIDAndType(ctx, challengeID, models.ChallengeTypeFileUpload)
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
