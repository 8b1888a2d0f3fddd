package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/realtime"
	"github.com/praxislab/praxis-api/internal/repository"
)

var (
	// ErrGradingConfigNotFound indicates no config exists for the pair.
	ErrGradingConfigNotFound = errors.New("grading config not found")
	// ErrBulkJobNotFound indicates an unknown bulk grading job ID.
	ErrBulkJobNotFound = errors.New("bulk grading job not found")
	// ErrNothingToGrade indicates the assignment has no pending submissions.
	ErrNothingToGrade = errors.New("no pending submissions to grade")
)

// Bulk job lifecycle states.
const (
	bulkStatusRunning   = "running"
	bulkStatusCompleted = "completed"
)

// GradingAdminService manages auto-grading configuration and bulk grading
// jobs over pending archive submissions.
type GradingAdminService interface {
	GetConfig(ctx context.Context, assignmentNumber int, challengeType string) (dto.GradingConfigResponse, error)
	ListConfigs(ctx context.Context, assignmentNumber int) ([]dto.GradingConfigResponse, error)
	UpsertConfig(ctx context.Context, payload dto.GradingConfigRequest) (dto.GradingConfigResponse, error)
	BulkGrade(ctx context.Context, payload dto.BulkGradeRequest) (dto.BulkGradeResponse, error)
	JobStatus(ctx context.Context, jobID string) (dto.BulkGradeStatusResponse, error)
}

type bulkJob struct {
	assignmentNumber int
	status           string
	graded           int
	failed           int
	total            int
	startedAt        time.Time
	finishedAt       *time.Time
}

type gradingAdminService struct {
	configs     repository.GradingConfigRepository
	submissions repository.ArchiveSubmissionRepository
	archives    ArchiveService
	broadcaster realtime.Broadcaster
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time

	mu   sync.RWMutex
	jobs map[string]*bulkJob
}

// NewGradingAdminService constructs a GradingAdminService instance.
func NewGradingAdminService(
	configRepo repository.GradingConfigRepository,
	submissionRepo repository.ArchiveSubmissionRepository,
	archives ArchiveService,
	broadcaster realtime.Broadcaster,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingAdminService {
	return &gradingAdminService{
		configs:     configRepo,
		submissions: submissionRepo,
		archives:    archives,
		broadcaster: broadcaster,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_admin_service").Logger(),
		now:         time.Now,
		jobs:        make(map[string]*bulkJob),
	}
}

// GetConfig returns the stored config for the pair, or the defaults when
// none has been saved yet.
func (s *gradingAdminService) GetConfig(ctx context.Context, assignmentNumber int, challengeType string) (dto.GradingConfigResponse, error) {
	parsed := models.ChallengeType(challengeType)
	if !parsed.IsValid() {
		return dto.GradingConfigResponse{}, ErrInvalidChallengeType
	}

	config, err := s.configs.Get(ctx, assignmentNumber, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NewGradingConfigResponse(models.AutoGradingConfig{
				AssignmentNumber: assignmentNumber,
				ChallengeType:    parsed,
				Enabled:          true,
				Criteria:         datatypes.NewJSONType(models.DefaultGradingCriteria()),
			}), nil
		}
		return dto.GradingConfigResponse{}, err
	}

	return dto.NewGradingConfigResponse(config), nil
}

func (s *gradingAdminService) ListConfigs(ctx context.Context, assignmentNumber int) ([]dto.GradingConfigResponse, error) {
	configs, err := s.configs.ListByAssignment(ctx, assignmentNumber)
	if err != nil {
		return nil, err
	}

	return dto.NewGradingConfigResponseSlice(configs), nil
}

func (s *gradingAdminService) UpsertConfig(ctx context.Context, payload dto.GradingConfigRequest) (dto.GradingConfigResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradingConfigResponse{}, err
	}

	parsed := models.ChallengeType(payload.ChallengeType)
	if !parsed.IsValid() {
		return dto.GradingConfigResponse{}, ErrInvalidChallengeType
	}

	criteria := models.DefaultGradingCriteria()
	if payload.Criteria != nil {
		criteria = models.GradingCriteria{
			PassingScore:        payload.Criteria.PassingScore,
			TimeWeighting:       payload.Criteria.TimeWeighting,
			PenaltyForIncorrect: payload.Criteria.PenaltyForIncorrect,
		}
	}

	config := models.AutoGradingConfig{
		AssignmentNumber: payload.AssignmentNumber,
		ChallengeType:    parsed,
		Enabled:          payload.Enabled,
		Criteria:         datatypes.NewJSONType(criteria),
	}

	if err := s.configs.Upsert(ctx, &config); err != nil {
		return dto.GradingConfigResponse{}, err
	}

	s.logger.Info().
		Int("assignment", payload.AssignmentNumber).
		Str("type", payload.ChallengeType).
		Bool("enabled", payload.Enabled).
		Msg("grading config saved")

	return dto.NewGradingConfigResponse(config), nil
}

// BulkGrade queues auto-grading of every pending archive submission for the
// assignment and returns immediately with a job handle. Started, progress,
// and completed events are emitted to the assignment channel in submission
// order.
func (s *gradingAdminService) BulkGrade(ctx context.Context, payload dto.BulkGradeRequest) (dto.BulkGradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkGradeResponse{}, err
	}

	pending, err := s.submissions.ListPendingByAssignment(ctx, payload.AssignmentNumber)
	if err != nil {
		return dto.BulkGradeResponse{}, err
	}
	if len(pending) == 0 {
		return dto.BulkGradeResponse{}, ErrNothingToGrade
	}

	jobID := fmt.Sprintf("bulk-grade-%d-%d", payload.AssignmentNumber, s.now().UnixMilli())
	job := &bulkJob{
		assignmentNumber: payload.AssignmentNumber,
		status:           bulkStatusRunning,
		total:            len(pending),
		startedAt:        s.now(),
	}

	s.mu.Lock()
	s.jobs[jobID] = job
	s.mu.Unlock()

	go s.runBulkJob(jobID, job, pending)

	s.logger.Info().
		Str("job_id", jobID).
		Int("assignment", payload.AssignmentNumber).
		Int("queued", len(pending)).
		Msg("bulk grading started")

	return dto.BulkGradeResponse{
		JobID:            jobID,
		AssignmentNumber: payload.AssignmentNumber,
		Queued:           len(pending),
	}, nil
}

func (s *gradingAdminService) JobStatus(ctx context.Context, jobID string) (dto.BulkGradeStatusResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return dto.BulkGradeStatusResponse{}, ErrBulkJobNotFound
	}

	return dto.BulkGradeStatusResponse{
		JobID:            jobID,
		AssignmentNumber: job.assignmentNumber,
		Status:           job.status,
		Graded:           job.graded,
		Failed:           job.failed,
		Total:            job.total,
		StartedAt:        job.startedAt,
		FinishedAt:       job.finishedAt,
	}, nil
}

func (s *gradingAdminService) runBulkJob(jobID string, job *bulkJob, pending []models.ArchiveSubmission) {
	ctx := context.Background()
	channel := realtime.AssignmentChannel(job.assignmentNumber)

	s.broadcaster.Emit(ctx, channel, realtime.EventGradingUpdate, map[string]interface{}{
		"job_id": jobID,
		"status": "started",
		"total":  job.total,
	})

	for _, submission := range pending {
		_, err := s.archives.AutoGrade(ctx, submission.ID)

		s.mu.Lock()
		if err != nil {
			job.failed++
		} else {
			job.graded++
		}
		graded, failed := job.graded, job.failed
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("bulk grade failed for submission")
		}

		s.broadcaster.Emit(ctx, channel, realtime.EventGradingUpdate, map[string]interface{}{
			"job_id":        jobID,
			"status":        "progress",
			"submission_id": submission.ID,
			"student_id":    submission.StudentID,
			"graded":        graded,
			"failed":        failed,
			"total":         job.total,
		})
	}

	finished := s.now()
	s.mu.Lock()
	job.status = bulkStatusCompleted
	job.finishedAt = &finished
	s.mu.Unlock()

	s.broadcaster.Emit(ctx, channel, realtime.EventGradingUpdate, map[string]interface{}{
		"job_id": jobID,
		"status": bulkStatusCompleted,
		"total":  job.total,
	})
}
