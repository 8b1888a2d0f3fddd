package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/realtime"
)

type gradingAdminFixture struct {
	service     GradingAdminService
	configs     *stubGradingConfigRepo
	submissions *stubArchiveSubmissionRepo
	broadcaster *recordingBroadcaster
}

func newGradingAdminFixture(t *testing.T, grader ArchiveGrader, submissions ...models.ArchiveSubmission) gradingAdminFixture {
	t.Helper()

	configRepo := &stubGradingConfigRepo{}
	submissionRepo := &stubArchiveSubmissionRepo{submissions: submissions}
	studentRepo := &stubStudentRepo{students: []models.Student{{ID: 7, FullName: "Ada Student"}}}
	broadcaster := &recordingBroadcaster{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	archives := NewArchiveService(
		submissionRepo,
		studentRepo,
		grader,
		broadcaster,
		validate,
		zerolog.Nop(),
		t.TempDir(),
	)

	svc := NewGradingAdminService(configRepo, submissionRepo, archives, broadcaster, validate, zerolog.Nop())

	return gradingAdminFixture{
		service:     svc,
		configs:     configRepo,
		submissions: submissionRepo,
		broadcaster: broadcaster,
	}
}

func TestGradingAdminGetConfigFallsBackToDefaults(t *testing.T) {
	fixture := newGradingAdminFixture(t, stubArchiveGrader{})

	config, err := fixture.service.GetConfig(context.Background(), 3, "mcq_quiz")
	require.NoError(t, err)

	require.True(t, config.Enabled)
	require.Equal(t, 60.0, config.Criteria.PassingScore)
	require.Equal(t, 0.1, config.Criteria.TimeWeighting)
	require.Equal(t, 0.25, config.Criteria.PenaltyForIncorrect)
}

func TestGradingAdminGetConfigRejectsUnknownType(t *testing.T) {
	fixture := newGradingAdminFixture(t, stubArchiveGrader{})

	_, err := fixture.service.GetConfig(context.Background(), 3, "essay")
	require.ErrorIs(t, err, ErrInvalidChallengeType)
}

func TestGradingAdminUpsertConfigRoundtrips(t *testing.T) {
	fixture := newGradingAdminFixture(t, stubArchiveGrader{})

	saved, err := fixture.service.UpsertConfig(context.Background(), dto.GradingConfigRequest{
		AssignmentNumber: 3,
		ChallengeType:    "coding_challenge",
		Enabled:          false,
		Criteria: &dto.GradingCriteriaPayload{
			PassingScore:        75,
			TimeWeighting:       0.2,
			PenaltyForIncorrect: 0.5,
		},
	})
	require.NoError(t, err)
	require.False(t, saved.Enabled)
	require.Equal(t, 75.0, saved.Criteria.PassingScore)

	fetched, err := fixture.service.GetConfig(context.Background(), 3, "coding_challenge")
	require.NoError(t, err)
	require.False(t, fetched.Enabled)
	require.Equal(t, 0.5, fetched.Criteria.PenaltyForIncorrect)
}

func TestGradingAdminUpsertConfigValidatesPayload(t *testing.T) {
	fixture := newGradingAdminFixture(t, stubArchiveGrader{})

	_, err := fixture.service.UpsertConfig(context.Background(), dto.GradingConfigRequest{
		AssignmentNumber: 3,
		ChallengeType:    "powerpoint",
	})
	require.Error(t, err)
}

func TestGradingAdminBulkGradeWithNothingPending(t *testing.T) {
	graded := 20.0
	now := time.Now()
	fixture := newGradingAdminFixture(t, stubArchiveGrader{}, models.ArchiveSubmission{
		ID: 1, StudentID: 7, AssignmentNumber: 3, Score: &graded, GradedAt: &now,
	})

	_, err := fixture.service.BulkGrade(context.Background(), dto.BulkGradeRequest{AssignmentNumber: 3})
	require.ErrorIs(t, err, ErrNothingToGrade)
}

func TestGradingAdminBulkGradeRunsToCompletion(t *testing.T) {
	grader := stubArchiveGrader{result: RubricResult{
		Rubric: models.RubricBreakdown{Structure: 5, CodeQuality: 5, Functionality: 15, Documentation: 5},
		Score:  30,
	}}
	fixture := newGradingAdminFixture(t, grader,
		models.ArchiveSubmission{ID: 1, StudentID: 7, AssignmentNumber: 3, FileURL: "/tmp/a.zip"},
		models.ArchiveSubmission{ID: 2, StudentID: 7, AssignmentNumber: 3, FileURL: "/tmp/b.zip"},
	)

	accepted, err := fixture.service.BulkGrade(context.Background(), dto.BulkGradeRequest{AssignmentNumber: 3})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(accepted.JobID, "bulk-grade-3-"))
	require.Equal(t, 2, accepted.Queued)

	require.Eventually(t, func() bool {
		status, err := fixture.service.JobStatus(context.Background(), accepted.JobID)
		return err == nil && status.Status == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	status, err := fixture.service.JobStatus(context.Background(), accepted.JobID)
	require.NoError(t, err)
	require.Equal(t, 2, status.Graded)
	require.Equal(t, 0, status.Failed)
	require.Equal(t, 2, status.Total)
	require.NotNil(t, status.FinishedAt)

	var updates []recordedEvent
	for _, event := range fixture.broadcaster.Events() {
		if event.Channel == realtime.AssignmentChannel(3) && event.Event == realtime.EventGradingUpdate {
			updates = append(updates, event)
		}
	}
	// A started event, two per-submission updates, and the completion event.
	require.Len(t, updates, 4)
	first, ok := updates[0].Payload.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "started", first["status"])
	final, ok := updates[3].Payload.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "completed", final["status"])
}

func TestGradingAdminBulkGradeCountsFailures(t *testing.T) {
	fixture := newGradingAdminFixture(t, stubArchiveGrader{err: ErrArchiveFileMissing},
		models.ArchiveSubmission{ID: 1, StudentID: 7, AssignmentNumber: 3, FileURL: "/tmp/gone.zip"},
	)

	accepted, err := fixture.service.BulkGrade(context.Background(), dto.BulkGradeRequest{AssignmentNumber: 3})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := fixture.service.JobStatus(context.Background(), accepted.JobID)
		return err == nil && status.Status == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	status, err := fixture.service.JobStatus(context.Background(), accepted.JobID)
	require.NoError(t, err)
	require.Equal(t, 0, status.Graded)
	require.Equal(t, 1, status.Failed)
}

func TestGradingAdminJobStatusUnknown(t *testing.T) {
	fixture := newGradingAdminFixture(t, stubArchiveGrader{})

	_, err := fixture.service.JobStatus(context.Background(), "bulk-grade-3-123")
	require.ErrorIs(t, err, ErrBulkJobNotFound)
}
