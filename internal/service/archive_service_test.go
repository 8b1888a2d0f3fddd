package service

import (
	"context"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/models"
	"github.com/praxislab/praxis-api/internal/realtime"
)

type archiveFixture struct {
	service     ArchiveService
	submissions *stubArchiveSubmissionRepo
	students    *stubStudentRepo
	broadcaster *recordingBroadcaster
	storageRoot string
}

func newArchiveFixture(t *testing.T, grader ArchiveGrader, submissions ...models.ArchiveSubmission) archiveFixture {
	t.Helper()

	submissionRepo := &stubArchiveSubmissionRepo{submissions: submissions}
	studentRepo := &stubStudentRepo{students: []models.Student{{ID: 7, FullName: "Ada Student"}}}
	broadcaster := &recordingBroadcaster{}
	storageRoot := t.TempDir()

	svc := NewArchiveService(
		submissionRepo,
		studentRepo,
		grader,
		broadcaster,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
		storageRoot,
	)

	return archiveFixture{
		service:     svc,
		submissions: submissionRepo,
		students:    studentRepo,
		broadcaster: broadcaster,
		storageRoot: storageRoot,
	}
}

func pendingArchive(id uint) models.ArchiveSubmission {
	return models.ArchiveSubmission{
		ID:               id,
		StudentID:        7,
		AssignmentNumber: 3,
		FileName:         "project.zip",
		FileURL:          "/tmp/does-not-matter.zip",
	}
}

func TestArchiveServiceSubmitPersistsAndNotifies(t *testing.T) {
	fixture := newArchiveFixture(t, stubArchiveGrader{})
	header := fileHeaderFromBytes(t, "project.zip", []byte("PK\x03\x04fake"))

	response, err := fixture.service.Submit(context.Background(), 7, 3, header)
	require.NoError(t, err)

	require.Equal(t, uint(1), response.ID)
	require.Equal(t, "project.zip", response.FileName)
	require.Nil(t, response.Score)

	// The archive must land on disk so the auto-grader can read it back.
	_, err = os.Stat(response.FileURL)
	require.NoError(t, err)

	events := fixture.broadcaster.Events()
	require.Len(t, events, 1)
	require.Equal(t, realtime.AssignmentChannel(3), events[0].Channel)
	require.Equal(t, realtime.EventSubmissionUpdate, events[0].Event)
}

func TestArchiveServiceSubmitRequiresFile(t *testing.T) {
	fixture := newArchiveFixture(t, stubArchiveGrader{})

	_, err := fixture.service.Submit(context.Background(), 7, 3, nil)
	require.ErrorIs(t, err, ErrFileRequired)
}

func TestArchiveServiceGradeSanitizesAndRecomputesTotals(t *testing.T) {
	fixture := newArchiveFixture(t, stubArchiveGrader{}, pendingArchive(1))

	response, err := fixture.service.Grade(context.Background(), 2, 1, dto.ArchiveGradeRequest{
		Score:    25,
		Feedback: "<script>alert(1)</script>Solid work",
	})
	require.NoError(t, err)

	require.NotNil(t, response.Score)
	require.Equal(t, 25.0, *response.Score)
	require.Equal(t, "Solid work", response.Feedback)
	require.NotNil(t, response.GradedAt)

	graderID := uint(2)
	require.NotNil(t, fixture.submissions.updated)
	require.Equal(t, &graderID, fixture.submissions.updated.GradedBy)
	require.Equal(t, 25.0, fixture.students.totals[7])

	events := fixture.broadcaster.Events()
	require.Len(t, events, 2)
	require.Equal(t, realtime.EventSubmissionGraded, events[0].Event)
	require.Equal(t, realtime.UserChannel(7), events[1].Channel)
	require.Equal(t, realtime.EventGradeNotification, events[1].Event)

	payload, ok := events[1].Payload.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, true, payload["has_feedback"])
}

func TestArchiveServiceGradeRejectsOutOfRangeScore(t *testing.T) {
	fixture := newArchiveFixture(t, stubArchiveGrader{}, pendingArchive(1))

	_, err := fixture.service.Grade(context.Background(), 2, 1, dto.ArchiveGradeRequest{Score: 150})
	require.Error(t, err)
	require.Nil(t, fixture.submissions.updated)
}

func TestArchiveServiceGradeUnknownSubmission(t *testing.T) {
	fixture := newArchiveFixture(t, stubArchiveGrader{})

	_, err := fixture.service.Grade(context.Background(), 2, 99, dto.ArchiveGradeRequest{Score: 10})
	require.ErrorIs(t, err, ErrArchiveSubmissionNotFound)
}

func TestArchiveServiceAutoGradeAppliesRubric(t *testing.T) {
	grader := stubArchiveGrader{result: RubricResult{
		Rubric:   models.RubricBreakdown{Structure: 4, CodeQuality: 5, Functionality: 13, Documentation: 5},
		Score:    27,
		Feedback: "Project structure: 4/5\nCode quality: 5/5\nFunctionality: 13/15\nDocumentation: 5/5",
	}}
	fixture := newArchiveFixture(t, grader, pendingArchive(1))

	response, err := fixture.service.AutoGrade(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, response.Score)
	require.Equal(t, 27.0, *response.Score)
	require.NotNil(t, response.Rubric)
	require.Equal(t, 13.0, response.Rubric.Functionality)

	// An automated grade carries no grader identity.
	require.NotNil(t, fixture.submissions.updated)
	require.Nil(t, fixture.submissions.updated.GradedBy)
	require.Equal(t, 27.0, fixture.students.totals[7])

	events := fixture.broadcaster.Events()
	require.Len(t, events, 1)
	require.Equal(t, realtime.UserChannel(7), events[0].Channel)
	require.Equal(t, realtime.EventGradeNotification, events[0].Event)
}

func TestArchiveServiceAutoGradeMissingFile(t *testing.T) {
	fixture := newArchiveFixture(t, stubArchiveGrader{err: ErrArchiveFileMissing}, pendingArchive(1))

	_, err := fixture.service.AutoGrade(context.Background(), 1)
	require.ErrorIs(t, err, ErrArchiveFileMissing)
	require.Nil(t, fixture.submissions.updated)
}
