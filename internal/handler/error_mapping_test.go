package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/handler"
	"github.com/praxislab/praxis-api/internal/service"
)

type failingQuizService struct{ err error }

func (s failingQuizService) Start(context.Context, uint, string) (dto.QuizStartResponse, error) {
	return dto.QuizStartResponse{}, s.err
}

func (s failingQuizService) Submit(context.Context, uint, string, dto.QuizSubmitRequest) (dto.QuizResultResponse, error) {
	return dto.QuizResultResponse{}, s.err
}

func (s failingQuizService) Result(context.Context, uint, string) (dto.QuizResultResponse, error) {
	return dto.QuizResultResponse{}, s.err
}

type failingCodeService struct{ err error }

func (s failingCodeService) GetProblem(context.Context, uint, string) (dto.CodeProblemResponse, error) {
	return dto.CodeProblemResponse{}, s.err
}

func (s failingCodeService) RunTests(context.Context, uint, string, dto.CodeRunRequest) (dto.CodeRunResponse, error) {
	return dto.CodeRunResponse{}, s.err
}

func (s failingCodeService) Submit(context.Context, uint, string, dto.CodeSubmitRequest) (dto.CodeResultResponse, error) {
	return dto.CodeResultResponse{}, s.err
}

func (s failingCodeService) Result(context.Context, uint, string) (dto.CodeResultResponse, error) {
	return dto.CodeResultResponse{}, s.err
}

type failingFileService struct{ err error }

func (s failingFileService) Submit(context.Context, uint, string, *multipart.FileHeader, dto.FileSubmitRequest) (dto.FileSubmissionResponse, error) {
	return dto.FileSubmissionResponse{}, s.err
}

func (s failingFileService) Get(context.Context, uint, string) (dto.FileSubmissionResponse, error) {
	return dto.FileSubmissionResponse{}, s.err
}

func (s failingFileService) ListPending(context.Context, *int) ([]dto.FileSubmissionResponse, error) {
	return nil, s.err
}

func (s failingFileService) Grade(context.Context, uint, uint, dto.FileGradeRequest) (dto.FileSubmissionResponse, error) {
	return dto.FileSubmissionResponse{}, s.err
}

func (s failingFileService) TrackAccess(context.Context, uint, uint, dto.FileAccessRequest) (dto.FileAccessResponse, error) {
	return dto.FileAccessResponse{}, s.err
}

func asStudent(c *fiber.Ctx) error {
	c.Locals("user_id", uint(7))
	c.Locals("user_role", "student")
	return c.Next()
}

func errorEnvelope(t *testing.T, resp *http.Response) (string, string) {
	t.Helper()
	var envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	decodeEnvelope(t, resp, &envelope)
	return envelope.Status, envelope.Message
}

func TestQuizHandlerMapsDuplicateSubmissionToBadRequest(t *testing.T) {
	app := fiber.New()
	group := app.Group("/challenges", asStudent)
	handler.NewQuizHandler(failingQuizService{err: service.ErrAlreadySubmitted}, zerolog.New(io.Discard)).Register(group)

	req := httptest.NewRequest(http.MethodPost, "/challenges/mcq-quiz-3-1/quiz/submit", bytes.NewReader([]byte(`{"answers":[1]}`)))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	status, message := errorEnvelope(t, resp)
	require.Equal(t, "error", status)
	require.Equal(t, "challenge already submitted", message)
}

func TestCodeHandlerMapsDuplicateSubmissionToBadRequest(t *testing.T) {
	app := fiber.New()
	group := app.Group("/challenges", asStudent)
	handler.NewCodeHandler(failingCodeService{err: service.ErrAlreadySubmitted}, zerolog.New(io.Discard)).Register(group)

	req := httptest.NewRequest(http.MethodPost, "/challenges/coding-challenge-3-1/code/submit", bytes.NewReader([]byte(`{"code":"x"}`)))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFileChallengeHandlerMapsStorageFailureToInternalError(t *testing.T) {
	app := fiber.New()
	group := app.Group("/challenges", asStudent)
	handler.NewFileChallengeHandler(failingFileService{err: service.ErrStorageFailure}, zerolog.New(io.Discard)).Register(group)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/challenges/file-upload-3-1/file", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	status, message := errorEnvelope(t, resp)
	require.Equal(t, "error", status)
	require.Equal(t, "file storage failed", message)
}
