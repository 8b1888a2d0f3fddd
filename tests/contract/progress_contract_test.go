package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/praxislab/praxis-api/internal/dto"
	"github.com/praxislab/praxis-api/internal/handler"
)

type stubProgressService struct {
	progress dto.StudentProgressResponse
}

func (s stubProgressService) StudentProgress(context.Context, uint, int) (dto.StudentProgressResponse, error) {
	return s.progress, nil
}

func (s stubProgressService) AdminProgress(context.Context, int) (dto.AdminProgressResponse, error) {
	return dto.AdminProgressResponse{}, nil
}

func (s stubProgressService) Statistics(context.Context, int) (dto.AssignmentStatisticsResponse, error) {
	return dto.AssignmentStatisticsResponse{}, nil
}

func TestStudentProgressContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "student_progress.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	score := 9.0
	svc := stubProgressService{progress: dto.StudentProgressResponse{
		StudentID:         7,
		AssignmentNumber:  3,
		Selected:          2,
		Completed:         1,
		CompletionPercent: 50,
		TotalScore:        9,
		MaxPossibleScore:  30,
		Challenges: []dto.ChallengeProgressEntry{
			{
				ChallengeID: "mcq-quiz-3-1",
				Type:        "mcq_quiz",
				Title:       "Control Flow Quiz",
				Completed:   true,
				Score:       &score,
				MaxScore:    15,
				SubmittedAt: &now,
			},
			{
				ChallengeID: "coding-challenge-3-1",
				Type:        "coding_challenge",
				Title:       "String Reversal",
				Completed:   false,
				MaxScore:    15,
			},
		},
	}}

	progressHandler := handler.NewProgressHandler(svc, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/progress", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
		return c.Next()
	})
	progressHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress/3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
