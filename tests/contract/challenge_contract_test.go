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

type stubCatalogService struct {
	challenges []dto.ChallengeResponse
}

func (s stubCatalogService) List(context.Context, *int, *string, bool) ([]dto.ChallengeResponse, error) {
	return s.challenges, nil
}

func (s stubCatalogService) Get(context.Context, string) (dto.ChallengeResponse, error) {
	return s.challenges[0], nil
}

func (s stubCatalogService) Create(context.Context, uint, dto.ChallengeCreateRequest) (dto.ChallengeResponse, error) {
	return dto.ChallengeResponse{}, nil
}

func (s stubCatalogService) Update(context.Context, string, dto.ChallengeUpdateRequest) (dto.ChallengeResponse, error) {
	return dto.ChallengeResponse{}, nil
}

func (s stubCatalogService) Delete(context.Context, string) error {
	return nil
}

type stubSelectionService struct{}

func (s stubSelectionService) Available(_ context.Context, studentID uint, assignmentNumber int) (dto.AvailableChallengesResponse, error) {
	return dto.AvailableChallengesResponse{AssignmentNumber: assignmentNumber}, nil
}

func (s stubSelectionService) Select(_ context.Context, studentID uint, payload dto.SelectionRequest) (dto.SelectionResponse, error) {
	return dto.SelectionResponse{StudentID: studentID, AssignmentNumber: payload.AssignmentNumber, ChallengeIDs: payload.ChallengeIDs, SelectedAt: time.Now().UTC()}, nil
}

func (s stubSelectionService) Get(_ context.Context, studentID uint, assignmentNumber int) (dto.SelectionResponse, error) {
	return dto.SelectionResponse{StudentID: studentID, AssignmentNumber: assignmentNumber, SelectedAt: time.Now().UTC()}, nil
}

func TestChallengeListContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "challenge_list.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	timeLimit := 30
	problemID := uint(4)
	catalog := stubCatalogService{challenges: []dto.ChallengeResponse{
		{
			ID:               1,
			ChallengeID:      "mcq-quiz-3-1",
			Type:             "mcq_quiz",
			AssignmentNumber: 3,
			Title:            "Control Flow Quiz",
			Description:      "Ten questions on loops and branches",
			MaxScore:         15,
			TimeLimitMinutes: &timeLimit,
			QuestionCount:    10,
			Active:           true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:               2,
			ChallengeID:      "coding-challenge-3-1",
			Type:             "coding_challenge",
			AssignmentNumber: 3,
			Title:            "String Reversal",
			MaxScore:         15,
			ProblemID:        &problemID,
			Active:           true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}}

	challengeHandler := handler.NewChallengeHandler(catalog, stubSelectionService{}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/challenges", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
		return c.Next()
	})
	challengeHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/challenges?assignment=3", nil)
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
