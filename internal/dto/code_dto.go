package dto

import (
	"time"

	"github.com/praxislab/praxis-api/internal/models"
)

// CodeTestCaseResponse is a test case as presented to a student. Expected
// outputs of hidden cases are never serialized.
type CodeTestCaseResponse struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output,omitempty"`
	Hidden         bool   `json:"hidden"`
}

// CodeProblemResponse serializes a coding problem for a student.
type CodeProblemResponse struct {
	ID               uint                   `json:"id"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	StarterCode      string                 `json:"starter_code"`
	Constraints      []string               `json:"constraints"`
	TimeLimitMinutes int                    `json:"time_limit_minutes"`
	TestCases        []CodeTestCaseResponse `json:"test_cases"`
}

// NewCodeProblemResponse converts a problem model into a student-facing DTO.
// Visible cases keep their expected output; hidden cases expose input only.
func NewCodeProblemResponse(model models.CodingProblem) CodeProblemResponse {
	cases := make([]CodeTestCaseResponse, 0, len(model.TestCases))
	for _, tc := range model.TestCases {
		entry := CodeTestCaseResponse{Input: tc.Input, Hidden: tc.Hidden}
		if !tc.Hidden {
			entry.ExpectedOutput = tc.ExpectedOutput
		}
		cases = append(cases, entry)
	}

	return CodeProblemResponse{
		ID:               model.ID,
		Title:            model.Title,
		Description:      model.Description,
		StarterCode:      model.StarterCode,
		Constraints:      model.Constraints,
		TimeLimitMinutes: model.TimeLimitMinutes,
		TestCases:        cases,
	}
}

// CodeRunRequest captures a dry-run request against visible test cases.
type CodeRunRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language" validate:"omitempty,oneof=javascript python go"`
}

// CodeSubmitRequest captures a final code submission.
type CodeSubmitRequest struct {
	Code             string     `json:"code" validate:"required"`
	Language         string     `json:"language" validate:"omitempty,oneof=javascript python go"`
	TimeSpentMinutes int        `json:"time_spent_minutes" validate:"omitempty,min=0"`
	StartedAt        *time.Time `json:"started_at"`
}

// CodeTestResultResponse is one executed case. For hidden cases the expected
// and actual outputs are masked before serialization.
type CodeTestResultResponse struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	Passed         bool   `json:"passed"`
	Error          string `json:"error,omitempty"`
}

// NewCodeTestResultResponseSlice converts executed cases into DTOs.
func NewCodeTestResultResponseSlice(results []models.CodeTestResult) []CodeTestResultResponse {
	responses := make([]CodeTestResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, CodeTestResultResponse{
			Input:          result.Input,
			ExpectedOutput: result.ExpectedOutput,
			ActualOutput:   result.ActualOutput,
			Passed:         result.Passed,
			Error:          result.Error,
		})
	}

	return responses
}

// CodeRunResponse is the outcome of a dry run against visible cases.
type CodeRunResponse struct {
	Results     []CodeTestResultResponse `json:"results"`
	PassedTests int                      `json:"passed_tests"`
	TotalTests  int                      `json:"total_tests"`
}

// CodeResultResponse serializes a graded code submission.
type CodeResultResponse struct {
	ID               uint                     `json:"id"`
	ChallengeID      string                   `json:"challenge_id"`
	Score            float64                  `json:"score"`
	MaxScore         float64                  `json:"max_score"`
	PassedTests      int                      `json:"passed_tests"`
	TotalTests       int                      `json:"total_tests"`
	TestResults      []CodeTestResultResponse `json:"test_results"`
	TimeSpentMinutes int                      `json:"time_spent_minutes"`
	SubmittedAt      time.Time                `json:"submitted_at"`
}

// NewCodeResultResponse converts a submission model into a DTO.
func NewCodeResultResponse(model models.CodeSubmission) CodeResultResponse {
	return CodeResultResponse{
		ID:               model.ID,
		ChallengeID:      model.ChallengeID,
		Score:            model.Score,
		MaxScore:         model.MaxScore,
		PassedTests:      model.PassedTests,
		TotalTests:       model.TotalTests,
		TestResults:      NewCodeTestResultResponseSlice(model.TestResults),
		TimeSpentMinutes: model.TimeSpentMinutes,
		SubmittedAt:      model.SubmittedAt,
	}
}

// CodeProblemCreateRequest captures the payload for authoring a problem.
type CodeProblemCreateRequest struct {
	AssignmentNumber int             `json:"assignment_number" validate:"required,min=1"`
	Title            string          `json:"title" validate:"required,min=3,max=200"`
	Description      string          `json:"description" validate:"required"`
	StarterCode      string          `json:"starter_code"`
	Constraints      []string        `json:"constraints"`
	TimeLimitMinutes *int            `json:"time_limit_minutes" validate:"omitempty,min=1"`
	TestCases        []TestCaseInput `json:"test_cases" validate:"required,min=1,dive"`
}

// TestCaseInput is one authored test case.
type TestCaseInput struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output" validate:"required"`
	Hidden         bool   `json:"hidden"`
}
