package dto

import (
	"time"

	"github.com/praxislab/praxis-api/internal/models"
)

// ChallengeCreateRequest captures the payload for publishing a challenge.
type ChallengeCreateRequest struct {
	Type             string   `json:"type" validate:"required,oneof=file_upload mcq_quiz coding_challenge"`
	AssignmentNumber int      `json:"assignment_number" validate:"required,min=1"`
	Title            string   `json:"title" validate:"required,min=3,max=200"`
	Description      string   `json:"description" validate:"omitempty,max=5000"`
	MaxScore         *float64 `json:"max_score" validate:"omitempty,gt=0"`
	TimeLimitMinutes *int     `json:"time_limit_minutes" validate:"omitempty,min=1"`
	QuestionCount    *int     `json:"question_count" validate:"omitempty,min=1"`
	ProblemID        *uint    `json:"problem_id"`
}

// ChallengeUpdateRequest captures a partial challenge update.
type ChallengeUpdateRequest struct {
	Title            *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string  `json:"description" validate:"omitempty,max=5000"`
	MaxScore         *float64 `json:"max_score" validate:"omitempty,gt=0"`
	TimeLimitMinutes *int     `json:"time_limit_minutes" validate:"omitempty,min=1"`
	QuestionCount    *int     `json:"question_count" validate:"omitempty,min=1"`
	Active           *bool    `json:"active"`
}

// ChallengeResponse serializes a challenge for API clients.
type ChallengeResponse struct {
	ID               uint      `json:"id"`
	ChallengeID      string    `json:"challenge_id"`
	Type             string    `json:"type"`
	AssignmentNumber int       `json:"assignment_number"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	MaxScore         float64   `json:"max_score"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`
	QuestionCount    int       `json:"question_count,omitempty"`
	ProblemID        *uint     `json:"problem_id,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewChallengeResponse converts a model into a DTO.
func NewChallengeResponse(model models.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:               model.ID,
		ChallengeID:      model.ChallengeID,
		Type:             string(model.Type),
		AssignmentNumber: model.AssignmentNumber,
		Title:            model.Title,
		Description:      model.Description,
		MaxScore:         model.MaxScore,
		TimeLimitMinutes: model.TimeLimitMinutes,
		QuestionCount:    model.QuestionCount,
		ProblemID:        model.ProblemID,
		Active:           model.Active,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewChallengeResponseSlice converts a slice of models into DTOs.
func NewChallengeResponseSlice(challenges []models.Challenge) []ChallengeResponse {
	responses := make([]ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, NewChallengeResponse(challenge))
	}

	return responses
}

// SelectionRequest captures a student's wholesale challenge selection.
type SelectionRequest struct {
	AssignmentNumber int      `json:"assignment_number" validate:"required,min=1"`
	ChallengeIDs     []string `json:"challenge_ids" validate:"required,min=1,dive,required"`
}

// SelectionResponse serializes a selection ledger entry.
type SelectionResponse struct {
	StudentID        uint      `json:"student_id"`
	AssignmentNumber int       `json:"assignment_number"`
	ChallengeIDs     []string  `json:"challenge_ids"`
	SelectedAt       time.Time `json:"selected_at"`
}

// NewSelectionResponse converts a model into a DTO.
func NewSelectionResponse(model models.ChallengeSelection) SelectionResponse {
	return SelectionResponse{
		StudentID:        model.StudentID,
		AssignmentNumber: model.AssignmentNumber,
		ChallengeIDs:     model.ChallengeIDs,
		SelectedAt:       model.SelectedAt,
	}
}

// AvailableChallengesResponse pairs the catalog with the student's selection.
type AvailableChallengesResponse struct {
	AssignmentNumber int                 `json:"assignment_number"`
	Challenges       []ChallengeResponse `json:"challenges"`
	Selected         []string            `json:"selected"`
}
