package dto

import (
	"time"

	"github.com/praxislab/praxis-api/internal/models"
)

// GradingCriteriaPayload mirrors the tunable auto-grading knobs.
type GradingCriteriaPayload struct {
	PassingScore        float64 `json:"passing_score" validate:"min=0,max=100"`
	TimeWeighting       float64 `json:"time_weighting" validate:"min=0,max=1"`
	PenaltyForIncorrect float64 `json:"penalty_for_incorrect" validate:"min=0,max=1"`
}

// GradingConfigRequest captures an admin's auto-grading configuration.
type GradingConfigRequest struct {
	AssignmentNumber int                     `json:"assignment_number" validate:"required,min=1"`
	ChallengeType    string                  `json:"challenge_type" validate:"required,oneof=file_upload mcq_quiz coding_challenge"`
	Enabled          bool                    `json:"enabled"`
	Criteria         *GradingCriteriaPayload `json:"criteria" validate:"omitempty"`
}

// GradingConfigResponse serializes an auto-grading configuration.
type GradingConfigResponse struct {
	ID               uint                   `json:"id"`
	AssignmentNumber int                    `json:"assignment_number"`
	ChallengeType    string                 `json:"challenge_type"`
	Enabled          bool                   `json:"enabled"`
	Criteria         GradingCriteriaPayload `json:"criteria"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// NewGradingConfigResponse converts a model into a DTO.
func NewGradingConfigResponse(model models.AutoGradingConfig) GradingConfigResponse {
	criteria := model.Criteria.Data()

	return GradingConfigResponse{
		ID:               model.ID,
		AssignmentNumber: model.AssignmentNumber,
		ChallengeType:    string(model.ChallengeType),
		Enabled:          model.Enabled,
		Criteria: GradingCriteriaPayload{
			PassingScore:        criteria.PassingScore,
			TimeWeighting:       criteria.TimeWeighting,
			PenaltyForIncorrect: criteria.PenaltyForIncorrect,
		},
		UpdatedAt: model.UpdatedAt,
	}
}

// NewGradingConfigResponseSlice converts a slice of models into DTOs.
func NewGradingConfigResponseSlice(configs []models.AutoGradingConfig) []GradingConfigResponse {
	responses := make([]GradingConfigResponse, 0, len(configs))
	for _, config := range configs {
		responses = append(responses, NewGradingConfigResponse(config))
	}

	return responses
}

// BulkGradeRequest captures an admin's request to grade a whole assignment.
type BulkGradeRequest struct {
	AssignmentNumber int `json:"assignment_number" validate:"required,min=1"`
}

// BulkGradeResponse acknowledges an accepted bulk grading job.
type BulkGradeResponse struct {
	JobID            string `json:"job_id"`
	AssignmentNumber int    `json:"assignment_number"`
	Queued           int    `json:"queued"`
}

// BulkGradeStatusResponse reports a bulk grading job's progress.
type BulkGradeStatusResponse struct {
	JobID            string     `json:"job_id"`
	AssignmentNumber int        `json:"assignment_number"`
	Status           string     `json:"status"`
	Graded           int        `json:"graded"`
	Failed           int        `json:"failed"`
	Total            int        `json:"total"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}
