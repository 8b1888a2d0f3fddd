package dto

import (
	"time"

	"github.com/praxislab/praxis-api/internal/models"
)

// RubricBreakdownResponse serializes the fixed grading rubric.
type RubricBreakdownResponse struct {
	Structure     float64 `json:"structure"`
	CodeQuality   float64 `json:"code_quality"`
	Functionality float64 `json:"functionality"`
	Documentation float64 `json:"documentation"`
}

// ArchiveSubmissionResponse serializes a legacy archive submission.
type ArchiveSubmissionResponse struct {
	ID               uint                     `json:"id"`
	StudentID        uint                     `json:"student_id"`
	StudentName      string                   `json:"student_name,omitempty"`
	AssignmentNumber int                      `json:"assignment_number"`
	FileName         string                   `json:"file_name"`
	FileURL          string                   `json:"file_url"`
	Score            *float64                 `json:"score"`
	Feedback         string                   `json:"feedback"`
	Rubric           *RubricBreakdownResponse `json:"rubric,omitempty"`
	SubmittedAt      time.Time                `json:"submitted_at"`
	GradedAt         *time.Time               `json:"graded_at,omitempty"`
}

// NewArchiveSubmissionResponse converts a model into a DTO.
func NewArchiveSubmissionResponse(model models.ArchiveSubmission) ArchiveSubmissionResponse {
	response := ArchiveSubmissionResponse{
		ID:               model.ID,
		StudentID:        model.StudentID,
		AssignmentNumber: model.AssignmentNumber,
		FileName:         model.FileName,
		FileURL:          model.FileURL,
		Score:            model.Score,
		Feedback:         model.Feedback,
		SubmittedAt:      model.SubmittedAt,
		GradedAt:         model.GradedAt,
	}

	if model.Student.ID != 0 {
		response.StudentName = model.Student.FullName
	}
	if model.IsGraded() {
		rubric := model.Rubric.Data()
		response.Rubric = &RubricBreakdownResponse{
			Structure:     rubric.Structure,
			CodeQuality:   rubric.CodeQuality,
			Functionality: rubric.Functionality,
			Documentation: rubric.Documentation,
		}
	}

	return response
}

// NewArchiveSubmissionResponseSlice converts a slice of models into DTOs.
func NewArchiveSubmissionResponseSlice(submissions []models.ArchiveSubmission) []ArchiveSubmissionResponse {
	responses := make([]ArchiveSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewArchiveSubmissionResponse(submission))
	}

	return responses
}

// ArchiveGradeRequest captures a tutor's manual grade for an archive submission.
type ArchiveGradeRequest struct {
	Score    float64 `json:"score" validate:"min=0,max=100"`
	Feedback string  `json:"feedback" validate:"omitempty,max=5000"`
}
