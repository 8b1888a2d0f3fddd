package dto

import (
	"time"

	"github.com/praxislab/praxis-api/internal/models"
)

// FileSubmitRequest captures the multipart payload for a file challenge.
type FileSubmitRequest struct {
	Comments string `form:"comments" json:"comments" validate:"omitempty,max=2000"`
}

// FileSubmissionResponse serializes a file submission.
type FileSubmissionResponse struct {
	ID               uint       `json:"id"`
	StudentID        uint       `json:"student_id"`
	ChallengeID      string     `json:"challenge_id"`
	AssignmentNumber int        `json:"assignment_number"`
	FileName         string     `json:"file_name"`
	FileURL          string     `json:"file_url"`
	FileType         string     `json:"file_type"`
	FileSize         int64      `json:"file_size"`
	Comments         string     `json:"comments"`
	Score            *float64   `json:"score"`
	Feedback         string     `json:"feedback"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	GradedAt         *time.Time `json:"graded_at,omitempty"`
	GradedBy         *uint      `json:"graded_by,omitempty"`
}

// NewFileSubmissionResponse converts a model into a DTO.
func NewFileSubmissionResponse(model models.FileSubmission) FileSubmissionResponse {
	return FileSubmissionResponse{
		ID:               model.ID,
		StudentID:        model.StudentID,
		ChallengeID:      model.ChallengeID,
		AssignmentNumber: model.AssignmentNumber,
		FileName:         model.FileName,
		FileURL:          model.FileURL,
		FileType:         model.FileType,
		FileSize:         model.FileSize,
		Comments:         model.Comments,
		Score:            model.Score,
		Feedback:         model.Feedback,
		SubmittedAt:      model.SubmittedAt,
		GradedAt:         model.GradedAt,
		GradedBy:         model.GradedBy,
	}
}

// NewFileSubmissionResponseSlice converts a slice of models into DTOs.
func NewFileSubmissionResponseSlice(submissions []models.FileSubmission) []FileSubmissionResponse {
	responses := make([]FileSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewFileSubmissionResponse(submission))
	}

	return responses
}

// FileGradeRequest captures a tutor's manual grade for a file submission.
type FileGradeRequest struct {
	Score    float64 `json:"score" validate:"min=0,max=100"`
	Feedback string  `json:"feedback" validate:"omitempty,max=5000"`
}

// FileAccessRequest records a tutor or student opening a submission file.
type FileAccessRequest struct {
	AccessType string `json:"access_type" validate:"required,oneof=view download"`
}

// FileAccessResponse serializes a file access record.
type FileAccessResponse struct {
	ID           uint      `json:"id"`
	StudentID    uint      `json:"student_id"`
	SubmissionID uint      `json:"submission_id"`
	AccessType   string    `json:"access_type"`
	AccessedAt   time.Time `json:"accessed_at"`
}

// NewFileAccessResponse converts a model into a DTO.
func NewFileAccessResponse(model models.FileAccess) FileAccessResponse {
	return FileAccessResponse{
		ID:           model.ID,
		StudentID:    model.StudentID,
		SubmissionID: model.SubmissionID,
		AccessType:   string(model.AccessType),
		AccessedAt:   model.AccessedAt,
	}
}

// NewFileAccessResponseSlice converts a slice of models into DTOs.
func NewFileAccessResponseSlice(accesses []models.FileAccess) []FileAccessResponse {
	responses := make([]FileAccessResponse, 0, len(accesses))
	for _, access := range accesses {
		responses = append(responses, NewFileAccessResponse(access))
	}

	return responses
}
