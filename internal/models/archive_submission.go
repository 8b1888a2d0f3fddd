package models

import (
	"time"

	"gorm.io/datatypes"
)

// RubricBreakdown holds the per-component scores produced by the archive
// auto-grader. The total is capped at 30.
type RubricBreakdown struct {
	Structure     float64 `json:"structure"`
	CodeQuality   float64 `json:"code_quality"`
	Functionality float64 `json:"functionality"`
	Documentation float64 `json:"documentation"`
}

// ArchiveSubmission is the legacy whole-assignment submission path: one
// archive per student per assignment number, auto-graded on a 0-30 scale.
type ArchiveSubmission struct {
	ID               uint                                `gorm:"primaryKey" json:"id"`
	StudentID        uint                                `gorm:"not null;index:idx_archive_student_assignment" json:"student_id"`
	AssignmentNumber int                                 `gorm:"not null;index:idx_archive_student_assignment" json:"assignment_number"`
	Title            string                              `gorm:"size:255;not null" json:"title"`
	Description      string                              `gorm:"type:text" json:"description"`
	FileName         string                              `gorm:"size:255;not null" json:"file_name"`
	FileURL          string                              `gorm:"size:512;not null" json:"file_url"`
	Score            *float64                            `json:"score"`
	Feedback         string                              `gorm:"type:text" json:"feedback"`
	Rubric           datatypes.JSONType[RubricBreakdown] `json:"rubric"`
	SubmittedAt      time.Time                           `gorm:"not null" json:"submitted_at"`
	GradedAt         *time.Time                          `json:"graded_at"`
	GradedBy         *uint                               `json:"graded_by"`
	CreatedAt        time.Time                           `json:"created_at"`
	UpdatedAt        time.Time                           `json:"updated_at"`
	Student          Student                             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether the submission carries a final score.
func (s ArchiveSubmission) IsGraded() bool {
	return s.Score != nil
}
