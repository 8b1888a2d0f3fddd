package models

import "time"

// FileSubmission is a student's artifact for a file-upload challenge. Unlike
// quiz and code submissions it may be replaced: a re-submission overwrites
// the file and resets all grading fields.
type FileSubmission struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	StudentID        uint       `gorm:"not null;uniqueIndex:idx_file_student_challenge" json:"student_id"`
	ChallengeID      string     `gorm:"size:64;not null;uniqueIndex:idx_file_student_challenge;index" json:"challenge_id"`
	AssignmentNumber int        `gorm:"not null;index" json:"assignment_number"`
	FileName         string     `gorm:"size:255;not null" json:"file_name"`
	FileURL          string     `gorm:"size:512;not null" json:"file_url"`
	FilePublicID     string     `gorm:"size:255" json:"-"`
	FileType         string     `gorm:"size:128" json:"file_type"`
	FileSize         int64      `gorm:"not null;default:0" json:"file_size"`
	Comments         string     `gorm:"type:text" json:"comments"`
	Score            *float64   `json:"score"`
	Feedback         string     `gorm:"type:text" json:"feedback"`
	SubmittedAt      time.Time  `gorm:"not null" json:"submitted_at"`
	GradedAt         *time.Time `json:"graded_at"`
	GradedBy         *uint      `json:"graded_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsGraded reports whether a tutor has scored the submission.
func (s FileSubmission) IsGraded() bool {
	return s.Score != nil
}
