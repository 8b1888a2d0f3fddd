package models

import (
	"time"

	"gorm.io/datatypes"
)

// CodeTestResult is the persisted outcome of one test case run. Hidden cases
// store masked expected/actual output.
type CodeTestResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	Passed         bool   `json:"passed"`
	Error          string `json:"error,omitempty"`
}

// CodeSubmission is a student's single graded attempt at a coding challenge.
// Immutable once written; duplicates are rejected by a unique index.
type CodeSubmission struct {
	ID               uint                                `gorm:"primaryKey" json:"id"`
	StudentID        uint                                `gorm:"not null;uniqueIndex:idx_code_student_challenge" json:"student_id"`
	ChallengeID      string                              `gorm:"size:64;not null;uniqueIndex:idx_code_student_challenge;index" json:"challenge_id"`
	AssignmentNumber int                                 `gorm:"not null;index" json:"assignment_number"`
	ProblemID        uint                                `gorm:"not null" json:"problem_id"`
	Code             string                              `gorm:"type:text;not null" json:"code"`
	Language         string                              `gorm:"size:32;not null;default:javascript" json:"language"`
	Score            float64                             `gorm:"not null" json:"score"`
	MaxScore         float64                             `gorm:"not null" json:"max_score"`
	PassedTests      int                                 `gorm:"not null" json:"passed_tests"`
	TotalTests       int                                 `gorm:"not null" json:"total_tests"`
	TestResults      datatypes.JSONSlice[CodeTestResult] `json:"test_results"`
	TimeSpentMinutes int                                 `gorm:"not null" json:"time_spent_minutes"`
	StartedAt        time.Time                           `gorm:"not null" json:"started_at"`
	SubmittedAt      time.Time                           `gorm:"not null" json:"submitted_at"`
	Feedback         string                              `gorm:"type:text" json:"feedback"`
	CreatedAt        time.Time                           `json:"created_at"`
}
