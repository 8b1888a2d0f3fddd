package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizSubmission is a student's single graded attempt at an MCQ challenge.
// The (student, challenge) pair is unique at the storage layer; the row is
// immutable once written.
type QuizSubmission struct {
	ID               uint                      `gorm:"primaryKey" json:"id"`
	StudentID        uint                      `gorm:"not null;uniqueIndex:idx_quiz_student_challenge" json:"student_id"`
	ChallengeID      string                    `gorm:"size:64;not null;uniqueIndex:idx_quiz_student_challenge;index" json:"challenge_id"`
	AssignmentNumber int                       `gorm:"not null;index" json:"assignment_number"`
	Answers          datatypes.JSONSlice[int]  `gorm:"not null" json:"answers"`
	QuestionIDs      datatypes.JSONSlice[uint] `gorm:"not null" json:"question_ids"`
	Score            float64                   `gorm:"not null" json:"score"`
	MaxScore         float64                   `gorm:"not null" json:"max_score"`
	CorrectAnswers   int                       `gorm:"not null" json:"correct_answers"`
	TotalQuestions   int                       `gorm:"not null" json:"total_questions"`
	TimeSpentMinutes int                       `gorm:"not null" json:"time_spent_minutes"`
	StartedAt        time.Time                 `gorm:"not null" json:"started_at"`
	SubmittedAt      time.Time                 `gorm:"not null" json:"submitted_at"`
	Feedback         string                    `gorm:"type:text" json:"feedback"`
	CreatedAt        time.Time                 `json:"created_at"`
}
