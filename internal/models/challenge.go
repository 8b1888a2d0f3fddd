package models

import (
	"fmt"
	"time"
)

// ChallengeType is the closed set of gradable challenge kinds.
type ChallengeType string

const (
	ChallengeTypeFileUpload ChallengeType = "file_upload"
	ChallengeTypeMCQQuiz    ChallengeType = "mcq_quiz"
	ChallengeTypeCoding     ChallengeType = "coding_challenge"
)

// IsValid reports whether t is one of the known challenge types.
func (t ChallengeType) IsValid() bool {
	switch t {
	case ChallengeTypeFileUpload, ChallengeTypeMCQQuiz, ChallengeTypeCoding:
		return true
	}
	return false
}

// Slug returns the hyphenated form used in challenge identifiers.
func (t ChallengeType) Slug() string {
	switch t {
	case ChallengeTypeFileUpload:
		return "file-upload"
	case ChallengeTypeMCQQuiz:
		return "mcq-quiz"
	case ChallengeTypeCoding:
		return "coding-challenge"
	}
	return "unknown"
}

// Challenge is a gradable unit of work tied to an assignment number.
// The type is immutable after creation.
type Challenge struct {
	ID               uint          `gorm:"primaryKey" json:"-"`
	ChallengeID      string        `gorm:"size:64;uniqueIndex;not null" json:"id"`
	Type             ChallengeType `gorm:"size:32;not null;index:idx_challenge_assignment_type" json:"type"`
	AssignmentNumber int           `gorm:"not null;index:idx_challenge_assignment_type" json:"assignment_number"`
	Title            string        `gorm:"size:255;not null" json:"title"`
	Description      string        `gorm:"type:text;not null" json:"description"`
	MaxScore         float64       `gorm:"not null;default:15" json:"max_score"`
	TimeLimitMinutes *int          `json:"time_limit_minutes"`
	Active           bool          `gorm:"not null" json:"active"`
	QuestionCount    int           `gorm:"not null;default:10" json:"question_count"`
	ProblemID        *uint         `json:"problem_id"`
	CreatedBy        uint          `json:"created_by"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// BuildChallengeID derives the stable slug identifier for a new challenge.
// Ordinal is one-based within the (assignment, type) pair.
func BuildChallengeID(t ChallengeType, assignmentNumber int, ordinal int64) string {
	return fmt.Sprintf("%s-%d-%d", t.Slug(), assignmentNumber, ordinal)
}
