package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradingCriteria are the tunable thresholds applied by auto-grading for one
// (assignment, challenge type) pair.
type GradingCriteria struct {
	PassingScore        float64 `json:"passing_score"`
	TimeWeighting       float64 `json:"time_weighting"`
	PenaltyForIncorrect float64 `json:"penalty_for_incorrect"`
}

// DefaultGradingCriteria returns the thresholds used when no configuration
// row exists.
func DefaultGradingCriteria() GradingCriteria {
	return GradingCriteria{
		PassingScore:        60,
		TimeWeighting:       0.1,
		PenaltyForIncorrect: 0.25,
	}
}

// AutoGradingConfig stores grading criteria keyed by assignment number and
// challenge type.
type AutoGradingConfig struct {
	ID               uint                                `gorm:"primaryKey" json:"id"`
	AssignmentNumber int                                 `gorm:"not null;uniqueIndex:idx_grading_assignment_type" json:"assignment_number"`
	ChallengeType    ChallengeType                       `gorm:"size:32;not null;uniqueIndex:idx_grading_assignment_type" json:"challenge_type"`
	Criteria         datatypes.JSONType[GradingCriteria] `gorm:"not null" json:"criteria"`
	Enabled          bool                                `gorm:"not null;default:true" json:"enabled"`
	CreatedBy        uint                                `json:"created_by"`
	CreatedAt        time.Time                           `json:"created_at"`
	UpdatedAt        time.Time                           `json:"updated_at"`
}
