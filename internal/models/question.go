package models

import (
	"time"

	"gorm.io/datatypes"
)

// MCQQuestion belongs to the per-assignment question pool sampled by the MCQ
// grading engine.
type MCQQuestion struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	AssignmentNumber int                         `gorm:"not null;index" json:"assignment_number"`
	Question         string                      `gorm:"type:text;not null" json:"question"`
	Options          datatypes.JSONSlice[string] `gorm:"not null" json:"options"`
	CorrectAnswer    int                         `gorm:"not null" json:"correct_answer"`
	Explanation      string                      `gorm:"type:text" json:"explanation"`
	Difficulty       string                      `gorm:"size:16;not null;default:medium" json:"difficulty"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}
