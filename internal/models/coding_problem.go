package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestCase is one input/output pair a coding submission is run against.
// Hidden cases never expose their expected output to students.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Hidden         bool   `json:"hidden"`
}

// CodingProblem is an authored problem referenced by coding challenges.
type CodingProblem struct {
	ID               uint                          `gorm:"primaryKey" json:"id"`
	AssignmentNumber int                           `gorm:"not null;index" json:"assignment_number"`
	Title            string                        `gorm:"size:255;not null" json:"title"`
	Description      string                        `gorm:"type:text;not null" json:"description"`
	Difficulty       string                        `gorm:"size:16;not null;default:medium" json:"difficulty"`
	TimeLimitMinutes int                           `gorm:"not null;default:45" json:"time_limit_minutes"`
	StarterCode      string                        `gorm:"type:text" json:"starter_code"`
	Constraints      datatypes.JSONSlice[string]   `json:"constraints"`
	TestCases        datatypes.JSONSlice[TestCase] `gorm:"not null" json:"test_cases"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
}

// VisibleTestCases returns the cases shown to students with expected output.
func (p CodingProblem) VisibleTestCases() []TestCase {
	var visible []TestCase
	for _, tc := range p.TestCases {
		if !tc.Hidden {
			visible = append(visible, tc)
		}
	}
	return visible
}

// HiddenTestCases returns the withheld cases.
func (p CodingProblem) HiddenTestCases() []TestCase {
	var hidden []TestCase
	for _, tc := range p.TestCases {
		if tc.Hidden {
			hidden = append(hidden, tc)
		}
	}
	return hidden
}
