package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChallengeSelection records which challenges a student committed to attempt
// for one assignment. The set is replaced wholesale on re-selection, never
// merged.
type ChallengeSelection struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	StudentID        uint                        `gorm:"not null;uniqueIndex:idx_selection_student_assignment" json:"student_id"`
	AssignmentNumber int                         `gorm:"not null;uniqueIndex:idx_selection_student_assignment" json:"assignment_number"`
	ChallengeIDs     datatypes.JSONSlice[string] `gorm:"not null" json:"challenge_ids"`
	SelectedAt       time.Time                   `json:"selected_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// Contains reports whether the given challenge is part of the selection.
func (s ChallengeSelection) Contains(challengeID string) bool {
	for _, id := range s.ChallengeIDs {
		if id == challengeID {
			return true
		}
	}
	return false
}
