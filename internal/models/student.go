package models

import "time"

// Student represents a learner. UserID links to the auth collaborator's
// principal; TotalPoints is recomputed from graded archive submissions.
type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	SerialNumber string    `gorm:"size:64" json:"serial_number"`
	TotalPoints  float64   `gorm:"not null;default:0" json:"total_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
