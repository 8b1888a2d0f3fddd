package models

import "time"

// FileAccessType enumerates the tracked access kinds.
type FileAccessType string

const (
	FileAccessView     FileAccessType = "view"
	FileAccessDownload FileAccessType = "download"
)

// FileAccess is an append-only audit record of a student touching a file
// submission. The (student, submission, type) triple is unique; repeated
// access refreshes AccessedAt instead of inserting a new row.
type FileAccess struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	StudentID    uint           `gorm:"not null;uniqueIndex:idx_access_student_submission_type" json:"student_id"`
	SubmissionID uint           `gorm:"not null;uniqueIndex:idx_access_student_submission_type" json:"submission_id"`
	AccessType   FileAccessType `gorm:"size:16;not null;uniqueIndex:idx_access_student_submission_type" json:"access_type"`
	AccessedAt   time.Time      `gorm:"not null" json:"accessed_at"`
	CreatedAt    time.Time      `json:"created_at"`
}
