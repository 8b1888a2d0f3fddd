package dto

import "time"

// ChallengeProgressEntry reports one selected challenge's completion state.
type ChallengeProgressEntry struct {
	ChallengeID string     `json:"challenge_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Started     bool       `json:"started"`
	Completed   bool       `json:"completed"`
	Score       *float64   `json:"score"`
	MaxScore    float64    `json:"max_score"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// StudentProgressResponse aggregates a student's assignment progress.
type StudentProgressResponse struct {
	StudentID         uint                     `json:"student_id"`
	AssignmentNumber  int                      `json:"assignment_number"`
	Selected          int                      `json:"selected"`
	Completed         int                      `json:"completed"`
	CompletionPercent float64                  `json:"completion_percent"`
	TotalScore        float64                  `json:"total_score"`
	MaxPossibleScore  float64                  `json:"max_possible_score"`
	Challenges        []ChallengeProgressEntry `json:"challenges"`
}

// AdminProgressRow is one student's aggregate in the admin overview.
type AdminProgressRow struct {
	StudentID         uint    `json:"student_id"`
	FullName          string  `json:"full_name"`
	SerialNumber      string  `json:"serial_number"`
	Selected          int     `json:"selected"`
	Completed         int     `json:"completed"`
	CompletionPercent float64 `json:"completion_percent"`
	TotalScore        float64 `json:"total_score"`
}

// AdminProgressResponse is the per-assignment admin overview.
type AdminProgressResponse struct {
	AssignmentNumber int                `json:"assignment_number"`
	Students         []AdminProgressRow `json:"students"`
}

// AssignmentStatisticsResponse summarizes submissions for one assignment.
type AssignmentStatisticsResponse struct {
	AssignmentNumber  int            `json:"assignment_number"`
	TotalSubmissions  int64          `json:"total_submissions"`
	GradedSubmissions int64          `json:"graded_submissions"`
	PendingGrading    int64          `json:"pending_grading"`
	AverageScore      float64        `json:"average_score"`
	ByType            map[string]int `json:"by_type"`
	GeneratedAt       time.Time      `json:"generated_at"`
}
