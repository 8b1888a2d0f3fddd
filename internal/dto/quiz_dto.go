package dto

import (
	"time"

	"github.com/praxislab/praxis-api/internal/models"
)

// QuizQuestionResponse is a question as presented to a student: the correct
// answer index and explanation are never serialized here.
type QuizQuestionResponse struct {
	ID         uint     `json:"id"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
}

// NewQuizQuestionResponse strips grading fields from a question model.
func NewQuizQuestionResponse(model models.MCQQuestion) QuizQuestionResponse {
	return QuizQuestionResponse{
		ID:         model.ID,
		Question:   model.Question,
		Options:    model.Options,
		Difficulty: model.Difficulty,
	}
}

// NewQuizQuestionResponseSlice converts a slice of question models.
func NewQuizQuestionResponseSlice(questions []models.MCQQuestion) []QuizQuestionResponse {
	responses := make([]QuizQuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuizQuestionResponse(question))
	}

	return responses
}

// QuizStartResponse is the payload returned when a student opens a quiz.
type QuizStartResponse struct {
	ChallengeID      string                 `json:"challenge_id"`
	Title            string                 `json:"title"`
	TimeLimitMinutes *int                   `json:"time_limit_minutes,omitempty"`
	Questions        []QuizQuestionResponse `json:"questions"`
	StartedAt        time.Time              `json:"started_at"`
}

// QuizSubmitRequest captures a student's answer sheet.
type QuizSubmitRequest struct {
	Answers          []int      `json:"answers" validate:"required,min=1"`
	TimeSpentMinutes int        `json:"time_spent_minutes" validate:"omitempty,min=0"`
	StartedAt        *time.Time `json:"started_at"`
}

// QuizResultResponse serializes a graded quiz submission.
type QuizResultResponse struct {
	ID               uint      `json:"id"`
	ChallengeID      string    `json:"challenge_id"`
	Score            float64   `json:"score"`
	MaxScore         float64   `json:"max_score"`
	CorrectAnswers   int       `json:"correct_answers"`
	TotalQuestions   int       `json:"total_questions"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	Feedback         string    `json:"feedback"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// NewQuizResultResponse converts a submission model into a DTO.
func NewQuizResultResponse(model models.QuizSubmission) QuizResultResponse {
	return QuizResultResponse{
		ID:               model.ID,
		ChallengeID:      model.ChallengeID,
		Score:            model.Score,
		MaxScore:         model.MaxScore,
		CorrectAnswers:   model.CorrectAnswers,
		TotalQuestions:   model.TotalQuestions,
		TimeSpentMinutes: model.TimeSpentMinutes,
		Feedback:         model.Feedback,
		SubmittedAt:      model.SubmittedAt,
	}
}

// QuestionCreateRequest captures the payload for authoring a question.
type QuestionCreateRequest struct {
	AssignmentNumber int      `json:"assignment_number" validate:"required,min=1"`
	Question         string   `json:"question" validate:"required,min=3"`
	Options          []string `json:"options" validate:"required,min=2"`
	CorrectAnswer    int      `json:"correct_answer" validate:"min=0"`
	Explanation      string   `json:"explanation"`
	Difficulty       string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// QuestionResponse serializes a question with grading fields for admins.
type QuestionResponse struct {
	ID               uint      `json:"id"`
	AssignmentNumber int       `json:"assignment_number"`
	Question         string    `json:"question"`
	Options          []string  `json:"options"`
	CorrectAnswer    int       `json:"correct_answer"`
	Explanation      string    `json:"explanation"`
	Difficulty       string    `json:"difficulty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewQuestionResponse converts a question model into an admin DTO.
func NewQuestionResponse(model models.MCQQuestion) QuestionResponse {
	return QuestionResponse{
		ID:               model.ID,
		AssignmentNumber: model.AssignmentNumber,
		Question:         model.Question,
		Options:          model.Options,
		CorrectAnswer:    model.CorrectAnswer,
		Explanation:      model.Explanation,
		Difficulty:       model.Difficulty,
		CreatedAt:        model.CreatedAt,
	}
}

// NewQuestionResponseSlice converts a slice of question models for admins.
func NewQuestionResponseSlice(questions []models.MCQQuestion) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}

	return responses
}
