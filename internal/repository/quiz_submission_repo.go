package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
)

// QuizSubmissionRepository persists MCQ quiz submissions.
type QuizSubmissionRepository interface {
	GetByStudentAndChallenge(ctx context.Context, studentID uint, challengeID string) (models.QuizSubmission, error)
	ListByStudentAndChallenges(ctx context.Context, studentID uint, challengeIDs []string) ([]models.QuizSubmission, error)
	ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.QuizSubmission, error)
	Create(ctx context.Context, submission *models.QuizSubmission) error
}

type quizSubmissionRepository struct {
	db *gorm.DB
}

// NewQuizSubmissionRepository instantiates the repository.
func NewQuizSubmissionRepository(db *gorm.DB) QuizSubmissionRepository {
	return &quizSubmissionRepository{db: db}
}

func (r *quizSubmissionRepository) GetByStudentAndChallenge(ctx context.Context, studentID uint, challengeID string) (models.QuizSubmission, error) {
	var submission models.QuizSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("challenge_id = ?", challengeID).
		First(&submission).Error; err != nil {
		return models.QuizSubmission{}, err
	}

	return submission, nil
}

func (r *quizSubmissionRepository) ListByStudentAndChallenges(ctx context.Context, studentID uint, challengeIDs []string) ([]models.QuizSubmission, error) {
	var submissions []models.QuizSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("challenge_id IN ?", challengeIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *quizSubmissionRepository) ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.QuizSubmission, error) {
	var submissions []models.QuizSubmission
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *quizSubmissionRepository) Create(ctx context.Context, submission *models.QuizSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}
