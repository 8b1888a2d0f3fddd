package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
)

// CodeSubmissionRepository persists coding challenge submissions.
type CodeSubmissionRepository interface {
	GetByStudentAndChallenge(ctx context.Context, studentID uint, challengeID string) (models.CodeSubmission, error)
	ListByStudentAndChallenges(ctx context.Context, studentID uint, challengeIDs []string) ([]models.CodeSubmission, error)
	ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.CodeSubmission, error)
	Create(ctx context.Context, submission *models.CodeSubmission) error
}

type codeSubmissionRepository struct {
	db *gorm.DB
}

// NewCodeSubmissionRepository instantiates the repository.
func NewCodeSubmissionRepository(db *gorm.DB) CodeSubmissionRepository {
	return &codeSubmissionRepository{db: db}
}

func (r *codeSubmissionRepository) GetByStudentAndChallenge(ctx context.Context, studentID uint, challengeID string) (models.CodeSubmission, error) {
	var submission models.CodeSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("challenge_id = ?", challengeID).
		First(&submission).Error; err != nil {
		return models.CodeSubmission{}, err
	}

	return submission, nil
}

func (r *codeSubmissionRepository) ListByStudentAndChallenges(ctx context.Context, studentID uint, challengeIDs []string) ([]models.CodeSubmission, error) {
	var submissions []models.CodeSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("challenge_id IN ?", challengeIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *codeSubmissionRepository) ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.CodeSubmission, error) {
	var submissions []models.CodeSubmission
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *codeSubmissionRepository) Create(ctx context.Context, submission *models.CodeSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}
