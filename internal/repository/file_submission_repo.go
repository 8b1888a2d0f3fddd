package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
)

// FileSubmissionFilter narrows file submission queries.
type FileSubmissionFilter struct {
	StudentID        *uint
	AssignmentNumber *int
	Graded           *bool
}

// FileSubmissionRepository persists file-upload challenge submissions.
type FileSubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.FileSubmission, error)
	GetByStudentAndChallenge(ctx context.Context, studentID uint, challengeID string) (models.FileSubmission, error)
	ListByStudentAndChallenges(ctx context.Context, studentID uint, challengeIDs []string) ([]models.FileSubmission, error)
	List(ctx context.Context, filter FileSubmissionFilter) ([]models.FileSubmission, error)
	Create(ctx context.Context, submission *models.FileSubmission) error
	Update(ctx context.Context, submission *models.FileSubmission) error
}

type fileSubmissionRepository struct {
	db *gorm.DB
}

// NewFileSubmissionRepository instantiates the repository.
func NewFileSubmissionRepository(db *gorm.DB) FileSubmissionRepository {
	return &fileSubmissionRepository{db: db}
}

func (r *fileSubmissionRepository) GetByID(ctx context.Context, id uint) (models.FileSubmission, error) {
	var submission models.FileSubmission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.FileSubmission{}, err
	}

	return submission, nil
}

func (r *fileSubmissionRepository) GetByStudentAndChallenge(ctx context.Context, studentID uint, challengeID string) (models.FileSubmission, error) {
	var submission models.FileSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("challenge_id = ?", challengeID).
		First(&submission).Error; err != nil {
		return models.FileSubmission{}, err
	}

	return submission, nil
}

func (r *fileSubmissionRepository) ListByStudentAndChallenges(ctx context.Context, studentID uint, challengeIDs []string) ([]models.FileSubmission, error) {
	var submissions []models.FileSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("challenge_id IN ?", challengeIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *fileSubmissionRepository) List(ctx context.Context, filter FileSubmissionFilter) ([]models.FileSubmission, error) {
	query := r.db.WithContext(ctx).Model(&models.FileSubmission{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.AssignmentNumber != nil {
		query = query.Where("assignment_number = ?", *filter.AssignmentNumber)
	}
	if filter.Graded != nil {
		if *filter.Graded {
			query = query.Where("score IS NOT NULL")
		} else {
			query = query.Where("score IS NULL")
		}
	}

	var submissions []models.FileSubmission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *fileSubmissionRepository) Create(ctx context.Context, submission *models.FileSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *fileSubmissionRepository) Update(ctx context.Context, submission *models.FileSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
