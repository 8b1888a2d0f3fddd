package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
)

// ArchiveSubmissionRepository persists legacy assignment archive submissions.
type ArchiveSubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.ArchiveSubmission, error)
	GetByStudentAndAssignment(ctx context.Context, studentID uint, assignmentNumber int) (models.ArchiveSubmission, error)
	ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.ArchiveSubmission, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.ArchiveSubmission, error)
	ListPendingByAssignment(ctx context.Context, assignmentNumber int) ([]models.ArchiveSubmission, error)
	SumScoresByStudent(ctx context.Context, studentID uint) (float64, error)
	CountByAssignment(ctx context.Context, assignmentNumber int) (graded int64, total int64, err error)
	Create(ctx context.Context, submission *models.ArchiveSubmission) error
	Update(ctx context.Context, submission *models.ArchiveSubmission) error
}

type archiveSubmissionRepository struct {
	db *gorm.DB
}

// NewArchiveSubmissionRepository instantiates the repository.
func NewArchiveSubmissionRepository(db *gorm.DB) ArchiveSubmissionRepository {
	return &archiveSubmissionRepository{db: db}
}

func (r *archiveSubmissionRepository) GetByID(ctx context.Context, id uint) (models.ArchiveSubmission, error) {
	var submission models.ArchiveSubmission
	if err := r.db.WithContext(ctx).Preload("Student").First(&submission, id).Error; err != nil {
		return models.ArchiveSubmission{}, err
	}

	return submission, nil
}

func (r *archiveSubmissionRepository) GetByStudentAndAssignment(ctx context.Context, studentID uint, assignmentNumber int) (models.ArchiveSubmission, error) {
	var submission models.ArchiveSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("assignment_number = ?", assignmentNumber).
		Order("submitted_at DESC").
		First(&submission).Error; err != nil {
		return models.ArchiveSubmission{}, err
	}

	return submission, nil
}

func (r *archiveSubmissionRepository) ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.ArchiveSubmission, error) {
	var submissions []models.ArchiveSubmission
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assignment_number = ?", assignmentNumber).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *archiveSubmissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.ArchiveSubmission, error) {
	var submissions []models.ArchiveSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("assignment_number ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *archiveSubmissionRepository) ListPendingByAssignment(ctx context.Context, assignmentNumber int) ([]models.ArchiveSubmission, error) {
	var submissions []models.ArchiveSubmission
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Where("score IS NULL").
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *archiveSubmissionRepository) SumScoresByStudent(ctx context.Context, studentID uint) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&models.ArchiveSubmission{}).
		Where("student_id = ?", studentID).
		Where("score IS NOT NULL").
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *archiveSubmissionRepository) CountByAssignment(ctx context.Context, assignmentNumber int) (int64, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.ArchiveSubmission{}).
		Where("assignment_number = ?", assignmentNumber)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var graded int64
	if err := base.Session(&gorm.Session{}).Where("score IS NOT NULL").Count(&graded).Error; err != nil {
		return 0, 0, err
	}

	return graded, total, nil
}

func (r *archiveSubmissionRepository) Create(ctx context.Context, submission *models.ArchiveSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *archiveSubmissionRepository) Update(ctx context.Context, submission *models.ArchiveSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
