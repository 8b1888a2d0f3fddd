package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/praxislab/praxis-api/internal/models"
)

// FileAccessRepository records which students opened which submission files.
type FileAccessRepository interface {
	Record(ctx context.Context, access *models.FileAccess) error
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.FileAccess, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.FileAccess, error)
}

type fileAccessRepository struct {
	db *gorm.DB
}

// NewFileAccessRepository instantiates the repository.
func NewFileAccessRepository(db *gorm.DB) FileAccessRepository {
	return &fileAccessRepository{db: db}
}

// Record upserts on the (student, submission, access type) triple so repeat
// opens refresh the timestamp instead of accumulating rows.
func (r *fileAccessRepository) Record(ctx context.Context, access *models.FileAccess) error {
	if access.AccessedAt.IsZero() {
		access.AccessedAt = time.Now()
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "submission_id"}, {Name: "access_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"accessed_at", "updated_at"}),
		}).
		Create(access).Error
}

func (r *fileAccessRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.FileAccess, error) {
	var accesses []models.FileAccess
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("accessed_at DESC").
		Find(&accesses).Error; err != nil {
		return nil, err
	}

	return accesses, nil
}

func (r *fileAccessRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.FileAccess, error) {
	var accesses []models.FileAccess
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("accessed_at DESC").
		Find(&accesses).Error; err != nil {
		return nil, err
	}

	return accesses, nil
}
