package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/praxislab/praxis-api/internal/models"
)

// SelectionRepository persists challenge selections.
type SelectionRepository interface {
	Get(ctx context.Context, studentID uint, assignmentNumber int) (models.ChallengeSelection, error)
	Upsert(ctx context.Context, selection *models.ChallengeSelection) error
}

type selectionRepository struct {
	db *gorm.DB
}

// NewSelectionRepository instantiates the repository.
func NewSelectionRepository(db *gorm.DB) SelectionRepository {
	return &selectionRepository{db: db}
}

func (r *selectionRepository) Get(ctx context.Context, studentID uint, assignmentNumber int) (models.ChallengeSelection, error) {
	var selection models.ChallengeSelection
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("assignment_number = ?", assignmentNumber).
		First(&selection).Error; err != nil {
		return models.ChallengeSelection{}, err
	}

	return selection, nil
}

func (r *selectionRepository) Upsert(ctx context.Context, selection *models.ChallengeSelection) error {
	// Wholesale replace: a conflicting row gets its challenge id set and
	// timestamp overwritten, never merged.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "assignment_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"challenge_ids", "selected_at", "updated_at"}),
	}).Create(selection).Error
}
