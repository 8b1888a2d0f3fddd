package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/praxislab/praxis-api/internal/models"
)

// GradingConfigRepository persists per-assignment auto-grading configuration.
type GradingConfigRepository interface {
	Get(ctx context.Context, assignmentNumber int, challengeType models.ChallengeType) (models.AutoGradingConfig, error)
	ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.AutoGradingConfig, error)
	Upsert(ctx context.Context, config *models.AutoGradingConfig) error
}

type gradingConfigRepository struct {
	db *gorm.DB
}

// NewGradingConfigRepository instantiates the repository.
func NewGradingConfigRepository(db *gorm.DB) GradingConfigRepository {
	return &gradingConfigRepository{db: db}
}

func (r *gradingConfigRepository) Get(ctx context.Context, assignmentNumber int, challengeType models.ChallengeType) (models.AutoGradingConfig, error) {
	var config models.AutoGradingConfig
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Where("challenge_type = ?", challengeType).
		First(&config).Error; err != nil {
		return models.AutoGradingConfig{}, err
	}

	return config, nil
}

func (r *gradingConfigRepository) ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.AutoGradingConfig, error) {
	var configs []models.AutoGradingConfig
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Order("challenge_type ASC").
		Find(&configs).Error; err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *gradingConfigRepository) Upsert(ctx context.Context, config *models.AutoGradingConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_number"}, {Name: "challenge_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "criteria", "updated_at"}),
		}).
		Create(config).Error
}
