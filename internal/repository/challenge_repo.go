package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
)

// ChallengeFilter narrows challenge catalog queries.
type ChallengeFilter struct {
	AssignmentNumber *int
	Type             *models.ChallengeType
	ActiveOnly       bool
}

// ChallengeRepository defines persistence operations for the challenge catalog.
type ChallengeRepository interface {
	List(ctx context.Context, filter ChallengeFilter) ([]models.Challenge, error)
	GetByChallengeID(ctx context.Context, challengeID string) (models.Challenge, error)
	GetByChallengeIDAndType(ctx context.Context, challengeID string, t models.ChallengeType) (models.Challenge, error)
	FindActiveByIDs(ctx context.Context, assignmentNumber int, challengeIDs []string) ([]models.Challenge, error)
	ListIDsByAssignmentAndType(ctx context.Context, assignmentNumber int, t models.ChallengeType) ([]string, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	Update(ctx context.Context, challenge *models.Challenge) error
	Delete(ctx context.Context, challengeID string) error
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository instantiates a GORM-backed challenge repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) List(ctx context.Context, filter ChallengeFilter) ([]models.Challenge, error) {
	query := r.db.WithContext(ctx).Model(&models.Challenge{})

	if filter.AssignmentNumber != nil {
		query = query.Where("assignment_number = ?", *filter.AssignmentNumber)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	// Sorted by type for deterministic client rendering.
	var challenges []models.Challenge
	if err := query.Order("type ASC, challenge_id ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *challengeRepository) GetByChallengeID(ctx context.Context, challengeID string) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).Where("challenge_id = ?", challengeID).First(&challenge).Error; err != nil {
		return models.Challenge{}, err
	}

	return challenge, nil
}

func (r *challengeRepository) GetByChallengeIDAndType(ctx context.Context, challengeID string, t models.ChallengeType) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Where("type = ?", t).
		First(&challenge).Error; err != nil {
		return models.Challenge{}, err
	}

	return challenge, nil
}

func (r *challengeRepository) FindActiveByIDs(ctx context.Context, assignmentNumber int, challengeIDs []string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := r.db.WithContext(ctx).
		Where("challenge_id IN ?", challengeIDs).
		Where("assignment_number = ?", assignmentNumber).
		Where("active = ?", true).
		Find(&challenges).Error; err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *challengeRepository) ListIDsByAssignmentAndType(ctx context.Context, assignmentNumber int, t models.ChallengeType) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("assignment_number = ?", assignmentNumber).
		Where("type = ?", t).
		Pluck("challenge_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) Update(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}

func (r *challengeRepository) Delete(ctx context.Context, challengeID string) error {
	result := r.db.WithContext(ctx).Where("challenge_id = ?", challengeID).Delete(&models.Challenge{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
