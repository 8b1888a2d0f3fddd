package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
)

// CodingProblemRepository reads and writes the coding problem bank.
type CodingProblemRepository interface {
	GetByID(ctx context.Context, id uint) (models.CodingProblem, error)
	ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.CodingProblem, error)
	Create(ctx context.Context, problem *models.CodingProblem) error
	Update(ctx context.Context, problem *models.CodingProblem) error
	Delete(ctx context.Context, id uint) error
}

type codingProblemRepository struct {
	db *gorm.DB
}

// NewCodingProblemRepository instantiates the repository.
func NewCodingProblemRepository(db *gorm.DB) CodingProblemRepository {
	return &codingProblemRepository{db: db}
}

func (r *codingProblemRepository) GetByID(ctx context.Context, id uint) (models.CodingProblem, error) {
	var problem models.CodingProblem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.CodingProblem{}, err
	}

	return problem, nil
}

func (r *codingProblemRepository) ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.CodingProblem, error) {
	var problems []models.CodingProblem
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Order("id ASC").
		Find(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}

func (r *codingProblemRepository) Create(ctx context.Context, problem *models.CodingProblem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}

func (r *codingProblemRepository) Update(ctx context.Context, problem *models.CodingProblem) error {
	return r.db.WithContext(ctx).Save(problem).Error
}

func (r *codingProblemRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CodingProblem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
