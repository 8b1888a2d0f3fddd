package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/praxislab/praxis-api/internal/models"
)

// QuestionRepository reads and writes the MCQ question pool.
type QuestionRepository interface {
	Sample(ctx context.Context, assignmentNumber int, size int) ([]models.MCQQuestion, error)
	FirstN(ctx context.Context, assignmentNumber int, n int) ([]models.MCQQuestion, error)
	ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.MCQQuestion, error)
	GetByID(ctx context.Context, id uint) (models.MCQQuestion, error)
	Create(ctx context.Context, question *models.MCQQuestion) error
	Update(ctx context.Context, question *models.MCQQuestion) error
	Delete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// Sample draws up to size questions in random order, without replacement.
func (r *questionRepository) Sample(ctx context.Context, assignmentNumber int, size int) ([]models.MCQQuestion, error) {
	var questions []models.MCQQuestion
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Order("RANDOM()").
		Limit(size).
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

// FirstN returns the first n questions for the assignment in insertion order.
// This is the set grading runs against.
func (r *questionRepository) FirstN(ctx context.Context, assignmentNumber int, n int) ([]models.MCQQuestion, error) {
	var questions []models.MCQQuestion
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Order("id ASC").
		Limit(n).
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) ListByAssignment(ctx context.Context, assignmentNumber int) ([]models.MCQQuestion, error) {
	var questions []models.MCQQuestion
	if err := r.db.WithContext(ctx).
		Where("assignment_number = ?", assignmentNumber).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.MCQQuestion, error) {
	var question models.MCQQuestion
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.MCQQuestion{}, err
	}

	return question, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.MCQQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.MCQQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.MCQQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
