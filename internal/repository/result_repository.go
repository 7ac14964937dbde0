package repository

import (
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
)

type ResultRepository interface {
	FindByUserAndQuiz(userID string, quizID uint) (*model.Result, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) FindByUserAndQuiz(userID string, quizID uint) (*model.Result, error) {
	var result model.Result
	err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}
