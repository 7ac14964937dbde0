package repository

import (
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(quiz *model.Quiz) error
	FindByID(id uint) (*model.Quiz, error)
	FindByIDWithQuestions(id uint) (*model.Quiz, error)
	FindAllPublishedWithQuestionCount() ([]struct {
		model.Quiz
		QuestionCount int
	}, error)
	SetPublished(id uint, published bool) error
	SetGraceMark(questionID uint, graceMark bool) error
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(quiz *model.Quiz) error {
	// GORM creates associated questions and series rows in the same call.
	return r.db.Create(quiz).Error
}

func (r *quizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.db.Preload("Series").First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.
		Preload("Series").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindAllPublishedWithQuestionCount() ([]struct {
	model.Quiz
	QuestionCount int
}, error) {
	var results []struct {
		model.Quiz
		QuestionCount int
	}
	err := r.db.Model(&model.Quiz{}).
		Select("quizzes.*, (SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id AND questions.deleted_at IS NULL) as question_count").
		Where("quizzes.published = ? AND quizzes.deleted_at IS NULL", true).
		Order("quizzes.created_at DESC").
		Scan(&results).Error
	return results, err
}

func (r *quizRepository) SetPublished(id uint, published bool) error {
	return r.db.Model(&model.Quiz{}).Where("id = ?", id).Update("published", published).Error
}

func (r *quizRepository) SetGraceMark(questionID uint, graceMark bool) error {
	return r.db.Model(&model.Question{}).Where("id = ?", questionID).Update("grace_mark", graceMark).Error
}
