package repository

import (
	"errors"

	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
)

// ErrAttemptLocked is returned when a progress write targets an attempt that
// has already been completed.
var ErrAttemptLocked = errors.New("attempt is completed and locked")

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	FindByUserAndQuiz(userID string, quizID uint) (*model.Attempt, error)
	// UpdateProgress overwrites only the given columns, and only while the
	// attempt is not completed.
	UpdateProgress(userID string, quizID uint, fields map[string]interface{}) error
	// Save persists the full record. Used only for retake resets, which are
	// allowed to clear a completed attempt.
	Save(attempt *model.Attempt) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByUserAndQuiz(userID string, quizID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) Save(attempt *model.Attempt) error {
	return r.db.Save(attempt).Error
}

func (r *attemptRepository) UpdateProgress(userID string, quizID uint, fields map[string]interface{}) error {
	res := r.db.Model(&model.Attempt{}).
		Where("user_id = ? AND quiz_id = ? AND completed = ?", userID, quizID, false).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the attempt does not exist or it is already completed.
		var count int64
		r.db.Model(&model.Attempt{}).Where("user_id = ? AND quiz_id = ?", userID, quizID).Count(&count)
		if count > 0 {
			return ErrAttemptLocked
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}
