package repository

import (
	"time"

	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
)

// SubmissionRepository owns the idempotency records and the three-part
// finalization commit. Finalize is the only write path that may mark an
// attempt completed.
type SubmissionRepository interface {
	FindByKey(key string) (*model.Submission, error)
	// Finalize persists the result, marks the attempt completed with zeroed
	// remaining time, and writes the idempotency record — all in a single
	// transaction. Partial application is never observable.
	Finalize(result *model.Result, submission *model.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) FindByKey(key string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.Where("idempotency_key = ?", key).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) Finalize(result *model.Result, submission *model.Submission) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		err := tx.Model(&model.Attempt{}).
			Where("user_id = ? AND quiz_id = ?", result.UserID, result.QuizID).
			Updates(map[string]interface{}{
				"completed":      true,
				"remaining_time": 0,
				"submitted_at":   now,
			}).Error
		if err != nil {
			return err
		}
		return tx.Create(submission).Error
	})
}
