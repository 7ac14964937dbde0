package repository

import (
	"errors"

	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsRepository serializes read-modify-write cycles on a user's aggregate
// row. Concurrent submissions for the same user queue on the row lock instead
// of losing updates.
type StatsRepository interface {
	FindByUserAndSource(userID, source string) (*model.UserStats, error)
	UpdateWithLock(userID, source string, mutate func(stats *model.UserStats)) error
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) FindByUserAndSource(userID, source string) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.Where("user_id = ? AND source = ?", userID, source).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *statsRepository) UpdateWithLock(userID, source string, mutate func(stats *model.UserStats)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var stats model.UserStats
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND source = ?", userID, source).
			First(&stats).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stats = model.UserStats{UserID: userID, Source: source}
			if err := tx.Create(&stats).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		mutate(&stats)
		return tx.Save(&stats).Error
	})
}
