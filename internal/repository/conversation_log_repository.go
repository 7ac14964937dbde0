package repository

import (
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
)

type ConversationLogRepository interface {
	Create(entry *model.ConversationLog) error
	UpdateFeedback(id string, feedback string) error
	FindRecent(limit int) ([]model.ConversationLog, error)
}

type conversationLogRepository struct {
	db *gorm.DB
}

func NewConversationLogRepository(db *gorm.DB) ConversationLogRepository {
	return &conversationLogRepository{db: db}
}

func (r *conversationLogRepository) Create(entry *model.ConversationLog) error {
	return r.db.Create(entry).Error
}

func (r *conversationLogRepository) UpdateFeedback(id string, feedback string) error {
	// Feedback is the only field that may change after creation.
	return r.db.Model(&model.ConversationLog{}).Where("id = ?", id).Update("feedback", feedback).Error
}

func (r *conversationLogRepository) FindRecent(limit int) ([]model.ConversationLog, error) {
	var entries []model.ConversationLog
	if limit <= 0 {
		limit = 50
	}
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
