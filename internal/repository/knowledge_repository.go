package repository

import (
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
)

type KnowledgeRepository interface {
	Create(chunk *model.KnowledgeChunk) error
	// FindByType returns candidates of one chunk type, optionally narrowed to a
	// subject. Ranking by embedding distance happens in the service layer.
	FindByType(chunkType, subject string) ([]model.KnowledgeChunk, error)
}

type knowledgeRepository struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

func (r *knowledgeRepository) Create(chunk *model.KnowledgeChunk) error {
	return r.db.Create(chunk).Error
}

func (r *knowledgeRepository) FindByType(chunkType, subject string) ([]model.KnowledgeChunk, error) {
	var chunks []model.KnowledgeChunk
	query := r.db.Where("type = ?", chunkType)
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	err := query.Find(&chunks).Error
	return chunks, err
}
