package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Knowledge chunk types retrieved by the tutor pipeline.
const (
	KnowledgeBook     = "book"
	KnowledgeSyllabus = "syllabus"
)

// KnowledgeChunk is one vector-indexed slice of study material. The embedding
// is computed at ingest time and stored alongside the content.
type KnowledgeChunk struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	Embedding datatypes.JSON `json:"-" gorm:"not null"` // JSON array of float32
	Type      string         `json:"type" gorm:"not null;index"` // "book", "syllabus"
	Subject   string         `json:"subject,omitempty" gorm:"index"`
	BookName  string         `json:"book_name,omitempty"`
	Chapter   string         `json:"chapter,omitempty"`
	Page      int            `json:"page,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (k *KnowledgeChunk) EmbeddingVector() []float32 {
	var out []float32
	if len(k.Embedding) > 0 {
		_ = json.Unmarshal(k.Embedding, &out)
	}
	return out
}

func (k *KnowledgeChunk) SetEmbeddingVector(v []float32) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	k.Embedding = datatypes.JSON(raw)
}
