package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Access types gate who may attempt a quiz. Series/paid quizzes are re-checked
// against active enrollments at submission time, not only at quiz start.
const (
	AccessPublic = "public"
	AccessSeries = "series"
	AccessPaid   = "paid"
)

// Source distinguishes staff-authored quizzes from self-generated mock quizzes.
// Analytics aggregates are kept in separate namespaces per source.
const (
	SourceAdmin = "admin"
	SourceMock  = "mock"
)

type Quiz struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Title           string         `json:"title" gorm:"not null"`
	Subject         string         `json:"subject,omitempty"`
	AccessType      string         `json:"access_type" gorm:"not null;default:'public'"` // "public", "series", "paid"
	Source          string         `json:"source" gorm:"not null;default:'admin'"`       // "admin", "mock"
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	Published       bool           `json:"published" gorm:"not null;default:false"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Series          []QuizSeries   `json:"series,omitempty" gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Question is the authoritative answer-key snapshot for one quiz question.
// CorrectAnswer and GraceMark never leave the server in user-facing DTOs.
type Question struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;index"`
	Position      int            `json:"position" gorm:"not null"`
	Text          string         `json:"text" gorm:"type:text;not null"`
	Options       datatypes.JSON `json:"options" gorm:"not null"` // JSON array of option strings
	CorrectAnswer string         `json:"correct_answer" gorm:"not null"`
	GraceMark     bool           `json:"grace_mark" gorm:"not null;default:false"`
	Subject       string         `json:"subject,omitempty" gorm:"index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// OptionList decodes the stored options array. A malformed column yields an
// empty slice rather than an error.
func (q *Question) OptionList() []string {
	var opts []string
	if len(q.Options) > 0 {
		_ = json.Unmarshal(q.Options, &opts)
	}
	return opts
}

// QuizSeries links a quiz to a series that gates access to it.
type QuizSeries struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	QuizID   uint   `json:"quiz_id" gorm:"not null;index"`
	SeriesID string `json:"series_id" gorm:"not null;index"`
}
