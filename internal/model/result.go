package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Result is derived by the submission service and immutable after creation.
// Score counts exact matches plus grace-marked questions; Total is the quiz's
// question count at submission time, so unattempted questions count toward
// Total but never toward Score.
type Result struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        string         `json:"user_id" gorm:"not null;uniqueIndex:idx_result_user_quiz"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;uniqueIndex:idx_result_user_quiz"`
	Score         int            `json:"score" gorm:"not null"`
	Total         int            `json:"total" gorm:"not null"`
	Answers       datatypes.JSON `json:"answers"`   // snapshot of submitted answers
	Flags         datatypes.JSON `json:"flags"`     // review-flag state at submission
	TimeLogs      datatypes.JSON `json:"time_logs"` // per-question seconds spent
	AttemptNumber int            `json:"attempt_number" gorm:"not null;default:1"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
