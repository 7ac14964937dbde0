package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt is the per-user, per-quiz mutable progress record. Once Completed is
// true the record is terminal: no further progress writes are accepted.
type Attempt struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        string         `json:"user_id" gorm:"not null;uniqueIndex:idx_attempt_user_quiz"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;uniqueIndex:idx_attempt_user_quiz"`
	Answers       datatypes.JSON `json:"answers"` // map question-id -> selected option
	Flags         datatypes.JSON `json:"flags"`   // map question-id -> marked-for-review
	CurrentIndex  int            `json:"current_index"`
	RemainingTime int            `json:"remaining_time"` // seconds, non-increasing while running
	Completed     bool           `json:"completed" gorm:"not null;default:false"`
	AttemptNumber int            `json:"attempt_number" gorm:"not null;default:1"`
	StartedAt     time.Time      `json:"started_at"`
	SubmittedAt   *time.Time     `json:"submitted_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// AnswerMap decodes the stored answers, defaulting to an empty map on
// missing/malformed data so read sites never deal with nulls.
func (a *Attempt) AnswerMap() map[string]string {
	out := make(map[string]string)
	if len(a.Answers) > 0 {
		_ = json.Unmarshal(a.Answers, &out)
	}
	return out
}

func (a *Attempt) FlagMap() map[string]bool {
	out := make(map[string]bool)
	if len(a.Flags) > 0 {
		_ = json.Unmarshal(a.Flags, &out)
	}
	return out
}

func EncodeJSONMap(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
