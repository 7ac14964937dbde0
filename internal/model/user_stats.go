package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SubjectStats is the per-subject slice of a user's running aggregates.
type SubjectStats struct {
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Wrong     int     `json:"wrong"`
	Accuracy  float64 `json:"accuracy"`
}

// UserStats holds running aggregates for one user within one source namespace
// ("admin" quizzes vs self-authored "mock" quizzes). Updated by the analytics
// updater under a row lock so concurrent submissions serialize instead of
// losing updates.
type UserStats struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          string         `json:"user_id" gorm:"not null;uniqueIndex:idx_stats_user_source"`
	Source          string         `json:"source" gorm:"not null;uniqueIndex:idx_stats_user_source"` // "admin", "mock"
	TotalQuizzes    int            `json:"total_quizzes"`
	TotalQuestions  int            `json:"total_questions"`
	TotalCorrect    int            `json:"total_correct"`
	TotalWrong      int            `json:"total_wrong"`
	OverallAccuracy float64        `json:"overall_accuracy"`
	Subjects        datatypes.JSON `json:"subjects"` // map subject -> SubjectStats
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (s *UserStats) SubjectMap() map[string]SubjectStats {
	out := make(map[string]SubjectStats)
	if len(s.Subjects) > 0 {
		_ = json.Unmarshal(s.Subjects, &out)
	}
	return out
}

func (s *UserStats) SetSubjectMap(m map[string]SubjectStats) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	s.Subjects = datatypes.JSON(raw)
}
