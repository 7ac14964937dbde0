package model

import (
	"fmt"
	"time"
)

// Submission is the idempotency record for a finalized quiz submission. Its
// existence short-circuits re-processing of a duplicate request: the stored
// score/total are returned without recomputation. Written atomically with the
// Result and the Attempt completion; never mutated.
type Submission struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	IdempotencyKey string    `json:"idempotency_key" gorm:"not null;uniqueIndex"`
	UserID         string    `json:"user_id" gorm:"not null;index"`
	QuizID         uint      `json:"quiz_id" gorm:"not null;index"`
	Score          int       `json:"score" gorm:"not null"`
	Total          int       `json:"total" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
}

// SubmissionKey derives the idempotency key from the client-supplied submission
// timestamp, so retries of the same request map to the same record.
func SubmissionKey(userID string, quizID uint, timestamp int64) string {
	return fmt.Sprintf("%s_%d_%d", userID, quizID, timestamp)
}
