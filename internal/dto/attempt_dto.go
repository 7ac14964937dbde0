package dto

import "time"

// ProgressUpdateDTO carries a partial progress write. Merge semantics: only
// fields present are persisted; answers/flags merge key-wise into the stored
// maps. Immediate bypasses the debounce for commit-critical moments.
type ProgressUpdateDTO struct {
	Answers       map[string]string `json:"answers,omitempty"`
	Flags         map[string]bool   `json:"flags,omitempty"`
	CurrentIndex  *int              `json:"current_index,omitempty"`
	RemainingTime *int              `json:"remaining_time,omitempty"`
	Immediate     bool              `json:"immediate,omitempty"`
}

// HeartbeatDTO is the timer-sync write: remaining time only.
type HeartbeatDTO struct {
	RemainingTime int `json:"remaining_time" binding:"min=0"`
}

// AttemptDTO mirrors the stored attempt for resuming an in-progress quiz.
type AttemptDTO struct {
	QuizID        uint              `json:"quiz_id"`
	UserID        string            `json:"user_id"`
	Answers       map[string]string `json:"answers"`
	Flags         map[string]bool   `json:"flags"`
	CurrentIndex  int               `json:"current_index"`
	RemainingTime int               `json:"remaining_time"`
	Completed     bool              `json:"completed"`
	AttemptNumber int               `json:"attempt_number"`
	StartedAt     time.Time         `json:"started_at"`
}

// SaveStatusDTO surfaces the autosave state to the client: whether a flush is
// pending and the last persistence error, if retries were exhausted.
type SaveStatusDTO struct {
	Pending   bool   `json:"pending"`
	LastError string `json:"last_error,omitempty"`
}

// SubmitQuizRequest finalizes an attempt. Timestamp is the client submission
// instant (unix millis) and feeds the idempotency key, so retries of the same
// request are replayed, not re-scored.
type SubmitQuizRequest struct {
	UserID        string            `json:"user_id" binding:"required"`
	Answers       map[string]string `json:"answers"`
	Flags         map[string]bool   `json:"flags"`
	TimeLogs      map[string]int    `json:"time_logs"`
	AttemptNumber int               `json:"attempt_number" binding:"required,min=1"`
	Timestamp     int64             `json:"timestamp" binding:"required,gt=0"`
}

type SubmitQuizResponse struct {
	Success bool   `json:"success"`
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	Cached  bool   `json:"cached,omitempty"`
}

// ResultDTO is the stored outcome of a completed attempt.
type ResultDTO struct {
	QuizID        uint              `json:"quiz_id"`
	QuizTitle     string            `json:"quiz_title,omitempty"`
	Score         int               `json:"score"`
	Total         int               `json:"total"`
	Answers       map[string]string `json:"answers,omitempty"`
	Flags         map[string]bool   `json:"flags,omitempty"`
	TimeLogs      map[string]int    `json:"time_logs,omitempty"`
	AttemptNumber int               `json:"attempt_number"`
	CreatedAt     time.Time         `json:"created_at"`
}
