package model

import (
	"time"
)

// ConversationLog is the append-only record of one AI-tutor exchange. Query and
// response are stored PII-scrubbed. Feedback is the only field updated after
// creation.
type ConversationLog struct {
	ID         string    `gorm:"primarykey;type:uuid" json:"id"`
	UserID     string    `json:"user_id" gorm:"index"`
	UserName   string    `json:"user_name,omitempty"`
	Query      string    `json:"query" gorm:"type:text"`
	Response   string    `json:"response" gorm:"type:text"`
	Subject    string    `json:"subject,omitempty"`
	Intent     string    `json:"intent"`
	Confidence string    `json:"confidence,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	FromCache  bool      `json:"from_cache"`
	Blocked    bool      `json:"blocked"`
	Feedback   string    `json:"feedback,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
