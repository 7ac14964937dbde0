package dto

// ChatTurn is one prior message of the tutor conversation.
type ChatTurn struct {
	Role    string `json:"role" binding:"required,oneof=user model"`
	Content string `json:"content" binding:"required"`
}

type TutorAskRequest struct {
	Message  string     `json:"message" binding:"required"`
	History  []ChatTurn `json:"history" binding:"omitempty,dive"`
	UserID   string     `json:"user_id" binding:"required"`
	UserName string     `json:"user_name"`
	UserRole string     `json:"user_role"`
}

// SourceRef cites one knowledge-base chunk used to ground a generated answer.
type SourceRef struct {
	Type     string  `json:"type"`
	Subject  string  `json:"subject,omitempty"`
	BookName string  `json:"book_name,omitempty"`
	Chapter  string  `json:"chapter,omitempty"`
	Page     int     `json:"page,omitempty"`
	Score    float64 `json:"score"`
}

type TutorFeedbackRequest struct {
	LogID    string `json:"log_id" binding:"required"`
	Feedback string `json:"feedback" binding:"required"`
}

// KnowledgeCreateDTO is the admin ingest payload; the embedding is computed
// server-side.
type KnowledgeCreateDTO struct {
	Content  string `json:"content" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=book syllabus"`
	Subject  string `json:"subject"`
	BookName string `json:"book_name"`
	Chapter  string `json:"chapter"`
	Page     int    `json:"page"`
}
