package dto

import "time"

// QuestionCreateDTO is used within QuizCreateDTO for admin quiz authoring.
// CorrectAnswer and GraceMark are admin-only fields and never appear in
// user-facing question DTOs.
type QuestionCreateDTO struct {
	Position      int      `json:"position" binding:"required,min=1"`
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	GraceMark     bool     `json:"grace_mark"`
	Subject       string   `json:"subject"`
}

// QuizCreateDTO is for admins to create a quiz with its full question set.
type QuizCreateDTO struct {
	Title           string              `json:"title" binding:"required"`
	Subject         string              `json:"subject"`
	AccessType      string              `json:"access_type" binding:"required,oneof=public series paid"`
	Source          string              `json:"source" binding:"omitempty,oneof=admin mock"`
	SeriesIDs       []string            `json:"series_ids"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,gt=0"`
	Published       bool                `json:"published"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// QuestionAdminDTO echoes the full question, answer key included.
type QuestionAdminDTO struct {
	ID            uint     `json:"id"`
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	GraceMark     bool     `json:"grace_mark"`
	Subject       string   `json:"subject,omitempty"`
}

// QuizAdminDTO is the admin view of a quiz.
type QuizAdminDTO struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Subject         string             `json:"subject,omitempty"`
	AccessType      string             `json:"access_type"`
	Source          string             `json:"source"`
	SeriesIDs       []string           `json:"series_ids,omitempty"`
	DurationMinutes int                `json:"duration_minutes"`
	Published       bool               `json:"published"`
	Questions       []QuestionAdminDTO `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// QuestionPublicDTO is what a student sees during an attempt: no answer key,
// no grace-mark flag.
type QuestionPublicDTO struct {
	ID       uint     `json:"id"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Subject  string   `json:"subject,omitempty"`
}

// QuizDetailDTO is the user-facing quiz payload served at attempt start.
type QuizDetailDTO struct {
	ID              uint                `json:"id"`
	Title           string              `json:"title"`
	Subject         string              `json:"subject,omitempty"`
	AccessType      string              `json:"access_type"`
	DurationMinutes int                 `json:"duration_minutes"`
	Questions       []QuestionPublicDTO `json:"questions"`
}

// QuizSummaryDTO is used for the quiz catalogue listing.
type QuizSummaryDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Subject         string    `json:"subject,omitempty"`
	AccessType      string    `json:"access_type"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}
