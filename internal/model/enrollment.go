package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment records a user's membership in a test series. Series/paid quizzes
// require an active, unexpired enrollment in one of the quiz's series.
type Enrollment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    string         `json:"user_id" gorm:"not null;index:idx_enrollment_user_series"`
	SeriesID  string         `json:"series_id" gorm:"not null;index:idx_enrollment_user_series"`
	Active    bool           `json:"active" gorm:"not null;default:true"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ActiveAt reports whether the enrollment grants access at the given instant.
func (e *Enrollment) ActiveAt(now time.Time) bool {
	if !e.Active {
		return false
	}
	return e.ExpiresAt == nil || e.ExpiresAt.After(now)
}
