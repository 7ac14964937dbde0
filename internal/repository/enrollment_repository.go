package repository

import (
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	FindByUserAndSeries(userID string, seriesIDs []string) ([]model.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) FindByUserAndSeries(userID string, seriesIDs []string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	if len(seriesIDs) == 0 {
		return enrollments, nil
	}
	err := r.db.Where("user_id = ? AND series_id IN ?", userID, seriesIDs).Find(&enrollments).Error
	return enrollments, err
}
