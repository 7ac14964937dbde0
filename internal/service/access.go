package service

import (
	"fmt"
	"time"

	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
)

// verifyQuizAccess enforces series/paid gating against active enrollments.
// Called both at attempt start and again at submission time: an enrollment
// that lapses mid-attempt fails the submission check.
func verifyQuizAccess(enrollmentRepo repository.EnrollmentRepository, quiz *model.Quiz, userID, userRole string) error {
	if quiz.AccessType == model.AccessPublic || userRole == "admin" {
		return nil
	}
	seriesIDs := make([]string, 0, len(quiz.Series))
	for _, qs := range quiz.Series {
		seriesIDs = append(seriesIDs, qs.SeriesID)
	}
	if len(seriesIDs) == 0 {
		return ErrAccessDenied
	}
	enrollments, err := enrollmentRepo.FindByUserAndSeries(userID, seriesIDs)
	if err != nil {
		return fmt.Errorf("checking enrollment: %w", err)
	}
	now := time.Now()
	for i := range enrollments {
		if enrollments[i].ActiveAt(now) {
			return nil
		}
	}
	return ErrAccessDenied
}
