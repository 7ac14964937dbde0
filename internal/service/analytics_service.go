package service

import (
	"math"

	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
)

// SubmissionRecord is the post-commit payload handed to the analytics updater.
type SubmissionRecord struct {
	UserID    string
	Source    string // quiz source namespace: "admin" or "mock"
	Score     int
	Total     int
	Questions []model.Question
	Answers   map[string]string
}

// AnalyticsService maintains per-user running aggregates. It is best-effort:
// failures are logged, never propagated, so a failed aggregate update can
// never turn a successful submission into a reported failure.
type AnalyticsService interface {
	RecordSubmission(rec SubmissionRecord)
}

type analyticsService struct {
	statsRepo repository.StatsRepository
}

func NewAnalyticsService(statsRepo repository.StatsRepository) AnalyticsService {
	return &analyticsService{statsRepo: statsRepo}
}

func (s *analyticsService) RecordSubmission(rec SubmissionRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("userID", rec.UserID).Msg("Analytics update panicked")
		}
	}()

	if rec.UserID == "" || rec.Total == 0 {
		return
	}
	source := rec.Source
	if source == "" {
		source = model.SourceAdmin
	}

	// Per-subject tallies come from the per-question subject tags on the
	// snapshot, not the quiz-level subject: one quiz may mix subjects.
	perSubject := make(map[string]SubjectDelta)
	for i := range rec.Questions {
		q := &rec.Questions[i]
		subject := q.Subject
		if subject == "" {
			subject = "general"
		}
		delta := perSubject[subject]
		delta.Attempted++
		if questionCredited(q, rec.Answers) {
			delta.Correct++
		} else {
			delta.Wrong++
		}
		perSubject[subject] = delta
	}

	err := s.statsRepo.UpdateWithLock(rec.UserID, source, func(stats *model.UserStats) {
		stats.TotalQuizzes++
		stats.TotalQuestions += rec.Total
		stats.TotalCorrect += rec.Score
		stats.TotalWrong += rec.Total - rec.Score
		stats.OverallAccuracy = accuracy(stats.TotalCorrect, stats.TotalQuestions)

		subjects := stats.SubjectMap()
		for subject, delta := range perSubject {
			entry := subjects[subject]
			entry.Attempted += delta.Attempted
			entry.Correct += delta.Correct
			entry.Wrong += delta.Wrong
			entry.Accuracy = accuracy(entry.Correct, entry.Attempted)
			subjects[subject] = entry
		}
		stats.SetSubjectMap(subjects)
	})
	if err != nil {
		log.Error().Err(err).Str("userID", rec.UserID).Str("source", source).Msg("Analytics aggregate update failed")
	}
}

// SubjectDelta is the contribution of one submission to one subject's tallies.
type SubjectDelta struct {
	Attempted int
	Correct   int
	Wrong     int
}

func accuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(attempted)*10000) / 100
}
