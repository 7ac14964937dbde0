package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
)

func twoQuestionQuiz() *model.Quiz {
	return &model.Quiz{
		ID:              7,
		Title:           "Chapter Test",
		AccessType:      model.AccessPublic,
		Source:          model.SourceAdmin,
		DurationMinutes: 30,
		Published:       true,
		Questions: []model.Question{
			{ID: 1, QuizID: 7, Position: 1, CorrectAnswer: "A", Subject: "biology"},
			{ID: 2, QuizID: 7, Position: 2, CorrectAnswer: "C", Subject: "chemistry"},
		},
	}
}

func newSubmissionFixture(quiz *model.Quiz) (SubmissionService, *fakeSubmissionRepo, *fakeAnalytics) {
	quizRepo := newFakeQuizRepo(quiz)
	subRepo := newFakeSubmissionRepo()
	analytics := &fakeAnalytics{}
	svc := NewSubmissionService(quizRepo, subRepo, newFakeResultRepo(), &fakeEnrollmentRepo{}, analytics)
	return svc, subRepo, analytics
}

func submitReq(timestamp int64, answers map[string]string) dto.SubmitQuizRequest {
	return dto.SubmitQuizRequest{
		UserID:        "u1",
		Answers:       answers,
		AttemptNumber: 1,
		Timestamp:     timestamp,
	}
}

func TestSubmitScoresAgainstServerAnswerKey(t *testing.T) {
	svc, _, analytics := newSubmissionFixture(twoQuestionQuiz())

	resp, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A", "2": "B"}), "student")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 2, resp.Total)
	assert.False(t, resp.Cached)

	// Analytics run post-commit on their own goroutine.
	require.Eventually(t, func() bool {
		analytics.mu.Lock()
		defer analytics.mu.Unlock()
		return len(analytics.records) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSubmitUnattemptedQuestionsCountTowardTotal(t *testing.T) {
	svc, _, _ := newSubmissionFixture(twoQuestionQuiz())

	resp, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A"}), "student")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 2, resp.Total)
}

func TestSubmitGraceMarkedQuestionAlwaysScores(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.Questions[1].GraceMark = true
	svc, _, _ := newSubmissionFixture(quiz)

	// Wrong answer on the grace-marked question still earns the point.
	resp, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A", "2": "ZZZ"}), "student")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Score)
	assert.Equal(t, 2, resp.Total)
}

func TestSubmitSnapshotsFlagsOnResult(t *testing.T) {
	svc, subRepo, _ := newSubmissionFixture(twoQuestionQuiz())

	req := submitReq(1000, map[string]string{"1": "A"})
	req.Flags = map[string]bool{"2": true}
	_, err := svc.Submit(7, req, "student")
	require.NoError(t, err)

	require.Len(t, subRepo.results, 1)
	flags := make(map[string]bool)
	require.NoError(t, json.Unmarshal(subRepo.results[0].Flags, &flags))
	assert.Equal(t, map[string]bool{"2": true}, flags)
}

func TestSubmitIdempotentReplay(t *testing.T) {
	svc, subRepo, _ := newSubmissionFixture(twoQuestionQuiz())

	first, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A", "2": "C"}), "student")
	require.NoError(t, err)
	require.Equal(t, 2, first.Score)

	// Same user, quiz and timestamp: replay, not a second scoring pass.
	second, err := svc.Submit(7, submitReq(1000, map[string]string{}), "student")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, subRepo.finalizeCount())

	// A different timestamp is a distinct submission attempt.
	third, err := svc.Submit(7, submitReq(2000, map[string]string{"1": "A"}), "student")
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, subRepo.finalizeCount())
}

func TestSubmitConcurrentDuplicateResolvesToWinner(t *testing.T) {
	svc, subRepo, _ := newSubmissionFixture(twoQuestionQuiz())

	_, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A", "2": "C"}), "student")
	require.NoError(t, err)

	// Simulate the loser of a race: its idempotency lookup ran before the
	// winner committed, so it misses and then hits the unique key on commit.
	subRepo.lookupMisses = 1
	resp, err := svc.Submit(7, submitReq(1000, map[string]string{}), "student")
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, 2, resp.Score)
	assert.Equal(t, 1, subRepo.finalizeCount())
}

func TestSubmitFailedCommitLeavesNothingBehind(t *testing.T) {
	svc, subRepo, analytics := newSubmissionFixture(twoQuestionQuiz())
	subRepo.finalizeErr = errors.New("connection reset")

	_, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A"}), "student")
	require.Error(t, err)

	assert.Equal(t, 0, subRepo.finalizeCount())
	assert.Empty(t, subRepo.results)

	// No analytics for a failed submission.
	time.Sleep(20 * time.Millisecond)
	analytics.mu.Lock()
	assert.Empty(t, analytics.records)
	analytics.mu.Unlock()

	// A retry after the outage succeeds with the same idempotency key.
	subRepo.finalizeErr = nil
	resp, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A"}), "student")
	require.NoError(t, err)
	assert.False(t, resp.Cached)
}

func TestSubmitEnrollmentRecheckedAtSubmitTime(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.AccessType = model.AccessSeries
	quiz.Series = []model.QuizSeries{{QuizID: 7, SeriesID: "s1"}}

	expired := time.Now().Add(-time.Hour)
	enrollRepo := &fakeEnrollmentRepo{enrollments: []model.Enrollment{
		{UserID: "u1", SeriesID: "s1", Active: true, ExpiresAt: &expired},
	}}
	svc := NewSubmissionService(newFakeQuizRepo(quiz), newFakeSubmissionRepo(), newFakeResultRepo(), enrollRepo, &fakeAnalytics{})

	_, err := svc.Submit(7, submitReq(1000, map[string]string{"1": "A"}), "student")
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Admins bypass the enrollment gate.
	_, err = svc.Submit(7, submitReq(1000, map[string]string{"1": "A"}), "admin")
	assert.NoError(t, err)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _ := newSubmissionFixture(twoQuestionQuiz())

	_, err := svc.Submit(99, submitReq(1000, nil), "student")
	assert.ErrorIs(t, err, ErrQuizNotFound)

	_, err = svc.Submit(7, dto.SubmitQuizRequest{UserID: "", Timestamp: 1000, AttemptNumber: 1}, "student")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Submit(7, dto.SubmitQuizRequest{UserID: "u1", Timestamp: 0, AttemptNumber: 1}, "student")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSubmitEmptyQuizRejected(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.Questions = nil
	svc, _, _ := newSubmissionFixture(quiz)

	_, err := svc.Submit(7, submitReq(1000, map[string]string{}), "student")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetResult(t *testing.T) {
	quiz := twoQuestionQuiz()
	resultRepo := newFakeResultRepo()
	resultRepo.results[attemptKey("u1", 7)] = &model.Result{
		UserID:        "u1",
		QuizID:        7,
		Score:         1,
		Total:         2,
		Answers:       model.EncodeJSONMap(map[string]string{"1": "A"}),
		Flags:         model.EncodeJSONMap(map[string]bool{"2": true}),
		AttemptNumber: 1,
	}
	svc := NewSubmissionService(newFakeQuizRepo(quiz), newFakeSubmissionRepo(), resultRepo, &fakeEnrollmentRepo{}, &fakeAnalytics{})

	result, err := svc.GetResult("u1", 7)
	require.NoError(t, err)
	assert.Equal(t, "Chapter Test", result.QuizTitle)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, map[string]string{"1": "A"}, result.Answers)
	assert.Equal(t, map[string]bool{"2": true}, result.Flags)

	_, err = svc.GetResult("nobody", 7)
	assert.ErrorIs(t, err, ErrResultNotFound)
}
