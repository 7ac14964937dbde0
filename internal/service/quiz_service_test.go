package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
)

func validQuizCreate() dto.QuizCreateDTO {
	return dto.QuizCreateDTO{
		Title:           "Entry Test 1",
		Subject:         "biology",
		AccessType:      model.AccessPublic,
		DurationMinutes: 60,
		Published:       true,
		Questions: []dto.QuestionCreateDTO{
			{Position: 1, Text: "Q1", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "B", Subject: "biology"},
			{Position: 2, Text: "Q2", Options: []string{"A", "B"}, CorrectAnswer: "A", Subject: "biology"},
		},
	}
}

func TestCreateQuizStoresQuestionsAndSeries(t *testing.T) {
	quizRepo := newFakeQuizRepo()
	svc := NewQuizService(quizRepo, &fakeEnrollmentRepo{})

	req := validQuizCreate()
	req.AccessType = model.AccessSeries
	req.SeriesIDs = []string{"s1", "s2"}

	created, err := svc.CreateQuiz(req)
	require.NoError(t, err)

	assert.Equal(t, "Entry Test 1", created.Title)
	assert.Equal(t, model.SourceAdmin, created.Source)
	assert.Equal(t, []string{"s1", "s2"}, created.SeriesIDs)
	require.Len(t, created.Questions, 2)
	assert.Equal(t, "B", created.Questions[0].CorrectAnswer)
	assert.Equal(t, []string{"A", "B", "C", "D"}, created.Questions[0].Options)

	stored, err := quizRepo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Questions, 2)
}

func TestCreateQuizValidation(t *testing.T) {
	svc := NewQuizService(newFakeQuizRepo(), &fakeEnrollmentRepo{})

	dup := validQuizCreate()
	dup.Questions[1].Position = 1
	_, err := svc.CreateQuiz(dup)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	badAnswer := validQuizCreate()
	badAnswer.Questions[0].CorrectAnswer = "Z"
	_, err = svc.CreateQuiz(badAnswer)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	gated := validQuizCreate()
	gated.AccessType = model.AccessPaid
	gated.SeriesIDs = nil
	_, err = svc.CreateQuiz(gated)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestListPublishedSkipsDrafts(t *testing.T) {
	published := twoQuestionQuiz()
	draft := &model.Quiz{ID: 8, Title: "Draft", AccessType: model.AccessPublic, Published: false}
	svc := NewQuizService(newFakeQuizRepo(published, draft), &fakeEnrollmentRepo{})

	summaries, err := svc.ListPublished()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, published.Title, summaries[0].Title)
	assert.Equal(t, 2, summaries[0].QuestionCount)
}

func TestGetForAttemptOmitsAnswerKey(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.Questions[0].Options = model.EncodeJSONMap([]string{"A", "B", "C", "D"})
	svc := NewQuizService(newFakeQuizRepo(quiz), &fakeEnrollmentRepo{})

	detail, err := svc.GetForAttempt(7, "u1", "student")
	require.NoError(t, err)
	require.Len(t, detail.Questions, 2)
	assert.Equal(t, []string{"A", "B", "C", "D"}, detail.Questions[0].Options)
	// QuestionPublicDTO carries no correct answer or grace mark by type; spot
	// check the payload shape stays user-safe.
	assert.Equal(t, uint(1), detail.Questions[0].ID)
}

func TestGetForAttemptHidesDraftsFromStudents(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.Published = false
	svc := NewQuizService(newFakeQuizRepo(quiz), &fakeEnrollmentRepo{})

	_, err := svc.GetForAttempt(7, "u1", "student")
	assert.ErrorIs(t, err, ErrQuizNotFound)

	_, err = svc.GetForAttempt(7, "a1", "admin")
	assert.NoError(t, err)
}

func TestGetForAttemptEnforcesEnrollment(t *testing.T) {
	quiz := twoQuestionQuiz()
	quiz.AccessType = model.AccessSeries
	quiz.Series = []model.QuizSeries{{QuizID: 7, SeriesID: "s1"}}

	future := time.Now().Add(time.Hour)
	enrollRepo := &fakeEnrollmentRepo{enrollments: []model.Enrollment{
		{UserID: "member", SeriesID: "s1", Active: true, ExpiresAt: &future},
	}}
	svc := NewQuizService(newFakeQuizRepo(quiz), enrollRepo)

	_, err := svc.GetForAttempt(7, "member", "student")
	assert.NoError(t, err)

	_, err = svc.GetForAttempt(7, "outsider", "student")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSetPublishedUnknownQuiz(t *testing.T) {
	svc := NewQuizService(newFakeQuizRepo(), &fakeEnrollmentRepo{})
	assert.ErrorIs(t, svc.SetPublished(42, true), ErrQuizNotFound)
}

func TestSetGraceMark(t *testing.T) {
	quiz := twoQuestionQuiz()
	quizRepo := newFakeQuizRepo(quiz)
	svc := NewQuizService(quizRepo, &fakeEnrollmentRepo{})

	require.NoError(t, svc.SetGraceMark(2, true))
	assert.True(t, quiz.Questions[1].GraceMark)
}
