package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests. Each fake keeps a
// call counter or an injectable error where a test needs to observe behavior.

type fakeQuizRepo struct {
	quizzes map[uint]*model.Quiz
}

func newFakeQuizRepo(quizzes ...*model.Quiz) *fakeQuizRepo {
	r := &fakeQuizRepo{quizzes: make(map[uint]*model.Quiz)}
	for _, q := range quizzes {
		r.quizzes[q.ID] = q
	}
	return r
}

func (r *fakeQuizRepo) Create(quiz *model.Quiz) error {
	if quiz.ID == 0 {
		quiz.ID = uint(len(r.quizzes) + 1)
	}
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *fakeQuizRepo) FindByID(id uint) (*model.Quiz, error) {
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (r *fakeQuizRepo) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	return r.FindByID(id)
}

func (r *fakeQuizRepo) FindAllPublishedWithQuestionCount() ([]struct {
	model.Quiz
	QuestionCount int
}, error) {
	var out []struct {
		model.Quiz
		QuestionCount int
	}
	for _, q := range r.quizzes {
		if !q.Published {
			continue
		}
		out = append(out, struct {
			model.Quiz
			QuestionCount int
		}{Quiz: *q, QuestionCount: len(q.Questions)})
	}
	return out, nil
}

func (r *fakeQuizRepo) SetPublished(id uint, published bool) error {
	quiz, ok := r.quizzes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.Published = published
	return nil
}

func (r *fakeQuizRepo) SetGraceMark(questionID uint, graceMark bool) error {
	for _, quiz := range r.quizzes {
		for i := range quiz.Questions {
			if quiz.Questions[i].ID == questionID {
				quiz.Questions[i].GraceMark = graceMark
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts map[string]*model.Attempt
	updates  int
	failWith error
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: make(map[string]*model.Attempt)}
}

func attemptKey(userID string, quizID uint) string {
	return fmt.Sprintf("%s:%d", userID, quizID)
}

func (r *fakeAttemptRepo) Create(attempt *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attemptKey(attempt.UserID, attempt.QuizID)] = attempt
	return nil
}

func (r *fakeAttemptRepo) FindByUserAndQuiz(userID string, quizID uint) (*model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[attemptKey(userID, quizID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *attempt
	return &copied, nil
}

func (r *fakeAttemptRepo) Save(attempt *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *attempt
	r.attempts[attemptKey(attempt.UserID, attempt.QuizID)] = &copied
	return nil
}

func (r *fakeAttemptRepo) UpdateProgress(userID string, quizID uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.failWith != nil {
		return r.failWith
	}
	attempt, ok := r.attempts[attemptKey(userID, quizID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if attempt.Completed {
		return repository.ErrAttemptLocked
	}
	for col, val := range fields {
		switch col {
		case "answers":
			attempt.Answers = val.(datatypes.JSON)
		case "flags":
			attempt.Flags = val.(datatypes.JSON)
		case "current_index":
			attempt.CurrentIndex = val.(int)
		case "remaining_time":
			attempt.RemainingTime = val.(int)
		}
	}
	return nil
}

func (r *fakeAttemptRepo) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

func (r *fakeAttemptRepo) complete(userID string, quizID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if attempt, ok := r.attempts[attemptKey(userID, quizID)]; ok {
		attempt.Completed = true
	}
}

func (r *fakeAttemptRepo) stored(userID string, quizID uint) *model.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[attemptKey(userID, quizID)]
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	byKey       map[string]*model.Submission
	results     []*model.Result
	finalizeErr error
	finalized   int
	attemptRepo *fakeAttemptRepo
	// lookupMisses forces FindByKey to report not-found N times even when the
	// record exists, simulating a concurrent writer landing between the
	// idempotency check and the commit.
	lookupMisses int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{byKey: make(map[string]*model.Submission)}
}

func (r *fakeSubmissionRepo) FindByKey(key string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupMisses > 0 {
		r.lookupMisses--
		return nil, gorm.ErrRecordNotFound
	}
	sub, ok := r.byKey[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (r *fakeSubmissionRepo) Finalize(result *model.Result, submission *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalizeErr != nil {
		// Atomic: a failed commit leaves no partial state behind.
		return r.finalizeErr
	}
	if _, exists := r.byKey[submission.IdempotencyKey]; exists {
		return gorm.ErrDuplicatedKey
	}
	r.results = append(r.results, result)
	r.byKey[submission.IdempotencyKey] = submission
	r.finalized++
	if r.attemptRepo != nil {
		if attempt := r.attemptRepo.stored(result.UserID, result.QuizID); attempt != nil {
			attempt.Completed = true
			attempt.RemainingTime = 0
		}
	}
	return nil
}

func (r *fakeSubmissionRepo) finalizeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalized
}

type fakeResultRepo struct {
	results map[string]*model.Result
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[string]*model.Result)}
}

func (r *fakeResultRepo) FindByUserAndQuiz(userID string, quizID uint) (*model.Result, error) {
	result, ok := r.results[attemptKey(userID, quizID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return result, nil
}

type fakeEnrollmentRepo struct {
	enrollments []model.Enrollment
}

func (r *fakeEnrollmentRepo) FindByUserAndSeries(userID string, seriesIDs []string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range r.enrollments {
		if e.UserID != userID {
			continue
		}
		for _, sid := range seriesIDs {
			if e.SeriesID == sid {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

type fakeStatsRepo struct {
	mu       sync.Mutex
	stats    map[string]*model.UserStats
	failWith error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[string]*model.UserStats)}
}

func (r *fakeStatsRepo) FindByUserAndSource(userID, source string) (*model.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID+"/"+source]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return stats, nil
}

func (r *fakeStatsRepo) UpdateWithLock(userID, source string, mutate func(stats *model.UserStats)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	key := userID + "/" + source
	stats, ok := r.stats[key]
	if !ok {
		stats = &model.UserStats{UserID: userID, Source: source}
		r.stats[key] = stats
	}
	mutate(stats)
	return nil
}

type fakeAnalytics struct {
	mu      sync.Mutex
	records []SubmissionRecord
}

func (a *fakeAnalytics) RecordSubmission(rec SubmissionRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

type fakeKnowledgeRepo struct {
	mu     sync.Mutex
	chunks []model.KnowledgeChunk
	finds  int
}

func (r *fakeKnowledgeRepo) Create(chunk *model.KnowledgeChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chunk.ID = uint(len(r.chunks) + 1)
	r.chunks = append(r.chunks, *chunk)
	return nil
}

func (r *fakeKnowledgeRepo) FindByType(chunkType, subject string) ([]model.KnowledgeChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	var out []model.KnowledgeChunk
	for _, c := range r.chunks {
		if c.Type != chunkType {
			continue
		}
		if subject != "" && c.Subject != subject {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeKnowledgeRepo) findCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finds
}

type fakeLogRepo struct {
	mu        sync.Mutex
	entries   []model.ConversationLog
	createErr error
}

func (r *fakeLogRepo) Create(entry *model.ConversationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) UpdateFeedback(id string, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Feedback = feedback
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeLogRepo) FindRecent(limit int) ([]model.ConversationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]model.ConversationLog, limit)
	copy(out, r.entries[len(r.entries)-limit:])
	return out, nil
}

func (r *fakeLogRepo) logged() []model.ConversationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ConversationLog, len(r.entries))
	copy(out, r.entries)
	return out
}

type fakeLLM struct {
	mu          sync.Mutex
	embeds      int
	generates   int
	embedding   []float32
	embedErr    error
	chunks      []string
	generateErr error
}

func (l *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.embeds++
	if l.embedErr != nil {
		return nil, l.embedErr
	}
	if l.embedding != nil {
		return l.embedding, nil
	}
	return []float32{1, 0, 0}, nil
}

func (l *fakeLLM) GenerateStream(ctx context.Context, prompt string, history []dto.ChatTurn, onChunk func(text string) error) error {
	l.mu.Lock()
	l.generates++
	chunks := l.chunks
	genErr := l.generateErr
	l.mu.Unlock()
	if genErr != nil {
		return genErr
	}
	for _, c := range chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func (l *fakeLLM) counts() (embeds, generates int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.embeds, l.generates
}
