package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// SubmissionService finalizes attempts: idempotency check, access
// re-verification, server-side scoring and the atomic three-part commit.
type SubmissionService interface {
	Submit(quizID uint, req dto.SubmitQuizRequest, userRole string) (*dto.SubmitQuizResponse, error)
	GetResult(userID string, quizID uint) (*dto.ResultDTO, error)
}

type submissionService struct {
	quizRepo       repository.QuizRepository
	submissionRepo repository.SubmissionRepository
	resultRepo     repository.ResultRepository
	enrollmentRepo repository.EnrollmentRepository
	analytics      AnalyticsService
}

func NewSubmissionService(
	quizRepo repository.QuizRepository,
	submissionRepo repository.SubmissionRepository,
	resultRepo repository.ResultRepository,
	enrollmentRepo repository.EnrollmentRepository,
	analytics AnalyticsService,
) SubmissionService {
	return &submissionService{
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		resultRepo:     resultRepo,
		enrollmentRepo: enrollmentRepo,
		analytics:      analytics,
	}
}

func (s *submissionService) Submit(quizID uint, req dto.SubmitQuizRequest, userRole string) (*dto.SubmitQuizResponse, error) {
	if quizID == 0 || req.UserID == "" || req.Timestamp <= 0 || req.AttemptNumber < 1 {
		return nil, ErrInvalidRequest
	}

	// 1. Idempotency: a duplicate of an already-processed request replays the
	// stored outcome without rescoring.
	key := model.SubmissionKey(req.UserID, quizID, req.Timestamp)
	if prior, err := s.submissionRepo.FindByKey(key); err == nil {
		return replayResponse(prior), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}

	// 2. Quiz lookup. The question set loaded here is the authoritative answer
	// key for scoring.
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("loading quiz %d: %w", quizID, err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz %d has no questions", ErrInvalidRequest, quizID)
	}

	// 3. Access re-verification at submission time. An enrollment that lapsed
	// mid-attempt fails here even though the attempt started legitimately.
	if err := verifyQuizAccess(s.enrollmentRepo, quiz, req.UserID, userRole); err != nil {
		if errors.Is(err, ErrAccessDenied) {
			log.Warn().Str("userID", req.UserID).Uint("quizID", quiz.ID).Msg("Submission rejected: no active enrollment")
		}
		return nil, err
	}

	// 4. Scoring from the server-held answer key.
	score, total := scoreSubmission(quiz.Questions, req.Answers)

	result := &model.Result{
		UserID:        req.UserID,
		QuizID:        quizID,
		Score:         score,
		Total:         total,
		Answers:       model.EncodeJSONMap(req.Answers),
		Flags:         model.EncodeJSONMap(req.Flags),
		TimeLogs:      model.EncodeJSONMap(req.TimeLogs),
		AttemptNumber: req.AttemptNumber,
	}
	submission := &model.Submission{
		IdempotencyKey: key,
		UserID:         req.UserID,
		QuizID:         quizID,
		Score:          score,
		Total:          total,
	}

	// 5. Atomic commit: result + attempt completion + idempotency record.
	if err := s.submissionRepo.Finalize(result, submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent duplicate; the winner's record
			// is the outcome.
			if prior, lookupErr := s.submissionRepo.FindByKey(key); lookupErr == nil {
				return replayResponse(prior), nil
			}
		}
		return nil, fmt.Errorf("finalizing submission: %w", err)
	}

	// 6. Post-commit analytics, fire-and-forget. Submission success is defined
	// solely by the commit above.
	go s.analytics.RecordSubmission(SubmissionRecord{
		UserID:    req.UserID,
		Source:    quiz.Source,
		Score:     score,
		Total:     total,
		Questions: quiz.Questions,
		Answers:   req.Answers,
	})

	return &dto.SubmitQuizResponse{
		Success: true,
		Score:   score,
		Total:   total,
		Message: "Submission recorded",
	}, nil
}

// GetResult fetches the stored result and the quiz metadata concurrently.
func (s *submissionService) GetResult(userID string, quizID uint) (*dto.ResultDTO, error) {
	if userID == "" || quizID == 0 {
		return nil, ErrInvalidRequest
	}

	var result *model.Result
	var quiz *model.Quiz

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		result, err = s.resultRepo.FindByUserAndQuiz(userID, quizID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResultNotFound
		}
		return err
	})
	eg.Go(func() error {
		var err error
		quiz, err = s.quizRepo.FindByID(quizID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	answers := make(map[string]string)
	if len(result.Answers) > 0 {
		_ = json.Unmarshal(result.Answers, &answers)
	}
	flags := make(map[string]bool)
	if len(result.Flags) > 0 {
		_ = json.Unmarshal(result.Flags, &flags)
	}
	timeLogs := make(map[string]int)
	if len(result.TimeLogs) > 0 {
		_ = json.Unmarshal(result.TimeLogs, &timeLogs)
	}

	return &dto.ResultDTO{
		QuizID:        quizID,
		QuizTitle:     quiz.Title,
		Score:         result.Score,
		Total:         result.Total,
		Answers:       answers,
		Flags:         flags,
		TimeLogs:      timeLogs,
		AttemptNumber: result.AttemptNumber,
		CreatedAt:     result.CreatedAt,
	}, nil
}

// scoreSubmission awards credit per question for an exact answer match or a
// grace-mark override. Total is always the quiz's question count, so
// unattempted questions count toward total but not score.
func scoreSubmission(questions []model.Question, answers map[string]string) (score, total int) {
	total = len(questions)
	for i := range questions {
		if questionCredited(&questions[i], answers) {
			score++
		}
	}
	return score, total
}

func questionCredited(q *model.Question, answers map[string]string) bool {
	if q.GraceMark {
		return true
	}
	ans, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]
	return ok && ans == q.CorrectAnswer
}

func replayResponse(prior *model.Submission) *dto.SubmitQuizResponse {
	return &dto.SubmitQuizResponse{
		Success: true,
		Score:   prior.Score,
		Total:   prior.Total,
		Message: "Already submitted",
		Cached:  true,
	}
}
