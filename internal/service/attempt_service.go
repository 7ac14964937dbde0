package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
	"gorm.io/gorm"
)

// AttemptService owns the per-user, per-quiz progress record and the autosave
// pipeline in front of it. Preview sessions (admins looking at a quiz) never
// touch persistence.
type AttemptService interface {
	StartOrResume(userID string, quizID uint, preview bool) (*dto.AttemptDTO, error)
	SaveProgress(userID string, quizID uint, update dto.ProgressUpdateDTO, preview bool) error
	Heartbeat(userID string, quizID uint, remaining int) error
	SaveStatus(userID string, quizID uint) dto.SaveStatusDTO
	CloseSaver(userID string, quizID uint)
}

type attemptService struct {
	attemptRepo   repository.AttemptRepository
	quizRepo      repository.QuizRepository
	debounce      time.Duration
	heartbeatSync time.Duration

	savers sync.Map // "userID:quizID" -> *ProgressSaver
}

func NewAttemptService(attemptRepo repository.AttemptRepository, quizRepo repository.QuizRepository) AttemptService {
	return &attemptService{
		attemptRepo:   attemptRepo,
		quizRepo:      quizRepo,
		debounce:      500 * time.Millisecond,
		heartbeatSync: 30 * time.Second,
	}
}

func saverKey(userID string, quizID uint) string {
	return fmt.Sprintf("%s:%d", userID, quizID)
}

func (s *attemptService) StartOrResume(userID string, quizID uint, preview bool) (*dto.AttemptDTO, error) {
	if userID == "" || quizID == 0 {
		return nil, ErrInvalidRequest
	}
	quiz, err := s.quizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("loading quiz %d: %w", quizID, err)
	}

	duration := quiz.DurationMinutes * 60

	if preview {
		// Admin preview: a throwaway in-memory attempt, nothing persisted.
		return &dto.AttemptDTO{
			QuizID:        quizID,
			UserID:        userID,
			Answers:       map[string]string{},
			Flags:         map[string]bool{},
			RemainingTime: duration,
			AttemptNumber: 1,
			StartedAt:     time.Now(),
		}, nil
	}

	attempt, err := s.attemptRepo.FindByUserAndQuiz(userID, quizID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		attempt = &model.Attempt{
			UserID:        userID,
			QuizID:        quizID,
			Answers:       model.EncodeJSONMap(map[string]string{}),
			Flags:         model.EncodeJSONMap(map[string]bool{}),
			RemainingTime: duration,
			AttemptNumber: 1,
			StartedAt:     time.Now(),
		}
		if err := s.attemptRepo.Create(attempt); err != nil {
			return nil, fmt.Errorf("creating attempt: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("loading attempt: %w", err)
	case attempt.Completed:
		// Retake: reset the same record, bump the attempt number.
		attempt.Answers = model.EncodeJSONMap(map[string]string{})
		attempt.Flags = model.EncodeJSONMap(map[string]bool{})
		attempt.CurrentIndex = 0
		attempt.RemainingTime = duration
		attempt.Completed = false
		attempt.AttemptNumber++
		attempt.StartedAt = time.Now()
		attempt.SubmittedAt = nil
		if err := s.attemptRepo.Save(attempt); err != nil {
			return nil, fmt.Errorf("resetting attempt for retake: %w", err)
		}
	}

	s.ensureSaver(userID, quizID, attempt.StartedAt, duration)

	return &dto.AttemptDTO{
		QuizID:        attempt.QuizID,
		UserID:        attempt.UserID,
		Answers:       attempt.AnswerMap(),
		Flags:         attempt.FlagMap(),
		CurrentIndex:  attempt.CurrentIndex,
		RemainingTime: attempt.RemainingTime,
		Completed:     attempt.Completed,
		AttemptNumber: attempt.AttemptNumber,
		StartedAt:     attempt.StartedAt,
	}, nil
}

func (s *attemptService) SaveProgress(userID string, quizID uint, update dto.ProgressUpdateDTO, preview bool) error {
	if userID == "" || quizID == 0 {
		return ErrInvalidRequest
	}
	if preview {
		// No persistence side effects for preview sessions.
		return nil
	}
	saver, ok := s.saver(userID, quizID)
	if !ok {
		// Progress for an attempt this process has not seen yet (restart,
		// second instance). Build the saver lazily from the stored attempt.
		attempt, err := s.attemptRepo.FindByUserAndQuiz(userID, quizID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuizNotFound
			}
			return fmt.Errorf("loading attempt: %w", err)
		}
		if attempt.Completed {
			return ErrAttemptCompleted
		}
		quiz, err := s.quizRepo.FindByID(quizID)
		if err != nil {
			return fmt.Errorf("loading quiz %d: %w", quizID, err)
		}
		saver = s.ensureSaver(userID, quizID, attempt.StartedAt, quiz.DurationMinutes*60)
	}
	if err := saver.Save(update); err != nil {
		if errors.Is(err, repository.ErrAttemptLocked) {
			return ErrAttemptCompleted
		}
		return err
	}
	return nil
}

func (s *attemptService) Heartbeat(userID string, quizID uint, remaining int) error {
	if remaining < 0 {
		remaining = 0
	}
	err := s.attemptRepo.UpdateProgress(userID, quizID, map[string]interface{}{"remaining_time": remaining})
	if errors.Is(err, repository.ErrAttemptLocked) {
		return ErrAttemptCompleted
	}
	return err
}

func (s *attemptService) SaveStatus(userID string, quizID uint) dto.SaveStatusDTO {
	if saver, ok := s.saver(userID, quizID); ok {
		return saver.Status()
	}
	return dto.SaveStatusDTO{}
}

// CloseSaver tears down the debounce timer and heartbeat for an attempt,
// typically right after submission.
func (s *attemptService) CloseSaver(userID string, quizID uint) {
	key := saverKey(userID, quizID)
	if v, ok := s.savers.LoadAndDelete(key); ok {
		v.(*ProgressSaver).Close()
	}
}

func (s *attemptService) saver(userID string, quizID uint) (*ProgressSaver, bool) {
	v, ok := s.savers.Load(saverKey(userID, quizID))
	if !ok {
		return nil, false
	}
	return v.(*ProgressSaver), true
}

// ensureSaver builds (once) the debounced saver for an attempt and starts the
// periodic timer sync. Remaining time is computed server-side from the attempt
// start, so the heartbeat stays authoritative even if the client clock drifts.
func (s *attemptService) ensureSaver(userID string, quizID uint, startedAt time.Time, durationSeconds int) *ProgressSaver {
	key := saverKey(userID, quizID)
	if v, ok := s.savers.Load(key); ok {
		return v.(*ProgressSaver)
	}

	flush := func(update dto.ProgressUpdateDTO) error {
		return s.persistProgress(userID, quizID, update)
	}
	heartbeat := func(remaining int) error {
		err := s.attemptRepo.UpdateProgress(userID, quizID, map[string]interface{}{"remaining_time": remaining})
		if errors.Is(err, repository.ErrAttemptLocked) || errors.Is(err, gorm.ErrRecordNotFound) {
			// Completed or vanished attempts must not keep a ticker alive.
			return ErrAttemptCompleted
		}
		return err
	}
	saver := NewProgressSaver(flush, heartbeat, s.debounce)

	actual, loaded := s.savers.LoadOrStore(key, saver)
	stored := actual.(*ProgressSaver)
	if !loaded {
		deadline := startedAt.Add(time.Duration(durationSeconds) * time.Second)
		stored.StartTimerSync(s.heartbeatSync, func() int {
			return int(time.Until(deadline).Seconds())
		})
	}
	return stored
}

// persistProgress applies merge semantics against the stored record: only the
// columns present in the update are written, and answer/flag maps are merged
// key-wise rather than replaced.
func (s *attemptService) persistProgress(userID string, quizID uint, update dto.ProgressUpdateDTO) error {
	fields := map[string]interface{}{}

	if update.Answers != nil || update.Flags != nil {
		current, err := s.attemptRepo.FindByUserAndQuiz(userID, quizID)
		if err != nil {
			return fmt.Errorf("reading attempt for merge: %w", err)
		}
		if current.Completed {
			return repository.ErrAttemptLocked
		}
		if update.Answers != nil {
			merged := current.AnswerMap()
			for k, v := range update.Answers {
				merged[k] = v
			}
			fields["answers"] = model.EncodeJSONMap(merged)
		}
		if update.Flags != nil {
			merged := current.FlagMap()
			for k, v := range update.Flags {
				merged[k] = v
			}
			fields["flags"] = model.EncodeJSONMap(merged)
		}
	}
	if update.CurrentIndex != nil {
		fields["current_index"] = *update.CurrentIndex
	}
	if update.RemainingTime != nil {
		fields["remaining_time"] = *update.RemainingTime
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.attemptRepo.UpdateProgress(userID, quizID, fields); err != nil {
		log.Warn().Err(err).Str("userID", userID).Uint("quizID", quizID).Msg("Progress write failed")
		return err
	}
	return nil
}
