package service

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
)

type progressFlushFunc func(update dto.ProgressUpdateDTO) error
type heartbeatFunc func(remaining int) error

// ProgressSaver coalesces rapid progress updates for one (user, quiz) attempt
// into a single write after a quiet period. Commit-critical saves bypass the
// debounce. A separate timer-sync path persists only the remaining time and
// never touches the debounce timer or the user-visible save status.
type ProgressSaver struct {
	flush       progressFlushFunc
	heartbeat   heartbeatFunc
	debounce    time.Duration
	maxRetries  int
	backoffBase time.Duration

	mu       sync.Mutex
	pending  *dto.ProgressUpdateDTO
	inFlight int
	timer    *time.Timer
	stopBeat chan struct{}
	lastErr  error
	closed   bool
}

func NewProgressSaver(flush progressFlushFunc, heartbeat heartbeatFunc, debounce time.Duration) *ProgressSaver {
	return &ProgressSaver{
		flush:       flush,
		heartbeat:   heartbeat,
		debounce:    debounce,
		maxRetries:  3,
		backoffBase: 200 * time.Millisecond,
	}
}

// Save merges the update into the pending state. With Immediate set the write
// happens synchronously; otherwise the debounce timer is (re)armed and the
// flush fires after the quiet period.
func (s *ProgressSaver) Save(update dto.ProgressUpdateDTO) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrAttemptCompleted
	}
	s.mergeLocked(update)

	if update.Immediate {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.mu.Unlock()
		return s.flushPending()
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.flushPending(); err != nil {
			log.Warn().Err(err).Msg("Debounced progress flush failed; update retained for retry")
		}
	})
	s.mu.Unlock()
	return nil
}

// mergeLocked folds an update into the pending one. Answer/flag maps merge
// key-wise; scalar fields are replaced when present.
func (s *ProgressSaver) mergeLocked(update dto.ProgressUpdateDTO) {
	if s.pending == nil {
		s.pending = &dto.ProgressUpdateDTO{}
	}
	if update.Answers != nil {
		if s.pending.Answers == nil {
			s.pending.Answers = make(map[string]string)
		}
		for k, v := range update.Answers {
			s.pending.Answers[k] = v
		}
	}
	if update.Flags != nil {
		if s.pending.Flags == nil {
			s.pending.Flags = make(map[string]bool)
		}
		for k, v := range update.Flags {
			s.pending.Flags[k] = v
		}
	}
	if update.CurrentIndex != nil {
		s.pending.CurrentIndex = update.CurrentIndex
	}
	if update.RemainingTime != nil {
		s.pending.RemainingTime = update.RemainingTime
	}
}

// flushPending takes ownership of the pending update and writes it, retrying
// with exponential backoff. Ownership transfer happens under the lock: saves
// that arrive while the write is in flight start a fresh pending update (with
// their own maps, so the flushed snapshot is never shared) and flush on their
// own debounce. On exhaustion the failed update is folded back in underneath
// any newer saves, and the error is surfaced via Status.
func (s *ProgressSaver) flushPending() error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil
	}
	update := *s.pending
	s.pending = nil
	s.inFlight++
	s.mu.Unlock()

	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoffBase << (attempt - 1))
		}
		if err = s.flush(update); err == nil {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if err != nil {
		// Saves that raced the flush are newer; they win key-by-key.
		newer := s.pending
		s.pending = &update
		if newer != nil {
			s.mergeLocked(*newer)
		}
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	return nil
}

// StartTimerSync installs the periodic heartbeat persisting only the remaining
// time. It is independent of the debounce timer and deliberately does not
// update lastErr: a failed background sync is not a user-facing save failure.
// The goroutine retires itself once the attempt is over, either because the
// clock ran out or because the record reports the attempt completed, so
// abandoned attempts do not keep ticking forever.
func (s *ProgressSaver) StartTimerSync(interval time.Duration, getRemaining func() int) {
	s.mu.Lock()
	if s.closed || s.stopBeat != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stopBeat = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				remaining := getRemaining()
				if remaining < 0 {
					remaining = 0
				}
				err := s.heartbeat(remaining)
				if err != nil && !errors.Is(err, ErrAttemptCompleted) {
					log.Warn().Err(err).Msg("Timer heartbeat write failed")
				}
				if remaining == 0 || errors.Is(err, ErrAttemptCompleted) {
					return
				}
			}
		}
	}()
}

func (s *ProgressSaver) Status() dto.SaveStatusDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := dto.SaveStatusDTO{Pending: s.pending != nil || s.inFlight > 0}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// Close cancels both the debounce timer and the heartbeat. Further saves are
// rejected.
func (s *ProgressSaver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.stopBeat != nil {
		close(s.stopBeat)
		s.stopBeat = nil
	}
}
