package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
	"gorm.io/gorm"
)

// QuizService covers the quiz catalogue for students and quiz authoring for
// admins. Student-facing reads never include the answer key.
type QuizService interface {
	ListPublished() ([]dto.QuizSummaryDTO, error)
	GetForAttempt(quizID uint, userID, userRole string) (*dto.QuizDetailDTO, error)
	CreateQuiz(req dto.QuizCreateDTO) (*dto.QuizAdminDTO, error)
	SetPublished(quizID uint, published bool) error
	SetGraceMark(questionID uint, graceMark bool) error
}

type quizService struct {
	quizRepo       repository.QuizRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewQuizService(quizRepo repository.QuizRepository, enrollmentRepo repository.EnrollmentRepository) QuizService {
	return &quizService{quizRepo: quizRepo, enrollmentRepo: enrollmentRepo}
}

func (s *quizService) ListPublished() ([]dto.QuizSummaryDTO, error) {
	rows, err := s.quizRepo.FindAllPublishedWithQuestionCount()
	if err != nil {
		return nil, fmt.Errorf("listing quizzes: %w", err)
	}
	summaries := make([]dto.QuizSummaryDTO, 0, len(rows))
	for _, row := range rows {
		var summary dto.QuizSummaryDTO
		if err := copier.Copy(&summary, &row.Quiz); err != nil {
			return nil, fmt.Errorf("mapping quiz %d: %w", row.Quiz.ID, err)
		}
		summary.QuestionCount = row.QuestionCount
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetForAttempt serves the question set a student sees when starting a quiz.
// Unpublished quizzes are invisible to non-admins, and series/paid quizzes
// require an active enrollment.
func (s *quizService) GetForAttempt(quizID uint, userID, userRole string) (*dto.QuizDetailDTO, error) {
	if quizID == 0 || userID == "" {
		return nil, ErrInvalidRequest
	}
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("loading quiz %d: %w", quizID, err)
	}
	if !quiz.Published && userRole != "admin" {
		return nil, ErrQuizNotFound
	}
	if err := verifyQuizAccess(s.enrollmentRepo, quiz, userID, userRole); err != nil {
		return nil, err
	}

	questions := make([]dto.QuestionPublicDTO, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		questions = append(questions, dto.QuestionPublicDTO{
			ID:       q.ID,
			Position: q.Position,
			Text:     q.Text,
			Options:  q.OptionList(),
			Subject:  q.Subject,
		})
	}
	return &dto.QuizDetailDTO{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Subject:         quiz.Subject,
		AccessType:      quiz.AccessType,
		DurationMinutes: quiz.DurationMinutes,
		Questions:       questions,
	}, nil
}

func (s *quizService) CreateQuiz(req dto.QuizCreateDTO) (*dto.QuizAdminDTO, error) {
	if err := validateQuizCreate(req); err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = model.SourceAdmin
	}

	quiz := &model.Quiz{
		Title:           req.Title,
		Subject:         req.Subject,
		AccessType:      req.AccessType,
		Source:          source,
		DurationMinutes: req.DurationMinutes,
		Published:       req.Published,
	}
	for _, q := range req.Questions {
		quiz.Questions = append(quiz.Questions, model.Question{
			Position:      q.Position,
			Text:          q.Text,
			Options:       model.EncodeJSONMap(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			GraceMark:     q.GraceMark,
			Subject:       q.Subject,
		})
	}
	for _, seriesID := range req.SeriesIDs {
		quiz.Series = append(quiz.Series, model.QuizSeries{SeriesID: seriesID})
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, fmt.Errorf("creating quiz: %w", err)
	}
	log.Info().Uint("quizID", quiz.ID).Str("title", quiz.Title).Int("questions", len(quiz.Questions)).Msg("Quiz created")
	return toQuizAdminDTO(quiz), nil
}

func (s *quizService) SetPublished(quizID uint, published bool) error {
	if quizID == 0 {
		return ErrInvalidRequest
	}
	if _, err := s.quizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("loading quiz %d: %w", quizID, err)
	}
	return s.quizRepo.SetPublished(quizID, published)
}

// SetGraceMark flags a disputed question so every submission scores it as
// correct. Already-finalized results are not rescored.
func (s *quizService) SetGraceMark(questionID uint, graceMark bool) error {
	if questionID == 0 {
		return ErrInvalidRequest
	}
	return s.quizRepo.SetGraceMark(questionID, graceMark)
}

func validateQuizCreate(req dto.QuizCreateDTO) error {
	if req.AccessType != model.AccessPublic && len(req.SeriesIDs) == 0 {
		return fmt.Errorf("%w: %s quiz needs at least one series", ErrInvalidRequest, req.AccessType)
	}
	positions := make(map[int]bool, len(req.Questions))
	for _, q := range req.Questions {
		if positions[q.Position] {
			return fmt.Errorf("%w: duplicate question position %d", ErrInvalidRequest, q.Position)
		}
		positions[q.Position] = true

		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: question %d correct answer is not among its options", ErrInvalidRequest, q.Position)
		}
	}
	return nil
}

func toQuizAdminDTO(quiz *model.Quiz) *dto.QuizAdminDTO {
	out := &dto.QuizAdminDTO{}
	_ = copier.Copy(out, quiz)
	out.Questions = make([]dto.QuestionAdminDTO, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		out.Questions = append(out.Questions, dto.QuestionAdminDTO{
			ID:            q.ID,
			Position:      q.Position,
			Text:          q.Text,
			Options:       q.OptionList(),
			CorrectAnswer: q.CorrectAnswer,
			GraceMark:     q.GraceMark,
			Subject:       q.Subject,
		})
	}
	out.SeriesIDs = make([]string, 0, len(quiz.Series))
	for _, qs := range quiz.Series {
		out.SeriesIDs = append(out.SeriesIDs, qs.SeriesID)
	}
	return out
}
