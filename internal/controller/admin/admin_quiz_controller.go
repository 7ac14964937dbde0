package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/service"
)

type AdminQuizController struct {
	quizService service.QuizService
}

func NewAdminQuizController(qs service.QuizService) *AdminQuizController {
	return &AdminQuizController{quizService: qs}
}

func respondAdminError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: []string{err.Error()}})
	case errors.Is(err, service.ErrQuizNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Quiz not found"})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error", Details: []string{err.Error()}})
	}
}

// CreateQuiz godoc
// @Summary (Admin) Create a quiz with its questions
// @Description Creates the quiz, its question set and series links in one call. Each question's correct answer must be among its options.
// @Tags Admin - Quizzes
// @Accept json
// @Produce json
// @Param quiz body dto.QuizCreateDTO true "Quiz definition"
// @Success 201 {object} dto.QuizAdminDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/quizzes [post]
func (c *AdminQuizController) CreateQuiz(ctx *gin.Context) {
	var req dto.QuizCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateQuiz: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	created, err := c.quizService.CreateQuiz(req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateQuiz: Service error")
		respondAdminError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// SetPublished godoc
// @Summary (Admin) Publish or unpublish a quiz
// @Tags Admin - Quizzes
// @Accept json
// @Param quiz_id path int true "Quiz ID"
// @Param body body object{published=bool} true "Published flag"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/quizzes/{quiz_id}/publish [patch]
func (c *AdminQuizController) SetPublished(ctx *gin.Context) {
	quizID, err := strconv.ParseUint(ctx.Param("quiz_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Quiz ID format"})
		return
	}

	var body struct {
		Published *bool `json:"published" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.quizService.SetPublished(uint(quizID), *body.Published); err != nil {
		log.Error().Err(err).Uint64("quizID", quizID).Msg("Admin SetPublished: Service error")
		respondAdminError(ctx, err)
		return
	}
	log.Info().Uint64("quizID", quizID).Bool("published", *body.Published).Msg("Quiz publish state changed")
	ctx.Status(http.StatusNoContent)
}

// SetGraceMark godoc
// @Summary (Admin) Grace-mark a disputed question
// @Description Flags a question so every future submission scores it as correct. Already-stored results are not rescored.
// @Tags Admin - Quizzes
// @Accept json
// @Param question_id path int true "Question ID"
// @Param body body object{grace_mark=bool} true "Grace mark flag"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/questions/{question_id}/grace-mark [patch]
func (c *AdminQuizController) SetGraceMark(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}

	var body struct {
		GraceMark *bool `json:"grace_mark" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.quizService.SetGraceMark(uint(questionID), *body.GraceMark); err != nil {
		log.Error().Err(err).Uint64("questionID", questionID).Msg("Admin SetGraceMark: Service error")
		respondAdminError(ctx, err)
		return
	}
	log.Info().Uint64("questionID", questionID).Bool("graceMark", *body.GraceMark).Msg("Question grace mark changed")
	ctx.Status(http.StatusNoContent)
}
