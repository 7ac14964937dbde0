package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/service"
)

type QuizController struct {
	quizService       service.QuizService
	submissionService service.SubmissionService
}

func NewQuizController(qs service.QuizService, ss service.SubmissionService) *QuizController {
	return &QuizController{quizService: qs, submissionService: ss}
}

// Identity comes from headers until an auth layer fronts this API.
func callerIdentity(ctx *gin.Context) (userID, role string) {
	return ctx.GetHeader("X-User-ID"), ctx.GetHeader("X-User-Role")
}

func quizIDParam(ctx *gin.Context) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param("quiz_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Quiz ID format"})
		return 0, false
	}
	return uint(val), true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: []string{err.Error()}})
	case errors.Is(err, service.ErrAccessDenied):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: "Access denied: no active enrollment for this quiz"})
	case errors.Is(err, service.ErrQuizNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Quiz not found"})
	case errors.Is(err, service.ErrResultNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Result not found"})
	case errors.Is(err, service.ErrAttemptCompleted):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Attempt already completed"})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error", Details: []string{err.Error()}})
	}
}

// GetAllQuizzes godoc
// @Summary (User) List published quizzes
// @Description Catalogue of published quizzes with question counts.
// @Tags User - Quizzes
// @Produce json
// @Success 200 {array} dto.QuizSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes [get]
func (c *QuizController) GetAllQuizzes(ctx *gin.Context) {
	quizzes, err := c.quizService.ListPublished()
	if err != nil {
		log.Error().Err(err).Msg("User GetAllQuizzes: Service error")
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, quizzes)
}

// GetQuizDetails godoc
// @Summary (User) Get a quiz with its questions
// @Description Full quiz payload for starting an attempt. The answer key is never included.
// @Tags User - Quizzes
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param X-User-ID header string true "Caller user ID"
// @Success 200 {object} dto.QuizDetailDTO
// @Failure 403 {object} dto.ErrorResponse "No active enrollment"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{quiz_id} [get]
func (c *QuizController) GetQuizDetails(ctx *gin.Context) {
	quizID, ok := quizIDParam(ctx)
	if !ok {
		return
	}
	userID, role := callerIdentity(ctx)
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "X-User-ID header is required"})
		return
	}
	detail, err := c.quizService.GetForAttempt(quizID, userID, role)
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Str("userID", userID).Msg("User GetQuizDetails: Service error")
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// GetResult godoc
// @Summary (User) Get the result of a completed attempt
// @Tags User - Quizzes
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param X-User-ID header string true "Caller user ID"
// @Success 200 {object} dto.ResultDTO
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /quizzes/{quiz_id}/result [get]
func (c *QuizController) GetResult(ctx *gin.Context) {
	quizID, ok := quizIDParam(ctx)
	if !ok {
		return
	}
	userID, _ := callerIdentity(ctx)
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "X-User-ID header is required"})
		return
	}
	result, err := c.submissionService.GetResult(userID, quizID)
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Str("userID", userID).Msg("User GetResult: Service error")
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
