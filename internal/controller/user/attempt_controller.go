package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/service"
)

type AttemptController struct {
	attemptService    service.AttemptService
	submissionService service.SubmissionService
}

func NewAttemptController(as service.AttemptService, ss service.SubmissionService) *AttemptController {
	return &AttemptController{attemptService: as, submissionService: ss}
}

// previewRequested is true only for admin callers asking for a preview; a
// student cannot opt out of persistence.
func previewRequested(ctx *gin.Context, role string) bool {
	return ctx.Query("preview") == "true" && role == "admin"
}

// StartAttempt godoc
// @Summary (User) Start or resume a quiz attempt
// @Description Creates a fresh attempt, resumes an in-progress one, or resets a completed one as a retake. Admins may pass preview=true for a throwaway session.
// @Tags User - Attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param X-User-ID header string true "Caller user ID"
// @Param preview query bool false "Admin-only preview session"
// @Success 200 {object} dto.AttemptDTO
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{quiz_id}/attempt [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	quizID, ok := quizIDParam(ctx)
	if !ok {
		return
	}
	userID, role := callerIdentity(ctx)
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "X-User-ID header is required"})
		return
	}

	attempt, err := c.attemptService.StartOrResume(userID, quizID, previewRequested(ctx, role))
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Str("userID", userID).Msg("User StartAttempt: Service error")
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// SaveProgress godoc
// @Summary (User) Save partial attempt progress
// @Description Debounced autosave write. Answers and flags merge into the stored maps; set immediate=true to bypass the debounce.
// @Tags User - Attempts
// @Accept json
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param X-User-ID header string true "Caller user ID"
// @Param progress body dto.ProgressUpdateDTO true "Partial progress"
// @Success 202 {object} dto.SaveStatusDTO
// @Failure 409 {object} dto.ErrorResponse "Attempt already completed"
// @Router /quizzes/{quiz_id}/attempt/progress [patch]
func (c *AttemptController) SaveProgress(ctx *gin.Context) {
	quizID, ok := quizIDParam(ctx)
	if !ok {
		return
	}
	userID, role := callerIdentity(ctx)
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "X-User-ID header is required"})
		return
	}

	var update dto.ProgressUpdateDTO
	if err := ctx.ShouldBindJSON(&update); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.attemptService.SaveProgress(userID, quizID, update, previewRequested(ctx, role)); err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Str("userID", userID).Msg("User SaveProgress: Service error")
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, c.attemptService.SaveStatus(userID, quizID))
}

// Heartbeat godoc
// @Summary (User) Sync the attempt timer
// @Description Persists remaining time only. Independent of the autosave debounce.
// @Tags User - Attempts
// @Accept json
// @Param quiz_id path int true "Quiz ID"
// @Param X-User-ID header string true "Caller user ID"
// @Param heartbeat body dto.HeartbeatDTO true "Remaining seconds"
// @Success 204
// @Failure 409 {object} dto.ErrorResponse "Attempt already completed"
// @Router /quizzes/{quiz_id}/attempt/heartbeat [post]
func (c *AttemptController) Heartbeat(ctx *gin.Context) {
	quizID, ok := quizIDParam(ctx)
	if !ok {
		return
	}
	userID, _ := callerIdentity(ctx)
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "X-User-ID header is required"})
		return
	}

	var hb dto.HeartbeatDTO
	if err := ctx.ShouldBindJSON(&hb); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.attemptService.Heartbeat(userID, quizID, hb.RemainingTime); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SaveStatus godoc
// @Summary (User) Autosave status for an attempt
// @Tags User - Attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param X-User-ID header string true "Caller user ID"
// @Success 200 {object} dto.SaveStatusDTO
// @Router /quizzes/{quiz_id}/attempt/save-status [get]
func (c *AttemptController) SaveStatus(ctx *gin.Context) {
	quizID, ok := quizIDParam(ctx)
	if !ok {
		return
	}
	userID, _ := callerIdentity(ctx)
	if userID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "X-User-ID header is required"})
		return
	}
	ctx.JSON(http.StatusOK, c.attemptService.SaveStatus(userID, quizID))
}

// SubmitQuiz godoc
// @Summary (User) Submit a quiz attempt for scoring
// @Description Idempotent finalization: retries with the same timestamp replay the stored outcome. Scoring uses the server-held answer key.
// @Tags User - Attempts
// @Accept json
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param submission body dto.SubmitQuizRequest true "Answers and submission timestamp"
// @Success 200 {object} dto.SubmitQuizResponse
// @Failure 403 {object} dto.ErrorResponse "Enrollment lapsed"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{quiz_id}/submit [post]
func (c *AttemptController) SubmitQuiz(ctx *gin.Context) {
	quizID, ok := quizIDParam(ctx)
	if !ok {
		return
	}
	_, role := callerIdentity(ctx)

	var req dto.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().Uint("quizID", quizID).Str("userID", req.UserID).Int("answerCount", len(req.Answers)).Msg("Received quiz submission")

	resp, err := c.submissionService.Submit(quizID, req, role)
	if err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Str("userID", req.UserID).Msg("User SubmitQuiz: Service error")
		respondServiceError(ctx, err)
		return
	}

	// The attempt is finalized; stop its debounce timer and heartbeat.
	c.attemptService.CloseSaver(req.UserID, quizID)

	ctx.JSON(http.StatusOK, resp)
}
