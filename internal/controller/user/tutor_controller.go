package user

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/service"
)

type TutorController struct {
	tutorService service.TutorService
}

func NewTutorController(ts service.TutorService) *TutorController {
	return &TutorController{tutorService: ts}
}

// Ask godoc
// @Summary (User) Ask the AI tutor a question
// @Description Streams the answer. Status markers are sent as "data:" JSON lines; answer text is streamed raw in between. Classification metadata is exposed in X-Intent, X-Subject and X-Confidence headers.
// @Tags User - Tutor
// @Accept json
// @Produce text/event-stream
// @Param request body dto.TutorAskRequest true "Question with optional conversation history"
// @Success 200 {string} string "streamed response"
// @Failure 400 {object} dto.ErrorResponse
// @Router /tutor/ask [post]
func (c *TutorController) Ask(ctx *gin.Context) {
	var req dto.TutorAskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	w := ctx.Writer
	flush := func() {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	wroteBody := false

	onReady := func(meta service.TutorMeta) {
		// Headers must go out before the first body byte.
		ctx.Header("Content-Type", "text/event-stream")
		ctx.Header("Cache-Control", "no-cache")
		ctx.Header("X-Intent", meta.Intent)
		ctx.Header("X-Subject", meta.Subject)
		ctx.Header("X-Confidence", meta.Confidence)
		w.WriteHeader(http.StatusOK)
		wroteBody = true

		status := "found"
		switch {
		case meta.Blocked:
			status = "blocked"
		case meta.FromCache:
			status = "cached"
		case len(meta.Sources) == 0:
			status = "no_context"
		}
		writeMarker(w, gin.H{
			"status":     status,
			"intent":     meta.Intent,
			"subject":    meta.Subject,
			"confidence": meta.Confidence,
			"sources":    meta.Sources,
		})
		writeMarker(w, gin.H{"status": "writing"})
		flush()
	}

	emit := func(chunk string) error {
		if _, err := fmt.Fprint(w, chunk); err != nil {
			return err
		}
		flush()
		return nil
	}

	result, err := c.tutorService.Ask(ctx.Request.Context(), req, onReady, emit)
	if err != nil {
		log.Error().Err(err).Str("userID", req.UserID).Msg("Tutor Ask: pipeline error")
		if !wroteBody {
			respondServiceError(ctx, err)
			return
		}
		// Mid-stream failure: the status line is gone, signal in-band.
		writeMarker(w, gin.H{"status": "error", "message": "generation failed"})
		flush()
		return
	}

	writeMarker(w, gin.H{"status": "done", "log_id": result.LogID, "latency_ms": result.LatencyMS})
	flush()
}

// writeMarker emits one "data:" JSON line, newline-delimited so clients can
// split markers from raw answer text.
func writeMarker(w http.ResponseWriter, payload gin.H) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "\ndata: %s\n\n", raw)
}

// Feedback godoc
// @Summary (User) Rate a tutor answer
// @Tags User - Tutor
// @Accept json
// @Param request body dto.TutorFeedbackRequest true "Log ID and feedback"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Router /tutor/feedback [post]
func (c *TutorController) Feedback(ctx *gin.Context) {
	var req dto.TutorFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.tutorService.Feedback(req.LogID, req.Feedback); err != nil {
		log.Warn().Err(err).Str("logID", req.LogID).Msg("Tutor Feedback: Service error")
		respondServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
