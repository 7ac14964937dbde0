package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/service"
)

type AdminKnowledgeController struct {
	knowledgeService service.KnowledgeService
	tutorService     service.TutorService
}

func NewAdminKnowledgeController(ks service.KnowledgeService, ts service.TutorService) *AdminKnowledgeController {
	return &AdminKnowledgeController{knowledgeService: ks, tutorService: ts}
}

// IngestKnowledge godoc
// @Summary (Admin) Ingest a study material chunk
// @Description Stores one book or syllabus chunk for tutor retrieval. The embedding is computed at ingest time.
// @Tags Admin - Knowledge
// @Accept json
// @Produce json
// @Param chunk body dto.KnowledgeCreateDTO true "Chunk content and source metadata"
// @Success 201 {object} model.KnowledgeChunk
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/knowledge [post]
func (c *AdminKnowledgeController) IngestKnowledge(ctx *gin.Context) {
	var req dto.KnowledgeCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	chunk, err := c.knowledgeService.Ingest(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("type", req.Type).Str("subject", req.Subject).Msg("Admin IngestKnowledge: Service error")
		respondAdminError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, chunk)
}

// GetTutorLogs godoc
// @Summary (Admin) Recent tutor conversation logs
// @Description PII-scrubbed tutor exchanges, newest first.
// @Tags Admin - Knowledge
// @Produce json
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} model.ConversationLog
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/tutor-logs [get]
func (c *AdminKnowledgeController) GetTutorLogs(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val < 0 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid limit format"})
			return
		}
		limit = val
	}

	logs, err := c.tutorService.RecentLogs(limit)
	if err != nil {
		log.Error().Err(err).Msg("Admin GetTutorLogs: Service error")
		respondAdminError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, logs)
}
