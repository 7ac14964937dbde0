package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/config"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/cache"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Confidence levels reported for a tutor answer. Purely a function of which
// retrieval subsets produced hits, not of similarity magnitude.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

const (
	bookTopK     = 5
	syllabusTopK = 2
)

// TutorMeta is what the transport layer needs before any body bytes go out:
// headers and the initial status marker.
type TutorMeta struct {
	Intent     string
	Subject    string
	Confidence string
	Sources    []dto.SourceRef
	FromCache  bool
	Blocked    bool
}

// TutorAskResult is the final outcome of one tutor exchange.
type TutorAskResult struct {
	TutorMeta
	Response  string
	LogID     string
	LatencyMS int64
}

// cachedResponse is the memoized outcome replayed verbatim on a cache hit.
type cachedResponse struct {
	Text       string
	Subject    string
	Confidence string
	Sources    []dto.SourceRef
}

// TutorService runs the retrieval-augmented answer pipeline: intent
// classification, response cache, subject detection, embedding, parallel
// nearest-neighbor retrieval, streamed generation, and interaction logging.
type TutorService interface {
	// Ask drives one query through the pipeline. onReady fires exactly once,
	// before any chunk, with the metadata; emit receives response chunks as
	// they are produced.
	Ask(ctx context.Context, req dto.TutorAskRequest, onReady func(meta TutorMeta), emit func(chunk string) error) (*TutorAskResult, error)
	Feedback(logID, feedback string) error
	RecentLogs(limit int) ([]model.ConversationLog, error)
}

type tutorService struct {
	llm           GeminiLLMService
	knowledgeRepo repository.KnowledgeRepository
	logRepo       repository.ConversationLogRepository
	responses     *cache.TTLCache[cachedResponse]
	embeddings    *cache.TTLCache[[]float32]
	cfg           config.Tutor
}

func NewTutorService(
	llm GeminiLLMService,
	knowledgeRepo repository.KnowledgeRepository,
	logRepo repository.ConversationLogRepository,
	cfg *config.Config,
) TutorService {
	return &tutorService{
		llm:           llm,
		knowledgeRepo: knowledgeRepo,
		logRepo:       logRepo,
		responses:     cache.New[cachedResponse](cfg.Tutor.ResponseCacheSize, cfg.Tutor.CacheTTL),
		embeddings:    cache.New[[]float32](cfg.Tutor.EmbedCacheSize, cfg.Tutor.CacheTTL),
		cfg:           cfg.Tutor,
	}
}

func (s *tutorService) Ask(ctx context.Context, req dto.TutorAskRequest, onReady func(meta TutorMeta), emit func(chunk string) error) (*TutorAskResult, error) {
	if strings.TrimSpace(req.Message) == "" || req.UserID == "" {
		return nil, ErrInvalidRequest
	}
	started := time.Now()

	intent := ClassifyIntent(req.Message)

	// Practice questions are served by the quiz feature, never by the tutor.
	if intent == IntentPractice {
		meta := TutorMeta{Intent: intent, Confidence: ConfidenceLow, Blocked: true}
		onReady(meta)
		if err := emit(PracticeRefusalMessage); err != nil {
			return nil, err
		}
		return s.finish(req, meta, PracticeRefusalMessage, started), nil
	}

	normalized := normalizeQuery(req.Message)
	key := cacheKey(normalized)

	// Cache hit: replay verbatim, skip retrieval and generation entirely.
	if cached, ok := s.responses.Get(key); ok {
		meta := TutorMeta{
			Intent:     intent,
			Subject:    cached.Subject,
			Confidence: cached.Confidence,
			Sources:    cached.Sources,
			FromCache:  true,
		}
		onReady(meta)
		if err := emit(cached.Text); err != nil {
			return nil, err
		}
		return s.finish(req, meta, cached.Text, started), nil
	}

	subject := DetectSubject(req.Message)

	books, syllabus := s.retrieveContext(ctx, normalized, subject)

	confidence := ConfidenceLow
	switch {
	case len(books) > 0 && len(syllabus) > 0:
		confidence = ConfidenceHigh
	case len(books) > 0 || len(syllabus) > 0:
		confidence = ConfidenceMedium
	}

	sources := make([]dto.SourceRef, 0, len(books)+len(syllabus))
	for _, sc := range append(books, syllabus...) {
		sources = append(sources, dto.SourceRef{
			Type:     sc.chunk.Type,
			Subject:  sc.chunk.Subject,
			BookName: sc.chunk.BookName,
			Chapter:  sc.chunk.Chapter,
			Page:     sc.chunk.Page,
			Score:    math.Round(sc.score*1000) / 1000,
		})
	}

	meta := TutorMeta{Intent: intent, Subject: subject, Confidence: confidence, Sources: sources}
	onReady(meta)

	prompt := buildTutorPrompt(req.Message, intent, subject, books, syllabus)
	history := trimHistory(req.History, s.cfg.HistoryLimit)

	var full strings.Builder
	err := s.llm.GenerateStream(ctx, prompt, history, func(text string) error {
		full.WriteString(text)
		return emit(text)
	})
	if err != nil {
		// Partial streams are never cached; log the failed exchange and bail.
		s.appendLog(req, meta, fmt.Sprintf("[generation failed: %v]", err), started)
		return nil, fmt.Errorf("tutor generation: %w", err)
	}

	response := full.String()
	// Cache only after the stream completed cleanly.
	s.responses.Set(key, cachedResponse{
		Text:       response,
		Subject:    subject,
		Confidence: confidence,
		Sources:    sources,
	})

	return s.finish(req, meta, response, started), nil
}

func (s *tutorService) Feedback(logID, feedback string) error {
	if logID == "" || strings.TrimSpace(feedback) == "" {
		return ErrInvalidRequest
	}
	return s.logRepo.UpdateFeedback(logID, feedback)
}

func (s *tutorService) RecentLogs(limit int) ([]model.ConversationLog, error) {
	return s.logRepo.FindRecent(limit)
}

type scoredChunk struct {
	chunk model.KnowledgeChunk
	score float64
}

// retrieveContext embeds the query (reusing the embedding cache) and runs the
// book and syllabus nearest-neighbor searches in parallel. Failures degrade to
// empty context instead of failing the request.
func (s *tutorService) retrieveContext(ctx context.Context, normalized, subject string) (books, syllabus []scoredChunk) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.ContextTimeout)
	defer cancel()

	embedding, ok := s.embeddings.Get(normalized)
	if !ok {
		var err error
		embedding, err = s.llm.Embed(fetchCtx, normalized)
		if err != nil {
			log.Warn().Err(err).Msg("Query embedding unavailable; answering without retrieved context")
			return nil, nil
		}
		s.embeddings.Set(normalized, embedding)
	}

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		books, err = s.nearest(embedding, model.KnowledgeBook, subject, bookTopK)
		return err
	})
	eg.Go(func() error {
		var err error
		syllabus, err = s.nearest(embedding, model.KnowledgeSyllabus, subject, syllabusTopK)
		return err
	})
	if err := eg.Wait(); err != nil {
		log.Warn().Err(err).Msg("Knowledge retrieval failed; answering without retrieved context")
		return nil, nil
	}
	return books, syllabus
}

func (s *tutorService) nearest(embedding []float32, chunkType, subject string, topK int) ([]scoredChunk, error) {
	candidates, err := s.knowledgeRepo.FindByType(chunkType, subject)
	if err != nil {
		return nil, fmt.Errorf("loading %s chunks: %w", chunkType, err)
	}
	scored := make([]scoredChunk, 0, len(candidates))
	for _, c := range candidates {
		vec := c.EmbeddingVector()
		if len(vec) != len(embedding) {
			continue
		}
		scored = append(scored, scoredChunk{chunk: c, score: cosineSimilarity(embedding, vec)})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *tutorService) finish(req dto.TutorAskRequest, meta TutorMeta, response string, started time.Time) *TutorAskResult {
	logID := s.appendLog(req, meta, response, started)
	return &TutorAskResult{
		TutorMeta: meta,
		Response:  response,
		LogID:     logID,
		LatencyMS: time.Since(started).Milliseconds(),
	}
}

// appendLog records the exchange with PII-scrubbed text. Log failures are
// swallowed: the answer was already delivered.
func (s *tutorService) appendLog(req dto.TutorAskRequest, meta TutorMeta, response string, started time.Time) string {
	entry := &model.ConversationLog{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		UserName:   req.UserName,
		Query:      ScrubPII(req.Message),
		Response:   ScrubPII(response),
		Subject:    meta.Subject,
		Intent:     meta.Intent,
		Confidence: meta.Confidence,
		LatencyMS:  time.Since(started).Milliseconds(),
		FromCache:  meta.FromCache,
		Blocked:    meta.Blocked,
	}
	if err := s.logRepo.Create(entry); err != nil {
		log.Error().Err(err).Str("userID", req.UserID).Msg("Failed to append conversation log")
	}
	return entry.ID
}

func buildTutorPrompt(message, intent, subject string, books, syllabus []scoredChunk) string {
	var b strings.Builder
	b.WriteString("You are an expert exam-preparation tutor for entry-test students.\n")
	if subject != "" {
		b.WriteString(fmt.Sprintf("The question is about %s.\n", subject))
	}

	if len(books) > 0 || len(syllabus) > 0 {
		b.WriteString("\nUse the following study material as the primary source. Stay faithful to it.\n")
		for _, sc := range books {
			b.WriteString("\n[Book")
			if sc.chunk.BookName != "" {
				b.WriteString(": " + sc.chunk.BookName)
			}
			if sc.chunk.Chapter != "" {
				b.WriteString(", " + sc.chunk.Chapter)
			}
			b.WriteString("]\n")
			b.WriteString(sc.chunk.Content)
			b.WriteString("\n")
		}
		for _, sc := range syllabus {
			b.WriteString("\n[Syllabus]\n")
			b.WriteString(sc.chunk.Content)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("\nNo study material context is available for this question. Answer from general knowledge and say so if unsure.\n")
	}

	b.WriteString("\nStudent's question:\n")
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString(FormatInstruction(intent))
	return b.String()
}

func trimHistory(history []dto.ChatTurn, limit int) []dto.ChatTurn {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func cacheKey(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
