package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/model"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/repository"
)

// KnowledgeService ingests study material chunks for the tutor's retrieval
// index. Each chunk is embedded once at ingest time.
type KnowledgeService interface {
	Ingest(ctx context.Context, req dto.KnowledgeCreateDTO) (*model.KnowledgeChunk, error)
}

type knowledgeService struct {
	llm           GeminiLLMService
	knowledgeRepo repository.KnowledgeRepository
}

func NewKnowledgeService(llm GeminiLLMService, knowledgeRepo repository.KnowledgeRepository) KnowledgeService {
	return &knowledgeService{llm: llm, knowledgeRepo: knowledgeRepo}
}

func (s *knowledgeService) Ingest(ctx context.Context, req dto.KnowledgeCreateDTO) (*model.KnowledgeChunk, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrInvalidRequest
	}

	embedding, err := s.llm.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embedding knowledge chunk: %w", err)
	}

	chunk := &model.KnowledgeChunk{
		Content:  content,
		Type:     req.Type,
		Subject:  strings.ToLower(req.Subject),
		BookName: req.BookName,
		Chapter:  req.Chapter,
		Page:     req.Page,
	}
	chunk.SetEmbeddingVector(embedding)
	if err := s.knowledgeRepo.Create(chunk); err != nil {
		return nil, fmt.Errorf("storing knowledge chunk: %w", err)
	}
	log.Info().Uint("chunkID", chunk.ID).Str("type", chunk.Type).Str("subject", chunk.Subject).Msg("Knowledge chunk ingested")
	return chunk, nil
}
