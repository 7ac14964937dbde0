package service

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/vinodekumar123/Tayyari-hub-sub004/config"
	"github.com/vinodekumar123/Tayyari-hub-sub004/internal/dto"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiLLMService wraps the generative and embedding models used by the
// tutor pipeline.
type GeminiLLMService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// GenerateStream produces the answer incrementally, invoking onChunk for
	// each token batch as it arrives. The consumer stops the stream by
	// returning an error from onChunk or cancelling the context.
	GenerateStream(ctx context.Context, prompt string, history []dto.ChatTurn, onChunk func(text string) error) error
}

type geminiLLMService struct {
	client *genai.Client
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiLLMService{client: client, cfg: cfg}, nil
}

func (s *geminiLLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}
	em := s.client.EmbeddingModel(s.cfg.Tutor.EmbeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		log.Error().Err(err).Msg("Gemini embedding request failed")
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini returned an empty embedding")
	}
	return res.Embedding.Values, nil
}

func (s *geminiLLMService) GenerateStream(ctx context.Context, prompt string, history []dto.ChatTurn, onChunk func(text string) error) error {
	if s.client == nil {
		return fmt.Errorf("gemini client not initialized")
	}
	gm := s.client.GenerativeModel(s.cfg.Tutor.GenerativeModel)

	cs := gm.StartChat()
	cs.History = make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	iter := cs.SendMessageStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			log.Error().Err(err).Msg("Gemini streaming error")
			return fmt.Errorf("generation stream: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					if err := onChunk(string(txt)); err != nil {
						return err
					}
				}
			}
		}
	}
}
