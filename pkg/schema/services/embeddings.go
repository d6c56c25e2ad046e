package services

import (
	"context"
	"fmt"
	"strings"
)

// EmbeddingsService wraps a pluggable Embedder backend and enforces
// the invariants of the serving pipeline: inputs must be non-empty and
// every vector must match the store's configured dimension.
type EmbeddingsService struct {
	embedder Embedder
	dim      int
}

// NewEmbeddingsService creates the service. dim is the vector store's
// configured dimension; vectors of any other length are rejected.
func NewEmbeddingsService(embedder Embedder, dim int) *EmbeddingsService {
	return &EmbeddingsService{embedder: embedder, dim: dim}
}

// EmbedQuery encodes a user question for retrieval.
func (s *EmbeddingsService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.embed(ctx, query, TaskTypeQuery)
}

// EmbedDocument encodes verse text (translation plus commentary or
// summary) for storage.
func (s *EmbeddingsService) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, TaskTypeDocument)
}

// EmbedDocuments encodes a batch of verse texts for storage.
func (s *EmbeddingsService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("empty text at index %d", i)
		}
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts, TaskTypeDocument)
	if err != nil {
		return nil, err
	}
	for i, vec := range vectors {
		if err := s.checkDimension(vec); err != nil {
			return nil, fmt.Errorf("embedding %d: %w", i, err)
		}
	}
	return vectors, nil
}

func (s *EmbeddingsService) embed(ctx context.Context, text string, taskType TaskType) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	vec, err := s.embedder.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	if err := s.checkDimension(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (s *EmbeddingsService) checkDimension(vec []float32) error {
	if s.dim > 0 && len(vec) != s.dim {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), s.dim)
	}
	return nil
}
