package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Reranker scores (query, candidate text) pairs jointly with a
// cross-encoder model. Scores are model-defined (not necessarily 0-1);
// higher is better. More accurate but much costlier than comparing
// independently computed vectors, so it is only applied to the
// shortlist of retrieved candidates.
type Reranker interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// CrossEncoderReranker implements Reranker against a self-hosted HTTP
// cross-encoder service exposing /rerank.
type CrossEncoderReranker struct {
	baseURL    string
	httpClient *http.Client
}

// NewCrossEncoderReranker creates a reranker talking to the given
// service URL.
func NewCrossEncoderReranker(baseURL string) *CrossEncoderReranker {
	return &CrossEncoderReranker{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Score returns one relevance score per candidate text, in input order.
func (r *CrossEncoderReranker) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}

	jsonBody, err := json.Marshal(rerankRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call reranker service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reranker service returned %d: %s", resp.StatusCode, string(detail))
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(out.Scores) != len(texts) {
		return nil, fmt.Errorf("reranker returned %d scores for %d texts", len(out.Scores), len(texts))
	}
	return out.Scores, nil
}
