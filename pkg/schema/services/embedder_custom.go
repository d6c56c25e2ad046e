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

// Instruction prefixes for the BGE family of embedding models. Only
// queries carry the asymmetric "searching" instruction; documents use
// the plain retrieval instruction. This is a policy of the configured
// model, not a universal requirement.
var taskTypeToInstruction = map[TaskType]string{
	TaskTypeQuery:    "Represent this sentence for searching relevant passages: ",
	TaskTypeDocument: "Represent this document for retrieval: ",
}

// CustomEmbedder implements Embedder against a self-hosted HTTP
// embedding service exposing /embed and /embed/batch.
type CustomEmbedder struct {
	baseURL    string
	httpClient *http.Client
}

// NewCustomEmbedder creates an embedder talking to the given service URL.
func NewCustomEmbedder(baseURL string) *CustomEmbedder {
	return &CustomEmbedder{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type embedRequest struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type embedBatchRequest struct {
	Texts       []string `json:"texts"`
	Instruction string   `json:"instruction"`
}

type embedBatchResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates an embedding for a single text.
func (e *CustomEmbedder) Embed(ctx context.Context, text string, taskType TaskType) ([]float32, error) {
	var resp embedResponse
	req := embedRequest{Text: text, Instruction: instructionFor(taskType)}
	if err := e.post(ctx, "/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}
	return resp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *CustomEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	var resp embedBatchResponse
	req := embedBatchRequest{Texts: texts, Instruction: instructionFor(taskType)}
	if err := e.post(ctx, "/embed/batch", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

func (e *CustomEmbedder) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call embedding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, string(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func instructionFor(taskType TaskType) string {
	if instruction, ok := taskTypeToInstruction[taskType]; ok {
		return instruction
	}
	return taskTypeToInstruction[TaskTypeDocument]
}
