package services

import "context"

// TaskType distinguishes query-intent from document-intent encoding.
// Instruction-tuned embedding models perform better when the two sides
// of retrieval are prefixed differently.
type TaskType string

const (
	TaskTypeQuery    TaskType = "RETRIEVAL_QUERY"
	TaskTypeDocument TaskType = "RETRIEVAL_DOCUMENT"
)

// Embedder defines the interface for text embedding backends. Both
// methods must be deterministic: encoding the same text twice yields
// the same vector.
type Embedder interface {
	// Embed generates an embedding for a single text with the given task type.
	Embed(ctx context.Context, text string, taskType TaskType) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts with the given task type.
	EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error)
}
