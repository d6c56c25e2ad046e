// Package config holds configuration shared between the API server and
// the offline ingestion scripts: vector store settings, embedding
// provider settings, and batch processing constants.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds store, model, and ingestion configuration.
type Config struct {
	// Vector store backend: "qdrant" or "pgvector"
	VectorBackend string

	// Qdrant (when VectorBackend = "qdrant")
	QdrantAddr       string
	QdrantCollection string

	// PostgreSQL (when VectorBackend = "pgvector")
	PostgresURI string

	// Every store call is a blocking network round-trip; bound it.
	StoreTimeout time.Duration

	// Embeddings
	EmbeddingProvider   string // "custom" or "vertex"
	EmbeddingServiceURL string // for the custom HTTP provider
	EmbeddingDimensions int

	// Vertex AI (when EmbeddingProvider = "vertex")
	GCPProjectID string
	GCPLocation  string
	VertexModel  string

	// Gemini model used for commentary summarization during ingestion
	GeminiModel string

	// Cross-encoder reranker service (semantic_plus_rerank strategy)
	RerankerServiceURL string

	// Ingestion
	MaxWorkers      int
	BatchSize       int
	SummaryMaxChars int
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		VectorBackend: getEnv("VECTOR_BACKEND", "qdrant"),

		QdrantAddr:       getEnv("QDRANT_ADDR", "localhost:6334"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "gita"),

		PostgresURI: getEnv("POSTGRES_URI", ""),

		StoreTimeout: time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 10)) * time.Second,

		EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "custom"),
		EmbeddingServiceURL: getEnv("EMBEDDING_SERVICE_URL", "http://localhost:8001"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),

		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),
		GCPLocation:  getEnv("GCP_LOCATION", "us-central1"),
		VertexModel:  getEnv("VERTEX_MODEL", "text-embedding-005"),

		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		RerankerServiceURL: getEnv("RERANKER_SERVICE_URL", "http://localhost:8002"),

		MaxWorkers:      getEnvInt("MAX_WORKERS", 10),
		BatchSize:       getEnvInt("BATCH_SIZE", 100),
		SummaryMaxChars: getEnvInt("SUMMARY_MAX_CHARS", 1000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return i
	}
	return defaultValue
}
