// Package bootstrap wires configured backends for the API server and
// the offline scripts, so backend selection lives in one place instead
// of parallel switch statements.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/gita-search-api/internal/repository"
	"github.com/gita-search-api/internal/repository/postgres"
	"github.com/gita-search-api/internal/repository/qdrant"
	schemaconfig "github.com/gita-search-api/pkg/schema/config"
	"github.com/gita-search-api/pkg/schema/db"
	"github.com/gita-search-api/pkg/schema/services"
)

// NewVectorStore builds the configured vector store backend and
// returns it with a cleanup func for shutdown. collection overrides
// the configured Qdrant collection when non-empty (used by the
// migration script, which talks to two collections).
func NewVectorStore(ctx context.Context, cfg *schemaconfig.Config, collection string) (repository.VectorStore, func() error, error) {
	switch cfg.VectorBackend {
	case "qdrant":
		if collection == "" {
			collection = cfg.QdrantCollection
		}
		store, err := qdrant.NewStore(qdrant.Config{
			Addr:       cfg.QdrantAddr,
			Collection: collection,
			Timeout:    cfg.StoreTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "pgvector":
		pgDB, err := db.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(pgDB, cfg.StoreTimeout), pgDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
}

// NewEmbeddings builds the configured embedding backend wrapped in the
// dimension-checking service, with a cleanup func for shutdown.
func NewEmbeddings(ctx context.Context, cfg *schemaconfig.Config) (*services.EmbeddingsService, func() error, error) {
	switch cfg.EmbeddingProvider {
	case "vertex":
		embedder, err := services.NewVertexEmbedder(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.VertexModel)
		if err != nil {
			return nil, nil, err
		}
		return services.NewEmbeddingsService(embedder, cfg.EmbeddingDimensions), embedder.Close, nil
	case "custom":
		embedder := services.NewCustomEmbedder(cfg.EmbeddingServiceURL)
		return services.NewEmbeddingsService(embedder, cfg.EmbeddingDimensions), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
}
