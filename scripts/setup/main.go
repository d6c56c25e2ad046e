// setup prepares the configured vector store backend for ingestion.
//
// For Qdrant it creates the collection (cosine distance, configured
// dimension) and integer payload indexes on chapter and verse so
// exact-reference lookups stay fast. For pgvector it creates the
// extension and the verses table.
//
// Usage:
//
//	go run ./scripts/setup
package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	schemaconfig "github.com/gita-search-api/pkg/schema/config"
	"github.com/gita-search-api/pkg/schema/db"
)

func main() {
	godotenv.Load()

	cfg := schemaconfig.Load()
	ctx := context.Background()

	var err error
	switch cfg.VectorBackend {
	case "qdrant":
		err = setupQdrant(ctx, cfg)
	case "pgvector":
		err = setupPostgres(ctx, cfg)
	default:
		err = fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("setup failed")
	}
	log.Info().Str("backend", cfg.VectorBackend).Msg("setup complete")
}

func setupQdrant(ctx context.Context, cfg *schemaconfig.Config) error {
	conn, err := grpc.NewClient(cfg.QdrantAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial qdrant: %w", err)
	}
	defer conn.Close()

	collections := qdrant.NewCollectionsClient(conn)

	_, err = collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: cfg.QdrantCollection})
	if err == nil {
		log.Info().Str("collection", cfg.QdrantCollection).Msg("collection already exists")
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("check collection: %w", err)
	}

	_, err = collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: cfg.QdrantCollection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(cfg.EmbeddingDimensions),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	log.Info().Str("collection", cfg.QdrantCollection).Int("dimensions", cfg.EmbeddingDimensions).Msg("collection created")

	// Payload indexes back the exact-reference metadata filter.
	points := qdrant.NewPointsClient(conn)
	fieldType := qdrant.FieldType_FieldTypeInteger
	for _, field := range []string{"chapter", "verse"} {
		_, err := points.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: cfg.QdrantCollection,
			FieldName:      field,
			FieldType:      &fieldType,
		})
		if err != nil {
			return fmt.Errorf("create %s payload index: %w", field, err)
		}
	}
	return nil
}

func setupPostgres(ctx context.Context, cfg *schemaconfig.Config) error {
	pgDB, err := db.ConnectPostgres(ctx, cfg.PostgresURI)
	if err != nil {
		return err
	}
	defer pgDB.Close()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS verses (
			id          text PRIMARY KEY,
			chapter     int NOT NULL,
			verse       int NOT NULL,
			translation text NOT NULL,
			commentary  text NOT NULL DEFAULT '',
			summary     text NOT NULL DEFAULT '',
			embedding   vector(%d),
			UNIQUE (chapter, verse)
		)`, cfg.EmbeddingDimensions),
		`CREATE INDEX IF NOT EXISTS verses_chapter_verse_idx ON verses (chapter, verse)`,
	}
	for _, stmt := range stmts {
		if _, err := pgDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec setup statement: %w", err)
		}
	}
	return nil
}
