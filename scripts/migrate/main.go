// migrate re-embeds an existing collection into a new one, for
// embedding model upgrades that change the vector space (or its
// dimension). It fetches every stored record from the source
// collection, re-embeds translation plus summary as a document with
// the currently configured model, and upserts into the target.
//
// Usage:
//
//	go run ./scripts/migrate -target gita-v2
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/gita-search-api/internal/bootstrap"
	"github.com/gita-search-api/internal/models"
	schemaconfig "github.com/gita-search-api/pkg/schema/config"
)

// The corpus spans 18 chapters with fewer than 50 verses each, so the
// candidate ID space is enumerable.
const (
	maxChapters         = 18
	maxVersesPerChapter = 49
	fetchBatchSize      = 100
)

func main() {
	target := flag.String("target", "", "target collection name (required)")
	flag.Parse()

	godotenv.Load()

	if *target == "" {
		log.Fatal().Msg("-target is required")
	}

	cfg := schemaconfig.Load()
	ctx := context.Background()

	source, closeSource, err := bootstrap.NewVectorStore(ctx, cfg, "")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open source store")
	}
	defer closeSource()

	dest, closeDest, err := bootstrap.NewVectorStore(ctx, cfg, *target)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open target store")
	}
	defer closeDest()

	embeddings, closeEmbedder, err := bootstrap.NewEmbeddings(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize embeddings service")
	}
	defer closeEmbedder()

	// Fetch everything the source holds, batched to bound round-trips.
	ids := candidateIDs()
	var records []models.VerseRecord
	for start := 0; start < len(ids); start += fetchBatchSize {
		end := min(start+fetchBatchSize, len(ids))
		batch, err := source.Fetch(ctx, ids[start:end])
		if err != nil {
			log.Fatal().Err(err).Msg("fetch from source failed")
		}
		records = append(records, batch...)
	}
	log.Info().Int("records", len(records)).Msg("fetched source records")

	migrated := 0
	var batch []models.VerseRecord
	for _, rec := range records {
		vector, err := embeddings.EmbedDocument(ctx, rec.Translation+" "+rec.Summary)
		if err != nil {
			log.Warn().Err(err).Str("id", rec.ID()).Msg("skipping record")
			continue
		}
		rec.Embedding = vector

		batch = append(batch, rec)
		if len(batch) >= cfg.BatchSize {
			if err := dest.Upsert(ctx, batch); err != nil {
				log.Fatal().Err(err).Msg("upsert to target failed")
			}
			migrated += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := dest.Upsert(ctx, batch); err != nil {
			log.Fatal().Err(err).Msg("upsert to target failed")
		}
		migrated += len(batch)
	}

	log.Info().Int("migrated", migrated).Int("total", len(records)).Str("target", *target).Msg("migration complete")
}

func candidateIDs() []string {
	ids := make([]string, 0, maxChapters*maxVersesPerChapter)
	for chapter := 1; chapter <= maxChapters; chapter++ {
		for verse := 1; verse <= maxVersesPerChapter; verse++ {
			ids = append(ids, fmt.Sprintf("ch%d_v%d", chapter, verse))
		}
	}
	return ids
}
