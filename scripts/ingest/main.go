// ingest runs the full offline corpus ingestion: it loads the
// flat-file corpus, summarizes each verse's commentary with the
// summarization collaborator, embeds the verse text as a document, and
// batch-upserts the records into the vector store.
//
// A bounded worker pool processes verses in parallel. A failure on one
// verse is logged and skipped; it never aborts the run, and the final
// report counts successes against the corpus total.
//
// Usage:
//
//	go run ./scripts/ingest -data data
package main

import (
	"context"
	"flag"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gita-search-api/internal/bootstrap"
	"github.com/gita-search-api/internal/corpus"
	"github.com/gita-search-api/internal/models"
	schemaconfig "github.com/gita-search-api/pkg/schema/config"
	"github.com/gita-search-api/pkg/schema/services"
)

func main() {
	dataDir := flag.String("data", "data", "flat-file corpus directory")
	skipSummaries := flag.Bool("skip-summaries", false, "reuse commentary as-is instead of summarizing")
	flag.Parse()

	godotenv.Load()

	cfg := schemaconfig.Load()
	ctx := context.Background()

	verses, err := corpus.LoadDir(*dataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load corpus")
	}
	log.Info().Int("verses", len(verses)).Str("dir", *dataDir).Msg("corpus loaded")

	store, closeStore, err := bootstrap.NewVectorStore(ctx, cfg, "")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vector store")
	}
	defer closeStore()

	embeddings, closeEmbedder, err := bootstrap.NewEmbeddings(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize embeddings service")
	}
	defer closeEmbedder()

	var summarizer *services.Summarizer
	if !*skipSummaries {
		summarizer, err = services.NewSummarizer(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GeminiModel, cfg.SummaryMaxChars)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize summarizer")
		}
		defer summarizer.Close()
	}

	records := processVerses(ctx, verses, embeddings, summarizer, cfg.MaxWorkers)

	uploaded := 0
	for start := 0; start < len(records); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(records))
		batch := records[start:end]
		if err := store.Upsert(ctx, batch); err != nil {
			log.Error().Err(err).Int("batch_start", start).Int("batch_size", len(batch)).Msg("batch upsert failed")
			continue
		}
		uploaded += len(batch)
	}

	log.Info().
		Int("uploaded", uploaded).
		Int("total", len(verses)).
		Int("failed", len(verses)-uploaded).
		Msg("ingestion complete")
}

// processVerses summarizes and embeds every verse with a bounded
// worker pool. Failed items are logged and dropped from the result.
func processVerses(ctx context.Context, verses []models.Verse, embeddings *services.EmbeddingsService, summarizer *services.Summarizer, maxWorkers int) []models.VerseRecord {
	var (
		mu      sync.Mutex
		records []models.VerseRecord
	)

	g := &errgroup.Group{}
	g.SetLimit(maxWorkers)

	for _, verse := range verses {
		g.Go(func() error {
			rec, err := processVerse(ctx, verse, embeddings, summarizer)
			if err != nil {
				log.Warn().Err(err).Str("id", verse.ID()).Msg("skipping verse")
				return nil
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return records
}

func processVerse(ctx context.Context, verse models.Verse, embeddings *services.EmbeddingsService, summarizer *services.Summarizer) (models.VerseRecord, error) {
	if summarizer != nil {
		summary, err := summarizer.Summarize(ctx, verse.Commentary)
		if err != nil {
			return models.VerseRecord{}, err
		}
		verse.Summary = summary
	}

	vector, err := embeddings.EmbedDocument(ctx, verse.Translation+" "+verse.Commentary)
	if err != nil {
		return models.VerseRecord{}, err
	}

	return models.VerseRecord{Verse: verse, Embedding: vector}, nil
}
