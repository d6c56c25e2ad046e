// export dumps the vector store's corpus back into the flat-file
// layout (one JSON file per verse under a per-chapter directory). A
// re-loaded export reproduces chapter, verse, translation, and
// commentary exactly, so it doubles as a backup of the serving index.
//
// Usage:
//
//	go run ./scripts/export -output data-export
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/gita-search-api/internal/bootstrap"
	"github.com/gita-search-api/internal/corpus"
	schemaconfig "github.com/gita-search-api/pkg/schema/config"
)

const (
	maxChapters         = 18
	maxVersesPerChapter = 49
	fetchBatchSize      = 100
)

func main() {
	output := flag.String("output", "data-export", "output corpus directory")
	flag.Parse()

	godotenv.Load()

	cfg := schemaconfig.Load()
	ctx := context.Background()

	store, closeStore, err := bootstrap.NewVectorStore(ctx, cfg, "")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vector store")
	}
	defer closeStore()

	exported := 0
	for chapter := 1; chapter <= maxChapters; chapter++ {
		ids := make([]string, 0, maxVersesPerChapter)
		for verse := 1; verse <= maxVersesPerChapter; verse++ {
			ids = append(ids, fmt.Sprintf("ch%d_v%d", chapter, verse))
		}

		for start := 0; start < len(ids); start += fetchBatchSize {
			end := min(start+fetchBatchSize, len(ids))
			records, err := store.Fetch(ctx, ids[start:end])
			if err != nil {
				log.Fatal().Err(err).Int("chapter", chapter).Msg("fetch failed")
			}
			for _, rec := range records {
				if err := corpus.WriteVerse(*output, rec.Verse); err != nil {
					log.Fatal().Err(err).Str("id", rec.ID()).Msg("write failed")
				}
				exported++
			}
		}
	}

	log.Info().Int("verses", exported).Str("dir", *output).Msg("export complete")
}
