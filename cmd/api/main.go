package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gita-search-api/internal/bootstrap"
	"github.com/gita-search-api/internal/config"
	"github.com/gita-search-api/internal/corpus"
	"github.com/gita-search-api/internal/handlers"
	"github.com/gita-search-api/internal/middleware"
	"github.com/gita-search-api/internal/services"
	schemaconfig "github.com/gita-search-api/pkg/schema/config"
	pkgservices "github.com/gita-search-api/pkg/schema/services"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "gita-search-api").Logger()

	cfg := config.Load()
	schemaCfg := schemaconfig.Load()

	strategy, err := services.ParseRankingStrategy(cfg.RankingStrategy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Vector store backend
	store, closeStore, err := bootstrap.NewVectorStore(ctx, schemaCfg, "")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vector store")
	}
	log.Info().Str("backend", schemaCfg.VectorBackend).Msg("vector store ready")

	// Embedding backend, warmed before the listener starts so the
	// first request does not pay the load cost.
	embeddings, closeEmbedder, err := bootstrap.NewEmbeddings(ctx, schemaCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize embeddings service")
	}
	if _, err := embeddings.EmbedQuery(ctx, "warmup"); err != nil {
		log.Fatal().Err(err).Msg("embedding warm-up failed")
	}
	log.Info().Str("provider", schemaCfg.EmbeddingProvider).Msg("embedding backend ready")

	// Reranker only when the configured strategy needs it.
	var reranker pkgservices.Reranker
	if strategy == services.StrategySemanticRerank {
		reranker = pkgservices.NewCrossEncoderReranker(schemaCfg.RerankerServiceURL)
		log.Info().Str("url", schemaCfg.RerankerServiceURL).Msg("cross-encoder reranking enabled")
	}

	matcher := services.NewMatchService(store, embeddings, reranker, services.MatchConfig{
		Strategy:   strategy,
		TopK:       cfg.TopK,
		Dimension:  schemaCfg.EmbeddingDimensions,
		MaxRelated: cfg.MaxRelated,
	})

	// Corpus listing for client-side search, loaded once at startup.
	verses, err := corpus.LoadDir(cfg.DataDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.DataDir).Msg("corpus listing unavailable")
	}
	corpusCache := services.NewCorpusCache(verses)
	log.Info().Int("verses", corpusCache.Len()).Msg("corpus listing cached")

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	api := e.Group(cfg.APIPrefix)
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))

	handlers.NewHealthHandler().RegisterRoutes(api)
	handlers.NewQueryHandler(matcher, cfg.MaxQueryChars).RegisterRoutes(api)
	handlers.NewVerseHandler(matcher, corpusCache).RegisterRoutes(api)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info().Str("addr", addr).Str("strategy", string(strategy)).Msgf("starting %s v%s", cfg.APITitle, cfg.APIVersion)
		if err := e.Start(addr); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down server")
	}
	if err := closeStore(); err != nil {
		log.Error().Err(err).Msg("error closing vector store")
	}
	if err := closeEmbedder(); err != nil {
		log.Error().Err(err).Msg("error closing embedding backend")
	}

	log.Info().Msg("server stopped")
}
