package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gita-search-api/internal/models"
	"github.com/gita-search-api/internal/repository"
	pkgservices "github.com/gita-search-api/pkg/schema/services"
)

// RankingStrategy selects how retrieved candidates are ordered. One
// strategy is chosen at startup for the whole deployment; the
// strategies are mutually exclusive.
type RankingStrategy string

const (
	// StrategySemanticOnly ranks by the store's similarity score alone.
	StrategySemanticOnly RankingStrategy = "semantic_only"
	// StrategySemanticKeyword blends similarity with a lexical
	// term-overlap boost. The default.
	StrategySemanticKeyword RankingStrategy = "semantic_plus_keyword"
	// StrategySemanticRerank rescores the shortlist with a
	// cross-encoder; the rerank score replaces the combined score
	// entirely.
	StrategySemanticRerank RankingStrategy = "semantic_plus_rerank"
)

// ParseRankingStrategy validates a configured strategy name.
func ParseRankingStrategy(s string) (RankingStrategy, error) {
	switch RankingStrategy(s) {
	case StrategySemanticOnly, StrategySemanticKeyword, StrategySemanticRerank:
		return RankingStrategy(s), nil
	case "":
		return StrategySemanticKeyword, nil
	}
	return "", fmt.Errorf("unknown ranking strategy %q", s)
}

// keywordWeight caps the lexical signal's influence well below one
// unit of semantic score: keyword overlap breaks close ties, it never
// overrides a strong semantic mismatch.
const keywordWeight = 0.15

const (
	minChapter = 1
	maxChapter = 18
)

// ErrInvalidReference marks an out-of-range chapter/verse reference,
// distinct from a reference that is merely absent from the corpus.
var ErrInvalidReference = errors.New("chapter must be 1-18 and verse must be >= 1")

// QueryEmbedder is the slice of the embeddings service the matcher
// needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// MatchConfig tunes the retrieval pipeline.
type MatchConfig struct {
	Strategy   RankingStrategy
	TopK       int // candidates fetched per query
	Dimension  int // store vector dimension, for lookup placeholders
	MaxRelated int // related verses returned alongside the main match
}

// MatchService is the retrieval and ranking pipeline: embed the query,
// fetch candidates from the vector store, score them under the
// configured strategy, and select the best match plus related verses.
type MatchService struct {
	store    repository.VectorStore
	embedder QueryEmbedder
	reranker pkgservices.Reranker
	cfg      MatchConfig
}

// NewMatchService constructs the pipeline. reranker may be nil unless
// the strategy is semantic_plus_rerank.
func NewMatchService(store repository.VectorStore, embedder QueryEmbedder, reranker pkgservices.Reranker, cfg MatchConfig) *MatchService {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategySemanticKeyword
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 8
	}
	if cfg.MaxRelated <= 0 {
		cfg.MaxRelated = 3
	}
	return &MatchService{store: store, embedder: embedder, reranker: reranker, cfg: cfg}
}

// Match returns the best verse for the query plus up to MaxRelated
// distinct related verses, or (nil, nil) when the store has no
// candidates.
func (s *MatchService) Match(ctx context.Context, query string) (*models.MatchResult, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := s.store.Query(ctx, vector, s.cfg.TopK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	candidates := make([]models.Candidate, len(scored))
	for i, sv := range scored {
		candidates[i] = models.Candidate{
			Verse:         sv.Verse,
			SemanticRank:  i,
			SemanticScore: sv.Score,
			CombinedScore: sv.Score,
		}
	}

	switch s.cfg.Strategy {
	case StrategySemanticKeyword:
		applyKeywordBoost(query, candidates)
	case StrategySemanticRerank:
		if err := s.applyRerank(ctx, query, candidates); err != nil {
			return nil, fmt.Errorf("rerank candidates: %w", err)
		}
	}

	// Stable sort keeps the store's semantic-rank order for ties, so
	// identical inputs always produce identical output order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})

	return s.buildResult(candidates), nil
}

// applyKeywordBoost blends a lexical term-overlap signal into the
// combined score of every candidate.
func applyKeywordBoost(query string, candidates []models.Candidate) {
	terms := queryTerms(query)
	for i := range candidates {
		c := &candidates[i]
		text := strings.ToLower(c.Translation + " " + c.Summary)
		c.KeywordBoost = keywordBoost(terms, text)
		c.CombinedScore = c.SemanticScore + c.KeywordBoost*keywordWeight
	}
}

// applyRerank replaces every candidate's combined score with a
// cross-encoder relevance score; the semantic and lexical signals do
// not blend in.
func (s *MatchService) applyRerank(ctx context.Context, query string, candidates []models.Candidate) error {
	if s.reranker == nil {
		return fmt.Errorf("reranker not configured")
	}
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Translation + " " + c.Summary
	}
	scores, err := s.reranker.Score(ctx, query, texts)
	if err != nil {
		return err
	}
	for i := range candidates {
		candidates[i].RerankScore = scores[i]
		candidates[i].CombinedScore = scores[i]
	}
	return nil
}

// buildResult takes ranked candidates and assembles the main match
// plus up to MaxRelated related verses, deduplicated by
// (chapter, verse). Never pads: fewer distinct candidates means a
// shorter related list.
func (s *MatchService) buildResult(ranked []models.Candidate) *models.MatchResult {
	best := ranked[0]
	result := &models.MatchResult{
		VerseResult: models.VerseResult{
			Chapter:              best.Chapter,
			Verse:                best.Verse.Verse,
			Translation:          best.Translation,
			SummarizedCommentary: best.Summary,
			FullCommentary:       best.Commentary,
		},
		Related: []models.VerseResult{},
	}

	type key struct{ chapter, verse int }
	seen := map[key]bool{{best.Chapter, best.Verse.Verse}: true}

	for _, c := range ranked[1:] {
		if len(result.Related) >= s.cfg.MaxRelated {
			break
		}
		k := key{c.Chapter, c.Verse.Verse}
		if seen[k] {
			continue
		}
		seen[k] = true
		result.Related = append(result.Related, models.VerseResult{
			Chapter:              c.Chapter,
			Verse:                c.Verse.Verse,
			Translation:          c.Translation,
			SummarizedCommentary: c.Summary,
		})
	}
	return result
}

// Lookup fetches a single verse by its exact (chapter, verse) key via
// a metadata-filtered query; no similarity is involved, so a zero
// placeholder vector is passed. Returns (nil, nil) when the verse does
// not exist and ErrInvalidReference when the key is out of range.
func (s *MatchService) Lookup(ctx context.Context, chapter, verse int) (*models.VerseResult, error) {
	if chapter < minChapter || chapter > maxChapter || verse < 1 {
		return nil, ErrInvalidReference
	}

	placeholder := make([]float32, s.cfg.Dimension)
	filter := &repository.Filter{Chapter: &chapter, Verse: &verse}

	scored, err := s.store.Query(ctx, placeholder, 1, filter)
	if err != nil {
		return nil, fmt.Errorf("lookup verse: %w", err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	v := scored[0].Verse
	return &models.VerseResult{
		Chapter:              v.Chapter,
		Verse:                v.Verse,
		Translation:          v.Translation,
		SummarizedCommentary: v.Summary,
		FullCommentary:       v.Commentary,
	}, nil
}
