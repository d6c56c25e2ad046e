package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gita-search-api/internal/models"
	"github.com/gita-search-api/internal/repository"
	pkgservices "github.com/gita-search-api/pkg/schema/services"
)

type fakeStore struct {
	results    []models.ScoredVerse
	err        error
	lastVector []float32
	lastTopK   int
	lastFilter *repository.Filter
}

func (f *fakeStore) Query(_ context.Context, vector []float32, topK int, filter *repository.Filter) ([]models.ScoredVerse, error) {
	f.lastVector = vector
	f.lastTopK = topK
	f.lastFilter = filter
	return f.results, f.err
}

func (f *fakeStore) Upsert(context.Context, []models.VerseRecord) error {
	return nil
}

func (f *fakeStore) Fetch(context.Context, []string) ([]models.VerseRecord, error) {
	return nil, nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vector, f.err
}

type fakeReranker struct {
	scores []float64
	err    error
}

func (f *fakeReranker) Score(_ context.Context, _ string, texts []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores[:len(texts)], nil
}

func scored(chapter, verse int, translation, summary string, score float64) models.ScoredVerse {
	return models.ScoredVerse{
		Verse: models.Verse{
			Chapter:     chapter,
			Verse:       verse,
			Translation: translation,
			Summary:     summary,
		},
		Score: score,
	}
}

func newMatcher(store *fakeStore, strategy RankingStrategy, reranker *fakeReranker) *MatchService {
	var r pkgservices.Reranker
	if reranker != nil {
		r = reranker
	}
	return NewMatchService(store, &fakeEmbedder{vector: make([]float32, 4)}, r, MatchConfig{
		Strategy:  strategy,
		Dimension: 4,
	})
}

func TestMatchNoCandidates(t *testing.T) {
	matcher := newMatcher(&fakeStore{}, StrategySemanticKeyword, nil)

	result, err := matcher.Match(context.Background(), "anything")
	require.NoError(t, err)
	assert.Nil(t, result, "empty retrieval is not-found, not an error")
}

func TestMatchStoreError(t *testing.T) {
	matcher := newMatcher(&fakeStore{err: errors.New("store down")}, StrategySemanticKeyword, nil)

	_, err := matcher.Match(context.Background(), "anything")
	require.Error(t, err)
}

func TestMatchRelatedDeduplicated(t *testing.T) {
	store := &fakeStore{results: []models.ScoredVerse{
		scored(2, 47, "first", "", 0.90),
		scored(2, 47, "duplicate of main", "", 0.85),
		scored(3, 5, "second", "", 0.80),
		scored(3, 5, "duplicate of second", "", 0.79),
		scored(4, 7, "third", "", 0.70),
		scored(5, 1, "fourth", "", 0.60),
		scored(6, 2, "fifth", "", 0.50),
	}}
	matcher := newMatcher(store, StrategySemanticOnly, nil)

	result, err := matcher.Match(context.Background(), "query")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.Chapter)
	assert.Equal(t, 47, result.Verse)

	require.Len(t, result.Related, 3)
	seen := map[[2]int]bool{{result.Chapter, result.Verse}: true}
	for _, rel := range result.Related {
		key := [2]int{rel.Chapter, rel.Verse}
		assert.False(t, seen[key], "duplicate verse %v in related", key)
		seen[key] = true
	}
}

func TestMatchRelatedNeverPadded(t *testing.T) {
	store := &fakeStore{results: []models.ScoredVerse{
		scored(2, 47, "main", "", 0.9),
		scored(3, 5, "only related", "", 0.8),
	}}
	matcher := newMatcher(store, StrategySemanticOnly, nil)

	result, err := matcher.Match(context.Background(), "query")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Related, 1)
}

func TestMatchStableUnderTies(t *testing.T) {
	store := &fakeStore{results: []models.ScoredVerse{
		scored(1, 1, "alpha", "", 0.8),
		scored(2, 2, "beta", "", 0.8),
		scored(3, 3, "gamma", "", 0.8),
	}}
	matcher := newMatcher(store, StrategySemanticOnly, nil)

	for range 5 {
		result, err := matcher.Match(context.Background(), "query")
		require.NoError(t, err)
		require.NotNil(t, result)

		// Equal scores keep the store's order: semantic rank 0 wins.
		assert.Equal(t, 1, result.Chapter)
		require.Len(t, result.Related, 2)
		assert.Equal(t, 2, result.Related[0].Chapter)
		assert.Equal(t, 3, result.Related[1].Chapter)
	}
}

func TestMatchKeywordBoostBreaksTies(t *testing.T) {
	// Candidate (3,5) trails semantically but contains every query
	// term; the boost (capped at 0.15) lifts it past the leader.
	store := &fakeStore{results: []models.ScoredVerse{
		scored(1, 1, "unrelated text entirely", "", 0.80),
		scored(3, 5, "perform your duty without attachment", "", 0.75),
	}}
	matcher := newMatcher(store, StrategySemanticKeyword, nil)

	result, err := matcher.Match(context.Background(), "duty without attachment")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Chapter)
	assert.Equal(t, 5, result.Verse)
}

func TestMatchKeywordBoostCannotOverrideStrongMismatch(t *testing.T) {
	// A full keyword boost adds at most 0.15, so a 0.2 semantic gap
	// stands.
	store := &fakeStore{results: []models.ScoredVerse{
		scored(1, 1, "unrelated text entirely", "", 0.95),
		scored(3, 5, "perform your duty without attachment", "", 0.75),
	}}
	matcher := newMatcher(store, StrategySemanticKeyword, nil)

	result, err := matcher.Match(context.Background(), "duty without attachment")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Chapter)
}

func TestMatchRerankReplacesOrdering(t *testing.T) {
	// Candidates A..E in store order; rerank scores reorder them to
	// A, C, E, B, D regardless of semantic scores.
	store := &fakeStore{results: []models.ScoredVerse{
		scored(1, 1, "A", "", 0.99),
		scored(2, 2, "B", "", 0.98),
		scored(3, 3, "C", "", 0.97),
		scored(4, 4, "D", "", 0.96),
		scored(5, 5, "E", "", 0.95),
	}}
	reranker := &fakeReranker{scores: []float64{0.9, 0.3, 0.7, 0.1, 0.5}}
	matcher := newMatcher(store, StrategySemanticRerank, reranker)

	result, err := matcher.Match(context.Background(), "query")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "A", result.Translation)
	require.Len(t, result.Related, 3)
	assert.Equal(t, "C", result.Related[0].Translation)
	assert.Equal(t, "E", result.Related[1].Translation)
	assert.Equal(t, "B", result.Related[2].Translation)
}

func TestMatchRerankFailureSurfacesAsError(t *testing.T) {
	store := &fakeStore{results: []models.ScoredVerse{
		scored(1, 1, "A", "", 0.9),
	}}
	reranker := &fakeReranker{err: errors.New("reranker down")}
	matcher := newMatcher(store, StrategySemanticRerank, reranker)

	_, err := matcher.Match(context.Background(), "query")
	require.Error(t, err)
}

func TestMatchEndToEnd(t *testing.T) {
	store := &fakeStore{results: []models.ScoredVerse{
		scored(2, 47, "You have the right to perform your prescribed duties, but you are not entitled to the fruits of your actions.", "On acting without attachment to results.", 0.88),
		scored(2, 48, "Perform your duty equipoised, abandoning all attachment to success or failure.", "", 0.81),
		scored(3, 19, "Therefore, without being attached to the fruits of activities, one should act as a matter of duty.", "", 0.79),
		scored(18, 9, "Action performed as duty, renouncing attachment to the fruit, is of the nature of goodness.", "", 0.74),
	}}
	matcher := newMatcher(store, StrategySemanticKeyword, nil)

	result, err := matcher.Match(context.Background(), "duty without attachment to results")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.Chapter)
	assert.Equal(t, 47, result.Verse)
	assert.Equal(t, "On acting without attachment to results.", result.SummarizedCommentary)

	require.Len(t, result.Related, 3)
	for _, rel := range result.Related {
		assert.False(t, rel.Chapter == 2 && rel.Verse == 47, "main verse repeated in related")
		assert.Empty(t, rel.FullCommentary, "related verses omit full commentary")
	}
	assert.Equal(t, 8, store.lastTopK, "default shortlist size")
}

func TestLookupInvalidReference(t *testing.T) {
	matcher := newMatcher(&fakeStore{}, StrategySemanticKeyword, nil)

	for _, ref := range [][2]int{{0, 1}, {19, 1}, {-1, 1}, {5, 0}, {5, -3}} {
		_, err := matcher.Lookup(context.Background(), ref[0], ref[1])
		assert.ErrorIs(t, err, ErrInvalidReference, "reference %v", ref)
	}
}

func TestLookupNotFound(t *testing.T) {
	store := &fakeStore{}
	matcher := newMatcher(store, StrategySemanticKeyword, nil)

	verse, err := matcher.Lookup(context.Background(), 5, 999)
	require.NoError(t, err, "absent verse is not-found, not an error")
	assert.Nil(t, verse)

	require.NotNil(t, store.lastFilter)
	assert.Equal(t, 5, *store.lastFilter.Chapter)
	assert.Equal(t, 999, *store.lastFilter.Verse)
	assert.Equal(t, 1, store.lastTopK)
}

func TestLookupFound(t *testing.T) {
	store := &fakeStore{results: []models.ScoredVerse{
		{
			Verse: models.Verse{
				Chapter:     2,
				Verse:       47,
				Translation: "You have the right to perform your prescribed duties...",
				Commentary:  "Long traditional commentary.",
				Summary:     "Short summary.",
			},
		},
	}}
	matcher := newMatcher(store, StrategySemanticKeyword, nil)

	verse, err := matcher.Lookup(context.Background(), 2, 47)
	require.NoError(t, err)
	require.NotNil(t, verse)

	assert.Equal(t, 2, verse.Chapter)
	assert.Equal(t, 47, verse.Verse)
	assert.Equal(t, "Short summary.", verse.SummarizedCommentary)
	assert.Equal(t, "Long traditional commentary.", verse.FullCommentary)

	// The filter fully determines the result; the vector is a
	// placeholder of the configured dimension.
	assert.Len(t, store.lastVector, 4)
	for _, v := range store.lastVector {
		assert.Zero(t, v)
	}
}

func TestParseRankingStrategy(t *testing.T) {
	for _, name := range []string{"semantic_only", "semantic_plus_keyword", "semantic_plus_rerank"} {
		strategy, err := ParseRankingStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, RankingStrategy(name), strategy)
	}

	strategy, err := ParseRankingStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategySemanticKeyword, strategy)

	_, err = ParseRankingStrategy("hybrid")
	assert.Error(t, err)
}
