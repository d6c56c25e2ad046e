package models

import "fmt"

// Verse is the atomic unit of the corpus: one translated verse of the
// Bhagavad Gita with its traditional commentary and a pre-computed
// summary of that commentary. (chapter, verse) is the natural key.
type Verse struct {
	Chapter     int    `json:"chapter" db:"chapter"`
	Verse       int    `json:"verse" db:"verse"`
	Translation string `json:"translation" db:"translation"`
	Commentary  string `json:"commentary,omitempty" db:"commentary"`
	Summary     string `json:"summary,omitempty" db:"summary"`
}

// ID returns the storage identifier derived from the natural key,
// e.g. "ch2_v47".
func (v Verse) ID() string {
	return fmt.Sprintf("ch%d_v%d", v.Chapter, v.Verse)
}

// VerseRecord pairs a verse with its embedding for upsert/fetch at the
// vector store boundary.
type VerseRecord struct {
	Verse
	Embedding []float32 `json:"embedding"`
}

// ScoredVerse is a verse returned by a nearest-neighbor query together
// with the store's similarity score (higher is better).
type ScoredVerse struct {
	Verse
	Score float64 `json:"score"`
}

// Candidate carries the per-request ranking signals for one retrieved
// verse. Created per query, discarded after the response.
type Candidate struct {
	Verse
	SemanticRank  int
	SemanticScore float64
	KeywordBoost  float64
	RerankScore   float64
	CombinedScore float64
}

// VerseResult is the response shape for a single verse. FullCommentary
// is only populated on the main match.
type VerseResult struct {
	Chapter              int    `json:"chapter"`
	Verse                int    `json:"verse"`
	Translation          string `json:"translation"`
	SummarizedCommentary string `json:"summarized_commentary"`
	FullCommentary       string `json:"full_commentary,omitempty"`
}

// MatchResult is the full query response: the best match plus up to
// three related verses, each distinct in (chapter, verse).
type MatchResult struct {
	VerseResult
	Related []VerseResult `json:"related"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse wraps a successful match.
type QueryResponse struct {
	Status string       `json:"status"`
	Data   *MatchResult `json:"data"`
}

// VerseRequest is the body of POST /verse.
type VerseRequest struct {
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// VerseListing is one entry of the GET /all-verses corpus listing used
// for client-side search.
type VerseListing struct {
	Chapter     int    `json:"chapter"`
	Verse       int    `json:"verse"`
	Translation string `json:"translation"`
	Summary     string `json:"summary"`
}
