package repository

import (
	"context"

	"github.com/gita-search-api/internal/models"
)

// Filter is an exact-match metadata constraint narrowing a
// nearest-neighbor query. Nil fields are unconstrained.
type Filter struct {
	Chapter *int
	Verse   *int
}

// VectorStore defines the contract with the external vector index.
//
// Query returns up to topK records ordered by the store's similarity
// metric, descending. An empty result means "not found" and is never
// an error; callers must not treat it as a fault.
type VectorStore interface {
	Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]models.ScoredVerse, error)

	// Upsert writes one record per verse, replacing any existing
	// record with the same ID.
	Upsert(ctx context.Context, records []models.VerseRecord) error

	// Fetch retrieves records by storage ID. IDs with no record are
	// simply absent from the result.
	Fetch(ctx context.Context, ids []string) ([]models.VerseRecord, error)
}
