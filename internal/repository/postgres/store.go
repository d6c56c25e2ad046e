// Package postgres implements repository.VectorStore on PostgreSQL
// with the pgvector extension. Useful for deployments that already run
// Postgres and do not want a dedicated vector database.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/gita-search-api/internal/models"
	"github.com/gita-search-api/internal/repository"
)

const metadataTextLimit = 1000

// Store implements repository.VectorStore using a verses table with an
// embedding vector column.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewStore wraps an existing database handle.
func NewStore(db *sqlx.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

// Query performs cosine-similarity search ordered by descending score.
// The filter narrows to exact chapter/verse matches when set.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter *repository.Filter) ([]models.ScoredVerse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var chapter, verse *int
	if filter != nil {
		chapter = filter.Chapter
		verse = filter.Verse
	}

	vec := pgvector.NewVector(vector)
	rows, err := s.db.QueryxContext(ctx, `
		SELECT chapter, verse, translation, commentary, summary,
		       1 - (embedding <=> $1::vector) AS score
		FROM verses
		WHERE ($2::int IS NULL OR chapter = $2)
		  AND ($3::int IS NULL OR verse = $3)
		ORDER BY embedding <=> $1::vector
		LIMIT $4
	`, vec, chapter, verse, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search verses: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredVerse
	for rows.Next() {
		var v models.ScoredVerse
		if err := rows.Scan(&v.Chapter, &v.Verse, &v.Translation, &v.Commentary, &v.Summary, &v.Score); err != nil {
			return nil, fmt.Errorf("scan verse result: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verse results: %w", err)
	}
	return results, nil
}

// Upsert inserts or replaces one row per verse record.
func (s *Store) Upsert(ctx context.Context, records []models.VerseRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO verses (id, chapter, verse, translation, commentary, summary, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				translation = EXCLUDED.translation,
				commentary  = EXCLUDED.commentary,
				summary     = EXCLUDED.summary,
				embedding   = EXCLUDED.embedding
		`, rec.ID(), rec.Chapter, rec.Verse, rec.Translation,
			truncate(rec.Commentary, metadataTextLimit), rec.Summary,
			pgvector.NewVector(rec.Embedding))
		if err != nil {
			return fmt.Errorf("upsert verse %s: %w", rec.ID(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

// Fetch retrieves records by storage ID; missing IDs are omitted.
func (s *Store) Fetch(ctx context.Context, ids []string) ([]models.VerseRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, `
		SELECT chapter, verse, translation, commentary, summary, embedding
		FROM verses
		WHERE id = ANY($1)
		ORDER BY chapter, verse
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("fetch verses: %w", err)
	}
	defer rows.Close()

	var records []models.VerseRecord
	for rows.Next() {
		var rec models.VerseRecord
		var vec pgvector.Vector
		if err := rows.Scan(&rec.Chapter, &rec.Verse, &rec.Translation, &rec.Commentary, &rec.Summary, &vec); err != nil {
			return nil, fmt.Errorf("scan verse record: %w", err)
		}
		rec.Embedding = vec.Slice()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verse records: %w", err)
	}
	return records, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
