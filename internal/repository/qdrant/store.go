// Package qdrant implements repository.VectorStore against a Qdrant
// instance over gRPC.
package qdrant

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/gita-search-api/internal/models"
	"github.com/gita-search-api/internal/repository"
)

// metadataTextLimit caps text fields stored in the payload, matching
// the metadata budget of the serving index.
const metadataTextLimit = 1000

// Config holds connection settings for the Qdrant backend.
type Config struct {
	Addr       string
	Collection string
	Timeout    time.Duration
}

// Store implements repository.VectorStore backed by Qdrant.
type Store struct {
	conn       *grpc.ClientConn
	points     qdrant.PointsClient
	collection string
	timeout    time.Duration
}

// NewStore dials the Qdrant gRPC endpoint and returns a store bound to
// the configured collection. The collection must already exist (see
// scripts/setup).
func NewStore(cfg Config) (*Store, error) {
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant at %s: %w", cfg.Addr, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Store{
		conn:       conn,
		points:     qdrant.NewPointsClient(conn),
		collection: cfg.Collection,
		timeout:    timeout,
	}, nil
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Query performs a nearest-neighbor search, optionally narrowed by an
// exact-match metadata filter.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter *repository.Filter) ([]models.ScoredVerse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		Filter:         buildFilter(filter),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]models.ScoredVerse, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		verse, err := verseFromPayload(point.GetPayload())
		if err != nil {
			return nil, fmt.Errorf("decode payload for point %s: %w", point.GetId(), err)
		}
		results = append(results, models.ScoredVerse{
			Verse: verse,
			Score: float64(point.GetScore()),
		})
	}
	return results, nil
}

// Upsert writes one point per verse record. Point IDs are derived
// deterministically from the natural key, so re-ingesting a verse
// replaces its previous record.
func (s *Store) Upsert(ctx context.Context, records []models.VerseRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(rec.ID())),
			Vectors: qdrant.NewVectors(rec.Embedding...),
			Payload: payloadFromVerse(rec.Verse),
		}
	}

	resp, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	status := resp.GetResult().GetStatus()
	if status != qdrant.UpdateStatus_Acknowledged && status != qdrant.UpdateStatus_Completed {
		return fmt.Errorf("qdrant upsert not acknowledged: status %s", status)
	}
	return nil
}

// Fetch retrieves records by their storage IDs. Missing IDs are
// omitted from the result.
func (s *Store) Fetch(ctx context.Context, ids []string) ([]models.VerseRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(pointID(id))
	}

	resp, err := s.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            pointIDs,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
		WithVectors: &qdrant.WithVectorsSelector{
			SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant get: %w", err)
	}

	records := make([]models.VerseRecord, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		verse, err := verseFromPayload(point.GetPayload())
		if err != nil {
			return nil, fmt.Errorf("decode payload for point %s: %w", point.GetId(), err)
		}
		records = append(records, models.VerseRecord{
			Verse:     verse,
			Embedding: point.GetVectors().GetVector().GetData(),
		})
	}
	return records, nil
}

// pointID maps a storage ID like "ch2_v47" onto a stable UUID, since
// Qdrant point IDs must be UUIDs or unsigned integers.
func pointID(id string) string {
	sum := md5.Sum([]byte(id))
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

func buildFilter(f *repository.Filter) *qdrant.Filter {
	if f == nil {
		return nil
	}
	var must []*qdrant.Condition
	if f.Chapter != nil {
		must = append(must, matchInt("chapter", *f.Chapter))
	}
	if f.Verse != nil {
		must = append(must, matchInt("verse", *f.Verse))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func matchInt(key string, value int) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Integer{Integer: int64(value)},
				},
			},
		},
	}
}

func payloadFromVerse(v models.Verse) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		"chapter":     {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v.Chapter)}},
		"verse":       {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v.Verse)}},
		"translation": {Kind: &qdrant.Value_StringValue{StringValue: truncate(v.Translation, metadataTextLimit)}},
		"commentary":  {Kind: &qdrant.Value_StringValue{StringValue: truncate(v.Commentary, metadataTextLimit)}},
		"summary":     {Kind: &qdrant.Value_StringValue{StringValue: truncate(v.Summary, metadataTextLimit)}},
	}
}

func verseFromPayload(payload map[string]*qdrant.Value) (models.Verse, error) {
	chapter := payload["chapter"].GetIntegerValue()
	verse := payload["verse"].GetIntegerValue()
	if chapter == 0 || verse == 0 {
		return models.Verse{}, fmt.Errorf("payload missing chapter/verse")
	}
	return models.Verse{
		Chapter:     int(chapter),
		Verse:       int(verse),
		Translation: payload["translation"].GetStringValue(),
		Commentary:  payload["commentary"].GetStringValue(),
		Summary:     payload["summary"].GetStringValue(),
	}, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
