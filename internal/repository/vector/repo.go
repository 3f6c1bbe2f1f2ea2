// Package vector persists chunk embeddings in Redis hashes behind an FT
// vector index and serves filtered KNN retrieval over them.
package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/clausewise/internal/db"
	"github.com/kailas-cloud/clausewise/internal/domain"
)

const (
	// IndexName is the FT index over chunk hashes.
	IndexName = domain.KeyPrefix + "chunks:idx"
	keyPrefix = domain.KeyPrefix + "chunks:"

	// upsertBatchSize bounds one pipelined HSET round-trip.
	upsertBatchSize = 100
	// deletePageSize bounds one key-listing page during bulk deletion.
	deletePageSize = 500
)

// store is the consumer interface for chunk persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchKeys(ctx context.Context, q *db.KeyQuery) ([]string, int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Record is one chunk ready for persistence: the chunk, its owner and
// document, and its embedding vector.
type Record struct {
	UserID     string
	DocumentID string
	Vector     []float32
	Chunk      domain.Chunk
}

// Repo implements the vector-store boundary over db.Store.
type Repo struct {
	store      store
	dimensions int
}

// New creates a chunk vector repository. dimensions must match the
// embedding model's output width for the lifetime of the index.
func New(s store, dimensions int) *Repo {
	return &Repo{store: s, dimensions: dimensions}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}

	def := db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag("user_id").
		Tag("document_id").
		Tag("clause_id").
		Numeric("page").
		Numeric("token_count").
		Numeric("section_index").
		Text("__content").
		VectorHNSW("vector", r.dimensions, db.DistanceCosine, 16, 200).
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// UpsertBatch writes records in pipelined batches, sequentially, aborting
// on the first failed batch. Same-ID records overwrite in place.
func (r *Repo) UpsertBatch(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		items := make([]db.HashSetItem, 0, end-start)
		for _, rec := range records[start:end] {
			items = append(items, db.HashSetItem{
				Key:    chunkKey(rec.UserID, rec.DocumentID, rec.Chunk.ClauseID),
				Fields: buildHashFields(&rec),
			})
		}
		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("upsert batch %d: %w", start/upsertBatchSize, err)
		}
	}
	return nil
}

// Search runs a KNN query filtered to the user's documents, optionally
// narrowed to one document. Scores are cosine similarity in [0,1].
func (r *Repo) Search(ctx context.Context, vector []float32, userID, documentID string, topK int) ([]domain.RetrievedChunk, error) {
	tags := []db.TagFilter{{Field: "user_id", Value: userID}}
	if documentID != "" {
		tags = append(tags, db.TagFilter{Field: "document_id", Value: documentID})
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: IndexName,
		Tags:      tags,
		Vector:    vector,
		K:         topK,
		ReturnFields: []string{
			"__content", "clause_id", "document_id", "page", "__vector_score",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	chunks := make([]domain.RetrievedChunk, 0, len(result.Entries))
	for _, entry := range result.Entries {
		chunks = append(chunks, parseEntry(entry))
	}
	return chunks, nil
}

// DeleteByUser removes every chunk the user owns and returns the count.
// A user with no chunks deletes zero and succeeds.
func (r *Repo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	tags := []db.TagFilter{{Field: "user_id", Value: userID}}
	deleted := 0

	for {
		keys, _, err := r.store.SearchKeys(ctx, &db.KeyQuery{
			IndexName: IndexName,
			Tags:      tags,
			Limit:     deletePageSize,
		})
		if err != nil {
			return deleted, fmt.Errorf("list chunk keys: %w", err)
		}
		if len(keys) == 0 {
			return deleted, nil
		}

		if err := r.store.Del(ctx, keys...); err != nil {
			return deleted, fmt.Errorf("delete chunks: %w", err)
		}
		deleted += len(keys)
	}
}

func chunkKey(userID, documentID, clauseID string) string {
	return keyPrefix + userID + ":" + domain.VectorID(documentID, clauseID)
}
