package vector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/clausewise/internal/db"
	"github.com/kailas-cloud/clausewise/internal/domain"
)

// --- EnsureIndex ---

func TestEnsureIndex_CreatesSchema(t *testing.T) {
	repo, ms := newTestRepo(t)

	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected index creation")
	}
	if created.Name != "clausewise:chunks:idx" {
		t.Errorf("index name = %s", created.Name)
	}
	if len(created.Prefixes) != 1 || created.Prefixes[0] != "clausewise:chunks:" {
		t.Errorf("prefixes = %v", created.Prefixes)
	}
	var vec *db.IndexField
	for i := range created.Fields {
		if created.Fields[i].Type == db.IndexFieldVector {
			vec = &created.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("expected a vector field")
	}
	if vec.Name != "vector" || vec.VectorDim != 4 || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("vector field = %+v", vec)
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(context.Context, string) (bool, error) { return true, nil }
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		t.Error("CreateIndex must not be called")
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_CreateRace(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("concurrent creation must not error: %v", err)
	}
}

// --- UpsertBatch ---

func testRecord(i int) Record {
	return Record{
		UserID:     "u1",
		DocumentID: "doc123",
		Vector:     testVector(),
		Chunk: domain.Chunk{
			Text:         fmt.Sprintf("clause text %d", i),
			ClauseID:     fmt.Sprintf("pdf_1.%d", i+1),
			Page:         1,
			TokenCount:   3,
			SectionIndex: 0,
			ChunkIndex:   i,
		},
	}
}

func TestUpsertBatch_FieldsAndKey(t *testing.T) {
	repo, ms := newTestRepo(t)

	var items []db.HashSetItem
	ms.hSetMultiFn = func(_ context.Context, batch []db.HashSetItem) error {
		items = append(items, batch...)
		return nil
	}

	if err := repo.UpsertBatch(context.Background(), []Record{testRecord(0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Key != "clausewise:chunks:u1:doc123_pdf_1.1" {
		t.Errorf("key = %s", item.Key)
	}
	f := item.Fields
	if f["user_id"] != "u1" || f["document_id"] != "doc123" || f["clause_id"] != "pdf_1.1" {
		t.Errorf("fields = %+v", f)
	}
	if f["page"] != "1" || f["token_count"] != "3" || f["section_index"] != "0" {
		t.Errorf("numeric fields = %+v", f)
	}
	if f["__content"] != "clause text 0" {
		t.Errorf("__content = %q", f["__content"])
	}
	if len(f["vector"]) != 16 { // 4 floats * 4 bytes
		t.Errorf("vector blob length = %d, want 16", len(f["vector"]))
	}
}

func TestUpsertBatch_SplitsIntoBatches(t *testing.T) {
	repo, ms := newTestRepo(t)

	var batchSizes []int
	ms.hSetMultiFn = func(_ context.Context, batch []db.HashSetItem) error {
		batchSizes = append(batchSizes, len(batch))
		return nil
	}

	records := make([]Record, 250)
	for i := range records {
		records[i] = testRecord(i)
	}
	if err := repo.UpsertBatch(context.Background(), records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batchSizes) != 3 || batchSizes[0] != 100 || batchSizes[1] != 100 || batchSizes[2] != 50 {
		t.Errorf("batch sizes = %v, want [100 100 50]", batchSizes)
	}
}

func TestUpsertBatch_AbortsOnFailure(t *testing.T) {
	repo, ms := newTestRepo(t)

	calls := 0
	ms.hSetMultiFn = func(_ context.Context, batch []db.HashSetItem) error {
		calls++
		if calls == 2 {
			return errors.New("connection reset")
		}
		return nil
	}

	records := make([]Record, 250)
	for i := range records {
		records[i] = testRecord(i)
	}
	err := repo.UpsertBatch(context.Background(), records)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("expected abort after failing batch, got %d calls", calls)
	}
}

func TestUpsertBatch_TruncatesMetadataText(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got string
	ms.hSetMultiFn = func(_ context.Context, batch []db.HashSetItem) error {
		got = batch[0].Fields["__content"]
		return nil
	}

	rec := testRecord(0)
	rec.Chunk.Text = strings.Repeat("a", 3000)
	if err := repo.UpsertBatch(context.Background(), []Record{rec}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != metaTextLimit {
		t.Errorf("stored text length = %d, want %d", len(got), metaTextLimit)
	}
}

// --- Search ---

func TestSearch_FiltersAndMapping(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != IndexName {
			t.Errorf("index = %s", q.IndexName)
		}
		if q.K != 5 {
			t.Errorf("K = %d", q.K)
		}
		if len(q.Tags) != 2 {
			t.Fatalf("tags = %v", q.Tags)
		}
		if q.Tags[0] != (db.TagFilter{Field: "user_id", Value: "u1"}) {
			t.Errorf("tags[0] = %+v", q.Tags[0])
		}
		if q.Tags[1] != (db.TagFilter{Field: "document_id", Value: "doc123"}) {
			t.Errorf("tags[1] = %+v", q.Tags[1])
		}
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{{
				Key:   "clausewise:chunks:u1:doc123_pdf_1.1",
				Score: 0.91,
				Fields: map[string]string{
					"__content":   "The sum insured is $100,000.",
					"clause_id":   "pdf_1.1",
					"document_id": "doc123",
					"page":        "3",
				},
			}},
		}, nil
	}

	chunks, err := repo.Search(context.Background(), testVector(), "u1", "doc123", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.ClauseID != "pdf_1.1" || c.DocumentID != "doc123" || c.Page != 3 {
		t.Errorf("chunk = %+v", c)
	}
	if c.Score != 0.91 {
		t.Errorf("score = %f", c.Score)
	}
}

func TestSearch_NoDocumentFilter(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if len(q.Tags) != 1 || q.Tags[0].Field != "user_id" {
			t.Errorf("tags = %v, want user_id only", q.Tags)
		}
		return &db.SearchResult{}, nil
	}

	if _, err := repo.Search(context.Background(), testVector(), "u1", "", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- DeleteByUser ---

func TestDeleteByUser_PagesUntilEmpty(t *testing.T) {
	repo, ms := newTestRepo(t)

	pages := [][]string{
		{"clausewise:chunks:u1:a_pdf_1.1", "clausewise:chunks:u1:a_pdf_1.2"},
		{"clausewise:chunks:u1:b_pdf_1.1"},
		nil,
	}
	call := 0
	ms.searchKeysFn = func(_ context.Context, q *db.KeyQuery) ([]string, int, error) {
		if len(q.Tags) != 1 || q.Tags[0].Value != "u1" {
			t.Errorf("tags = %v", q.Tags)
		}
		keys := pages[call]
		call++
		return keys, len(keys), nil
	}

	var deleted []string
	ms.delFn = func(_ context.Context, keys ...string) error {
		deleted = append(deleted, keys...)
		return nil
	}

	n, err := repo.DeleteByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}
	if len(deleted) != 3 {
		t.Errorf("delete calls covered %d keys", len(deleted))
	}
}

func TestDeleteByUser_NothingToDelete(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.delFn = func(_ context.Context, keys ...string) error {
		t.Error("Del must not be called")
		return nil
	}

	n, err := repo.DeleteByUser(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted = %d, want 0", n)
	}
}
