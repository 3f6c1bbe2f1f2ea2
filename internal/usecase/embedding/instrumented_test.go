package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

type mockEmbedder struct {
	embedCalls int
	batchCalls int
	batchSizes []int
	err        error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}, TotalTokens: 5}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{0.1}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 5 * len(texts)}, nil
}

func TestInstrumentedEmbedder_Embed(t *testing.T) {
	inner := &mockEmbedder{}
	ie := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := ie.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 1 {
		t.Errorf("embedding length = %d, expected 1", len(result.Embedding))
	}
	if inner.embedCalls != 1 {
		t.Errorf("inner calls = %d, expected 1", inner.embedCalls)
	}
}

func TestInstrumentedEmbedder_EmbedError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ie := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	if _, err := ie.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedEmbedder_BatchSplitsLargeInput(t *testing.T) {
	inner := &mockEmbedder{}
	ie := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	texts := make([]string, DefaultMaxAPIBatchSize+10)
	for i := range texts {
		texts[i] = "text"
	}

	result, err := ie.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embeddings) != len(texts) {
		t.Errorf("embeddings = %d, expected %d", len(result.Embeddings), len(texts))
	}
	if inner.batchCalls != 2 {
		t.Errorf("batch calls = %d, expected 2", inner.batchCalls)
	}
	if inner.batchSizes[0] != DefaultMaxAPIBatchSize || inner.batchSizes[1] != 10 {
		t.Errorf("batch sizes = %v", inner.batchSizes)
	}
	if result.TotalTokens != 5*len(texts) {
		t.Errorf("TotalTokens = %d, expected %d", result.TotalTokens, 5*len(texts))
	}
}

func TestInstrumentedEmbedder_BatchEmpty(t *testing.T) {
	inner := &mockEmbedder{}
	ie := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := ie.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 0 {
		t.Errorf("batch calls = %d, expected 0", inner.batchCalls)
	}
	if result.Embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", result.Embeddings)
	}
}
