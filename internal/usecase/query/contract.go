package query

import (
	"context"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

// Retriever is the vector search contract. documentID narrows the search
// to one document when non-empty.
type Retriever interface {
	Search(ctx context.Context, vector []float32, userID, documentID string, topK int) ([]domain.RetrievedChunk, error)
}

// QuotaChecker gates generation calls against the daily request cap.
type QuotaChecker interface {
	Check(ctx context.Context) error
	Record()
}
