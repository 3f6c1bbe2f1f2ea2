package ingest

import (
	"context"

	"github.com/kailas-cloud/clausewise/internal/repository/vector"
)

// Repository defines the storage contract for chunk records.
type Repository interface {
	UpsertBatch(ctx context.Context, records []vector.Record) error
}

// Fetcher retrieves remote document bytes plus their content type.
type Fetcher func(ctx context.Context, url string) (data []byte, contentType string, err error)
