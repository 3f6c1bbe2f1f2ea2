// Package ingest runs the document pipeline: extract, chunk, embed, store.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clausewise/internal/chunker"
	"github.com/kailas-cloud/clausewise/internal/domain"
	"github.com/kailas-cloud/clausewise/internal/extract"
	"github.com/kailas-cloud/clausewise/internal/repository/vector"
)

// Result reports one completed ingestion.
type Result struct {
	DocumentID  string
	ChunksAdded int
}

// Service turns raw document input into embedded chunk records.
type Service struct {
	chunker  *chunker.Chunker
	embedder domain.Embedder
	repo     Repository
	fetch    Fetcher
	logger   *zap.Logger
}

// New creates an ingestion service.
func New(c *chunker.Chunker, e domain.Embedder, repo Repository, logger *zap.Logger) *Service {
	return &Service{
		chunker:  c,
		embedder: e,
		repo:     repo,
		fetch:    extract.Fetch,
		logger:   logger,
	}
}

// WithFetcher overrides the URL fetcher.
func (s *Service) WithFetcher(f Fetcher) *Service {
	s.fetch = f
	return s
}

// ProcessText ingests raw text for the given user. docType labels the
// clause IDs ("text", "pdf", "docx"). A document with no extractable
// chunks is not an error, the caller decides how to report it.
func (s *Service) ProcessText(ctx context.Context, text, userID, docType string) (Result, error) {
	if docType == "" {
		docType = "text"
	}
	units := []extract.Unit{{Text: text, Page: 1}}
	return s.process(ctx, units, text, userID, docType)
}

// ProcessURL fetches a remote document, extracts its text, and ingests it.
func (s *Service) ProcessURL(ctx context.Context, url, userID, docType string) (Result, error) {
	data, contentType, err := s.fetch(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("fetch document: %w", err)
	}

	units, kind, err := extract.Extract(ctx, data, contentType)
	if err != nil {
		return Result{}, fmt.Errorf("extract document: %w", err)
	}
	if docType == "" {
		docType = string(kind)
	}

	// The document hash covers extracted text, not raw bytes, so a PDF
	// and its re-uploaded copy land on the same document ID.
	return s.process(ctx, units, joinUnits(units), userID, docType)
}

func (s *Service) process(
	ctx context.Context, units []extract.Unit, input, userID, docType string,
) (Result, error) {
	docID := domain.DocumentID(input, userID)

	chunks := s.chunkUnits(units, docType)
	if len(chunks) == 0 {
		s.logger.Info("Document produced no chunks",
			zap.String("user_id", userID),
			zap.String("document_id", docID))
		return Result{DocumentID: docID}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedded, err := domain.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embed chunks: %w", err)
	}

	records := make([]vector.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vector.Record{
			UserID:     userID,
			DocumentID: docID,
			Vector:     embedded.Embeddings[i],
			Chunk:      c,
		}
	}

	if err := s.repo.UpsertBatch(ctx, records); err != nil {
		return Result{}, fmt.Errorf("store chunks: %w", err)
	}

	s.logger.Info("Document ingested",
		zap.String("user_id", userID),
		zap.String("document_id", docID),
		zap.String("doc_type", docType),
		zap.Int("chunks", len(chunks)),
		zap.Int("embedding_tokens", embedded.TotalTokens))

	return Result{DocumentID: docID, ChunksAdded: len(chunks)}, nil
}

// chunkUnits chunks each unit and offsets section indices so clause IDs
// stay unique across a multi-page document.
func (s *Service) chunkUnits(units []extract.Unit, docType string) []domain.Chunk {
	var all []domain.Chunk
	sectionOffset := 0
	for _, u := range units {
		chunks := s.chunker.Chunk(u.Text, u.Page, docType)
		maxSection := -1
		for _, c := range chunks {
			if c.SectionIndex > maxSection {
				maxSection = c.SectionIndex
			}
			c.SectionIndex += sectionOffset
			c.ClauseID = domain.ClauseID(docType, c.SectionIndex, c.ChunkIndex)
			all = append(all, c)
		}
		sectionOffset += maxSection + 1
	}
	return all
}

func joinUnits(units []extract.Unit) string {
	var total int
	for _, u := range units {
		total += len(u.Text) + 1
	}
	buf := make([]byte, 0, total)
	for i, u := range units {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, u.Text...)
	}
	return string(buf)
}
