package domain

import "errors"

var (
	// ErrNoContent signals an ingestion request carrying neither text nor a file URL.
	ErrNoContent = errors.New("no content: either text or file_url is required")
	// ErrUnsupportedDocument signals a document kind the extractor cannot handle.
	ErrUnsupportedDocument = errors.New("unsupported document type")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrGenerationRateLimited signals a rate-limit or upstream quota rejection
	// from the generation provider.
	ErrGenerationRateLimited = errors.New("generation rate limited")
	// ErrQuotaExceeded signals an exhausted local daily generation quota.
	ErrQuotaExceeded = errors.New("daily generation quota exceeded")
	// ErrAnswerNotParseable signals generation output with no JSON object in it.
	ErrAnswerNotParseable = errors.New("answer not parseable")
)
