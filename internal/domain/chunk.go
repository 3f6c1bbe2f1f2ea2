package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "clausewise:"

// Chunk is one bounded span of document text, the atomic unit of storage
// and retrieval. Immutable once produced by the chunking pipeline.
type Chunk struct {
	Text         string
	ClauseID     string
	Page         int
	TokenCount   int
	SectionIndex int
	ChunkIndex   int
}

// ClauseID builds the document-relative citation identifier for a chunk.
// Unique within one document's chunk set; global uniqueness comes from the
// vector ID, which prefixes the document ID.
func ClauseID(docType string, sectionIdx, chunkIdx int) string {
	return fmt.Sprintf("%s_%d.%d", docType, sectionIdx+1, chunkIdx+1)
}

// DocIDPrefixLen bounds how much raw input participates in the document hash.
const DocIDPrefixLen = 5000

// DocumentID derives a deterministic document identifier from a bounded
// prefix of the raw input plus the owning user. Identical (content-prefix,
// user) pairs collide by design; ingestion relies on vector-ID overwrite
// rather than a dedup short-circuit.
func DocumentID(input, userID string) string {
	prefix := input
	if len(prefix) > DocIDPrefixLen {
		prefix = prefix[:DocIDPrefixLen]
	}
	h := sha256.Sum256([]byte(prefix + userID))
	return hex.EncodeToString(h[:])[:12]
}

// VectorID builds the store-global vector identifier for a chunk.
func VectorID(docID, clauseID string) string {
	return docID + "_" + clauseID
}

// RetrievedChunk is a chunk row as it comes back from vector search,
// carrying the similarity score used for confidence fallback.
type RetrievedChunk struct {
	Text       string
	ClauseID   string
	DocumentID string
	Page       int
	Score      float64
}
