package vector

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kailas-cloud/clausewise/internal/db"
	"github.com/kailas-cloud/clausewise/internal/domain"
)

// metaTextLimit bounds the chunk text duplicated into the hash so one
// oversized clause cannot bloat the store.
const metaTextLimit = 2000

// buildHashFields flattens a record into HSET fields. The vector is
// serialized as 4-byte little-endian float32s, matching the FT schema.
func buildHashFields(rec *Record) map[string]string {
	text := rec.Chunk.Text
	if len(text) > metaTextLimit {
		text = text[:metaTextLimit]
	}
	return map[string]string{
		"user_id":       rec.UserID,
		"document_id":   rec.DocumentID,
		"clause_id":     rec.Chunk.ClauseID,
		"page":          strconv.Itoa(rec.Chunk.Page),
		"token_count":   strconv.Itoa(rec.Chunk.TokenCount),
		"section_index": strconv.Itoa(rec.Chunk.SectionIndex),
		"__content":     text,
		"vector":        vectorToBytes(rec.Vector),
	}
}

// parseEntry maps a search hit back to a retrieved chunk.
func parseEntry(entry db.SearchEntry) domain.RetrievedChunk {
	page, _ := strconv.Atoi(entry.Fields["page"])
	return domain.RetrievedChunk{
		Text:       entry.Fields["__content"],
		ClauseID:   entry.Fields["clause_id"],
		DocumentID: entry.Fields["document_id"],
		Page:       page,
		Score:      entry.Score,
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
