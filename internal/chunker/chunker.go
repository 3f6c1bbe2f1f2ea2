// Package chunker turns raw document text into clause-addressable,
// token-bounded chunks: clean, split into sections on heading patterns,
// then re-chunk long sections on sentence boundaries with overlap.
package chunker

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

const (
	DefaultMaxTokens        = 300
	DefaultOverlapSentences = 2
)

// Chunker splits document text into chunks of at most MaxTokens tokens,
// carrying OverlapSentences trailing sentences from each chunk into the
// next one when a section has to be split.
type Chunker struct {
	MaxTokens        int
	OverlapSentences int
}

func New(maxTokens, overlapSentences int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapSentences <= 0 {
		overlapSentences = DefaultOverlapSentences
	}
	return &Chunker{MaxTokens: maxTokens, OverlapSentences: overlapSentences}
}

// Chunk produces the chunk set for one unit of text (a whole text
// document, or a single PDF page). Clause IDs are unique within the
// produced set; page is carried verbatim into every chunk.
func (c *Chunker) Chunk(text string, page int, docType string) []domain.Chunk {
	text = Clean(text)
	if text == "" {
		return nil
	}

	var chunks []domain.Chunk
	for sectionIdx, section := range SplitSections(text) {
		for chunkIdx, part := range c.splitSection(section) {
			chunks = append(chunks, domain.Chunk{
				Text:         part,
				ClauseID:     domain.ClauseID(docType, sectionIdx, chunkIdx),
				Page:         page,
				TokenCount:   CountTokens(part),
				SectionIndex: sectionIdx,
				ChunkIndex:   chunkIdx,
			})
		}
	}
	return chunks
}

// splitSection returns the section unchanged when it fits the budget,
// otherwise packs sentences greedily. Closing a chunk carries its last
// OverlapSentences sentences into the next chunk. A single sentence over
// budget is never split, the overage is accepted.
func (c *Chunker) splitSection(section string) []string {
	if CountTokens(section) <= c.MaxTokens {
		return []string{section}
	}

	var (
		chunks    []string
		current   []string
		curTokens int
	)
	for _, sentence := range splitSentences(section) {
		tokens := CountTokens(sentence)
		if curTokens+tokens > c.MaxTokens && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			carry := c.OverlapSentences
			if carry > len(current) {
				carry = len(current)
			}
			overlap := current[len(current)-carry:]
			current = append(append([]string(nil), overlap...), sentence)
			curTokens = 0
			for _, s := range current {
				curTokens += CountTokens(s)
			}
			continue
		}
		current = append(current, sentence)
		curTokens += tokens
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

var sentenceEndRe = regexp.MustCompile(`([.!?])\s+`)

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	marked := sentenceEndRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
