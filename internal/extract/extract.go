// Package extract turns uploaded or fetched document bytes into plain
// text units ready for chunking. The true file type is sniffed from the
// bytes first; declared content types are only a fallback.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

// Kind is the detected document kind, also used as the clause-ID prefix.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

// Unit is one independently chunkable piece of a document with the page
// it came from. Text documents and DOCX yield a single unit on page 1;
// PDFs yield one unit per parseable page.
type Unit struct {
	Text string
	Page int
}

// Detect sniffs the document kind from magic bytes, falling back to the
// declared content type and finally a printable-text heuristic.
func Detect(data []byte, contentType string) (Kind, error) {
	switch {
	case isPDF(data):
		return KindPDF, nil
	case isZip(data):
		if hasWordParts(data) {
			return KindDOCX, nil
		}
		return "", fmt.Errorf("zip container without word/ parts: %w", domain.ErrUnsupportedDocument)
	}

	switch ct := normalizeContentType(contentType); ct {
	case "application/pdf":
		return "", fmt.Errorf("declared pdf without %%PDF header: %w", domain.ErrUnsupportedDocument)
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "", fmt.Errorf("declared docx is not a zip container: %w", domain.ErrUnsupportedDocument)
	}

	if isProbablyText(data) {
		return KindText, nil
	}
	return "", fmt.Errorf("unrecognized document bytes: %w", domain.ErrUnsupportedDocument)
}

// Extract sniffs data and returns its text units plus the detected kind.
// PDF pages that fail to parse are skipped and logged; only a document
// with no recognizable content at all fails.
func Extract(ctx context.Context, data []byte, contentType string) ([]Unit, Kind, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty document: %w", domain.ErrUnsupportedDocument)
	}

	kind, err := Detect(data, contentType)
	if err != nil {
		return nil, "", err
	}

	switch kind {
	case KindPDF:
		units, err := pdfUnits(ctx, data)
		return units, kind, err
	case KindDOCX:
		text, err := docxText(data)
		if err != nil {
			return nil, kind, err
		}
		return []Unit{{Text: text, Page: 1}}, kind, nil
	default:
		return []Unit{{Text: string(data), Page: 1}}, KindText, nil
	}
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

// isProbablyText accepts data when the sample is NUL-free and mostly
// printable or high-bit bytes (UTF-8 text passes).
func isProbablyText(b []byte) bool {
	sample := b
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	if len(sample) == 0 {
		return false
	}
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
