package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

// hasWordParts reports whether the zip container holds a wordprocessing
// document. Other OpenXML kinds (pptx, xlsx) are not supported.
func hasWordParts(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return true
		}
	}
	return false
}

// docxText concatenates the <w:t> runs of word/document.xml.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w: %v", domain.ErrUnsupportedDocument, err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx without word/document.xml: %w", domain.ErrUnsupportedDocument)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open word/document.xml: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read word/document.xml: %w", err)
	}

	text := textRuns(raw)
	if text == "" {
		return "", fmt.Errorf("docx contains no text runs: %w", domain.ErrUnsupportedDocument)
	}
	return text, nil
}

// textRuns walks the XML stream collecting the contents of every <t>
// element (the w: namespace prefix is stripped by the decoder).
func textRuns(raw []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "t" {
			continue
		}
		var v string
		if err := dec.DecodeElement(&v, &se); err != nil {
			continue
		}
		if v != "" {
			out.WriteString(v)
			out.WriteString(" ")
		}
	}
	return strings.TrimSpace(out.String())
}
