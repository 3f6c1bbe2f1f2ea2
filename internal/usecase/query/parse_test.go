package query

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

func TestParseAnswer_PlainJSON(t *testing.T) {
	text := `{"answer": "Yes, covered.", "clause_id": "pdf_1.1", "clause_text": "Coverage applies.", "page": 3, "confidence": 0.9, "explanation": "Direct match"}`

	parsed, err := ParseAnswer(text)
	if err != nil {
		t.Fatalf("ParseAnswer failed: %v", err)
	}
	if parsed.Answer != "Yes, covered." {
		t.Errorf("answer = %q", parsed.Answer)
	}
	if parsed.ClauseID != "pdf_1.1" {
		t.Errorf("clause_id = %q", parsed.ClauseID)
	}
	if parsed.Page != 3 {
		t.Errorf("page = %d", parsed.Page)
	}
	if !parsed.HasConfidence || parsed.Confidence != 0.9 {
		t.Errorf("confidence = %v (has %v)", parsed.Confidence, parsed.HasConfidence)
	}
}

func TestParseAnswer_SurroundingProse(t *testing.T) {
	text := `Here is my analysis:
{"answer": "No.", "clause_id": "pdf_2.1", "confidence": 0.7}
Let me know if you need more detail.`

	parsed, err := ParseAnswer(text)
	if err != nil {
		t.Fatalf("ParseAnswer failed: %v", err)
	}
	if parsed.Answer != "No." {
		t.Errorf("answer = %q", parsed.Answer)
	}
}

func TestParseAnswer_MarkdownFences(t *testing.T) {
	text := "```json\n{\"answer\": \"Yes.\", \"confidence\": 1.0}\n```"

	parsed, err := ParseAnswer(text)
	if err != nil {
		t.Fatalf("ParseAnswer failed: %v", err)
	}
	if parsed.Answer != "Yes." {
		t.Errorf("answer = %q", parsed.Answer)
	}
	if parsed.Confidence != 1.0 {
		t.Errorf("confidence = %v", parsed.Confidence)
	}
}

func TestParseAnswer_StringNumbers(t *testing.T) {
	text := `{"answer": "Yes.", "page": "12", "confidence": "0.5"}`

	parsed, err := ParseAnswer(text)
	if err != nil {
		t.Fatalf("ParseAnswer failed: %v", err)
	}
	if parsed.Page != 12 {
		t.Errorf("page = %d, expected 12", parsed.Page)
	}
	if !parsed.HasConfidence || parsed.Confidence != 0.5 {
		t.Errorf("confidence = %v", parsed.Confidence)
	}
}

func TestParseAnswer_MissingConfidence(t *testing.T) {
	parsed, err := ParseAnswer(`{"answer": "Yes."}`)
	if err != nil {
		t.Fatalf("ParseAnswer failed: %v", err)
	}
	if parsed.HasConfidence {
		t.Error("HasConfidence must be false when the model omits confidence")
	}
}

func TestParseAnswer_NoJSON(t *testing.T) {
	_, err := ParseAnswer("I am sorry, I cannot answer that question.")
	if !errors.Is(err, domain.ErrAnswerNotParseable) {
		t.Fatalf("expected ErrAnswerNotParseable, got %v", err)
	}
}

func TestParseAnswer_BrokenJSON(t *testing.T) {
	_, err := ParseAnswer(`{"answer": "Yes", "confidence": }`)
	if !errors.Is(err, domain.ErrAnswerNotParseable) {
		t.Fatalf("expected ErrAnswerNotParseable, got %v", err)
	}
}
