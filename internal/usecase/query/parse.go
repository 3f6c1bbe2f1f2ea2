package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

// ParsedAnswer is the model's answer after JSON extraction. Fields the
// model omitted are left at zero values; the caller defaults them from
// the retrieved chunk set.
type ParsedAnswer struct {
	Answer        string
	ClauseID      string
	ClauseText    string
	Page          int
	Confidence    float64
	HasConfidence bool
	Explanation   string
}

// ParseAnswer extracts the JSON object from raw model output. The object
// is located by the first '{' and last '}'; when that slice does not
// parse, markdown code fences are stripped and the extraction retried.
func ParseAnswer(text string) (ParsedAnswer, error) {
	if parsed, err := parseObject(text); err == nil {
		return parsed, nil
	}

	stripped := strings.ReplaceAll(text, "```json", "")
	stripped = strings.ReplaceAll(stripped, "```", "")
	parsed, err := parseObject(stripped)
	if err != nil {
		return ParsedAnswer{}, fmt.Errorf("%w: %v", domain.ErrAnswerNotParseable, err)
	}
	return parsed, nil
}

func parseObject(text string) (ParsedAnswer, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ParsedAnswer{}, fmt.Errorf("no JSON object found")
	}

	// The model may return page and confidence as numbers or as quoted
	// strings; both are accepted.
	var raw struct {
		Answer      string          `json:"answer"`
		ClauseID    string          `json:"clause_id"`
		ClauseText  string          `json:"clause_text"`
		Page        json.RawMessage `json:"page"`
		Confidence  json.RawMessage `json:"confidence"`
		Explanation string          `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return ParsedAnswer{}, fmt.Errorf("unmarshal answer: %w", err)
	}

	parsed := ParsedAnswer{
		Answer:      raw.Answer,
		ClauseID:    raw.ClauseID,
		ClauseText:  raw.ClauseText,
		Explanation: raw.Explanation,
	}
	if f, ok := flexFloat(raw.Page); ok {
		parsed.Page = int(f)
	}
	if f, ok := flexFloat(raw.Confidence); ok {
		parsed.Confidence = f
		parsed.HasConfidence = true
	}
	return parsed, nil
}

// flexFloat reads a JSON number or a numeric string.
func flexFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
