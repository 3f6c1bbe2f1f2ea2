// Package query answers questions over a user's ingested documents:
// embed, retrieve, generate, and repair the model's structured output.
package query

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clausewise/internal/domain"
	"github.com/kailas-cloud/clausewise/internal/metrics"
)

const (
	// DefaultTopK is the retrieval depth.
	DefaultTopK = 5
	// DefaultMinScore is the relevance cut-off on similarity scores.
	DefaultMinScore = 0.6

	answerTextLimit = 500
)

const (
	notFoundAnswerText  = "Information not found in the provided document sections."
	notFoundClauseText  = "No matching clauses found in searched sections"
	notFoundExplanation = "The document sections searched did not contain information answering this question."

	degradedExplanation = "Response parsing encountered issues"
	fallbackExplanation = "Rule-based analysis of retrieved policy clauses."
)

// Service runs the retrieval-then-generation pipeline.
type Service struct {
	embedder  domain.Embedder
	retriever Retriever
	generator domain.Generator
	quota     QuotaChecker
	topK      int
	minScore  float64
	logger    *zap.Logger
}

// New creates a query service with default retrieval parameters.
func New(
	embedder domain.Embedder,
	retriever Retriever,
	generator domain.Generator,
	quota QuotaChecker,
	logger *zap.Logger,
) *Service {
	return &Service{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		quota:     quota,
		topK:      DefaultTopK,
		minScore:  DefaultMinScore,
		logger:    logger,
	}
}

// WithRetrieval overrides the retrieval depth and score cut-off.
func (s *Service) WithRetrieval(topK int, minScore float64) *Service {
	if topK > 0 {
		s.topK = topK
	}
	if minScore > 0 {
		s.minScore = minScore
	}
	return s
}

// Answer produces a structured, clause-traceable answer. Past retrieval
// it never fails: generation and parsing problems degrade into the
// rule-based or raw-text shapes instead of surfacing errors.
func (s *Service) Answer(ctx context.Context, question, userID, documentID string) (domain.Answer, error) {
	embedded, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}

	retrieved, err := s.retriever.Search(ctx, embedded.Embedding, userID, documentID, s.topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("search chunks: %w", err)
	}

	chunks := retrieved[:0]
	for _, c := range retrieved {
		if c.Score >= s.minScore {
			chunks = append(chunks, c)
		}
	}

	if len(chunks) == 0 {
		return s.finish(newNotFoundAnswer(), userID), nil
	}

	if err := s.quota.Check(ctx); err != nil {
		s.logger.Warn("Generation quota exhausted, using rule-based responder",
			zap.String("user_id", userID))
		return s.finish(s.fallbackAnswer(question, chunks, ReasonQuotaExceeded), userID), nil
	}

	prompt := BuildPrompt(question, chunks)

	generated, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("Generation failed, using rule-based responder",
			zap.String("user_id", userID), zap.Error(err))
		return s.finish(s.fallbackAnswer(question, chunks, ReasonGenerationFailed), userID), nil
	}
	s.quota.Record()

	parsed, err := ParseAnswer(generated.Text)
	if err != nil {
		s.logger.Warn("Generated answer not parseable, returning raw text",
			zap.String("user_id", userID), zap.Error(err))
		return s.finish(degradedAnswer(generated.Text, chunks), userID), nil
	}

	return s.finish(assembleAnswer(parsed, chunks), userID), nil
}

func (s *Service) finish(a domain.Answer, userID string) domain.Answer {
	metrics.AnswerStatesTotal.WithLabelValues(string(a.State)).Inc()
	s.logger.Info("Query answered",
		zap.String("user_id", userID),
		zap.String("state", string(a.State)),
		zap.Float64("confidence", a.Confidence))
	return a
}

func newNotFoundAnswer() domain.Answer {
	return domain.Answer{
		Answer: notFoundAnswerText,
		Traceability: domain.Traceability{
			ClauseID:   "N/A",
			Text:       notFoundClauseText,
			Page:       0,
			Confidence: 0.0,
		},
		Confidence:  0.0,
		Explanation: notFoundExplanation,
		State:       domain.StateNotFound,
	}
}

// assembleAnswer maps the parsed model output onto the answer shape,
// defaulting missing fields from the retrieved chunk set. The chunk the
// model cited supplies the confidence when the model omits one.
func assembleAnswer(parsed ParsedAnswer, chunks []domain.RetrievedChunk) domain.Answer {
	referenced := chunks[0]
	for _, c := range chunks {
		if parsed.ClauseID != "" && c.ClauseID == parsed.ClauseID {
			referenced = c
			break
		}
	}

	confidence := referenced.Score
	if parsed.HasConfidence {
		confidence = parsed.Confidence
	}

	answer := parsed.Answer
	if answer == "" {
		answer = "No answer provided"
	}
	clauseID := parsed.ClauseID
	if clauseID == "" {
		clauseID = referenced.ClauseID
	}
	clauseText := parsed.ClauseText
	if clauseText == "" {
		clauseText = referenced.Text
	}
	page := parsed.Page
	if page == 0 {
		page = referenced.Page
	}
	explanation := parsed.Explanation
	if explanation == "" {
		explanation = "Analysis completed"
	}

	return domain.Answer{
		Answer: answer,
		Traceability: domain.Traceability{
			ClauseID:   clauseID,
			Text:       truncate(clauseText, answerTextLimit),
			Page:       page,
			Confidence: confidence,
		},
		Confidence:  confidence,
		Explanation: explanation,
		State:       domain.StateAnswered,
	}
}

// degradedAnswer returns the raw model text when no JSON object could be
// recovered from it, anchored to the first retrieved chunk.
func degradedAnswer(rawText string, chunks []domain.RetrievedChunk) domain.Answer {
	first := chunks[0]
	return domain.Answer{
		Answer: truncate(rawText, answerTextLimit),
		Traceability: domain.Traceability{
			ClauseID:   first.ClauseID,
			Text:       truncate(first.Text, answerTextLimit),
			Page:       first.Page,
			Confidence: 0.3,
		},
		Confidence:  0.3,
		Explanation: degradedExplanation,
		State:       domain.StateDegraded,
	}
}

func (s *Service) fallbackAnswer(question string, chunks []domain.RetrievedChunk, reason FallbackReason) domain.Answer {
	legacy := FallbackRespond(question, chunks, reason)
	first := chunks[0]
	return domain.Answer{
		Answer: legacy.Justification.Summary,
		Traceability: domain.Traceability{
			ClauseID:   first.ClauseID,
			Text:       truncate(first.Text, answerTextLimit),
			Page:       first.Page,
			Confidence: 0.0,
		},
		Confidence:  0.0,
		Explanation: fallbackExplanation,
		State:       domain.StateFallback,
		Legacy:      &legacy,
	}
}

// truncate cuts s to at most limit bytes on a rune boundary, so a
// multi-byte character at the cut never leaks invalid UTF-8 into responses.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
