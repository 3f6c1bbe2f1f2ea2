package chi

import (
	"github.com/kailas-cloud/clausewise/internal/domain"
	healthuc "github.com/kailas-cloud/clausewise/internal/usecase/health"
)

// ErrorCode is a machine-readable error identifier returned to clients.
type ErrorCode string

const (
	CodeBadRequest              ErrorCode = "bad_request"
	CodeValidationFailed        ErrorCode = "validation_failed"
	CodeUnsupportedDocument     ErrorCode = "unsupported_document"
	CodeEmbeddingProviderError  ErrorCode = "embedding_provider_error"
	CodeGenerationProviderError ErrorCode = "generation_provider_error"
	CodeRateLimited             ErrorCode = "rate_limited"
	CodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type addDocumentRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	// Content is accepted as an alias of text for older clients.
	Content      string `json:"content"`
	FileURL      string `json:"file_url"`
	DocumentType string `json:"document_type"`
}

type addDocumentResponse struct {
	Status      string `json:"status"`
	DocumentID  string `json:"document_id"`
	ChunksAdded int    `json:"chunks_added"`
	Message     string `json:"message"`
}

type queryRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
	// Query is accepted as an alias of question for older clients.
	Query      string `json:"query"`
	DocumentID string `json:"document_id"`
}

type traceabilityInfo struct {
	ClauseID   string  `json:"clause_id"`
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
}

type clauseRef struct {
	Reference string `json:"Reference"`
	Text      string `json:"Text"`
}

type justification struct {
	Summary string      `json:"Summary"`
	Clauses []clauseRef `json:"Clauses"`
}

// queryResponse carries the structured answer plus, on the rule-based
// fallback path, the capitalized legacy decision fields older clients
// still consume.
type queryResponse struct {
	Answer       string           `json:"answer"`
	Traceability traceabilityInfo `json:"traceability"`
	Confidence   float64          `json:"confidence"`
	Explanation  string           `json:"explanation"`
	State        string           `json:"state"`

	Decision      string         `json:"Decision,omitempty"`
	Amount        string         `json:"Amount,omitempty"`
	Justification *justification `json:"Justification,omitempty"`
}

type clearDocumentsRequest struct {
	UserID string `json:"user_id"`
}

type clearDocumentsResponse struct {
	Status  string `json:"status"`
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

type quotaStatus struct {
	RequestsUsed      int64  `json:"requests_used"`
	MaxRequests       int64  `json:"max_requests"`
	RequestsRemaining int64  `json:"requests_remaining"`
	ResetDate         string `json:"reset_date"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Quota  *quotaStatus      `json:"quota,omitempty"`
}

func answerToResponse(a domain.Answer) queryResponse {
	resp := queryResponse{
		Answer: a.Answer,
		Traceability: traceabilityInfo{
			ClauseID:   a.Traceability.ClauseID,
			Text:       a.Traceability.Text,
			Page:       a.Traceability.Page,
			Confidence: a.Traceability.Confidence,
		},
		Confidence:  a.Confidence,
		Explanation: a.Explanation,
		State:       string(a.State),
	}

	if a.Legacy != nil {
		resp.Decision = string(a.Legacy.Decision)
		resp.Amount = a.Legacy.Amount
		j := justification{
			Summary: a.Legacy.Justification.Summary,
			Clauses: make([]clauseRef, len(a.Legacy.Justification.Clauses)),
		}
		for i, c := range a.Legacy.Justification.Clauses {
			j.Clauses[i] = clauseRef{Reference: c.Reference, Text: c.Text}
		}
		resp.Justification = &j
	}

	return resp
}

func healthToResponse(r healthuc.Report) healthResponse {
	checks := make(map[string]string, len(r.Checks))
	for name, result := range r.Checks {
		checks[name] = string(result)
	}

	resp := healthResponse{
		Status: string(r.Status),
		Checks: checks,
	}
	if r.Quota != nil {
		resp.Quota = &quotaStatus{
			RequestsUsed:      r.Quota.RequestsUsed,
			MaxRequests:       r.Quota.MaxRequests,
			RequestsRemaining: r.Quota.RequestsRemaining,
			ResetDate:         r.Quota.ResetDate,
		}
	}
	return resp
}
