package domain

// AnswerState labels the terminal state an answer was produced in.
type AnswerState string

const (
	// StateNotFound means retrieval produced zero usable chunks.
	StateNotFound AnswerState = "not_found"
	// StateAnswered means the generation model produced a parseable answer.
	StateAnswered AnswerState = "answered"
	// StateDegraded means generation succeeded but its output was not
	// parseable; the raw text was returned with a low fixed confidence.
	StateDegraded AnswerState = "degraded"
	// StateFallback means generation failed or was quota-gated and the
	// rule-based responder produced the answer.
	StateFallback AnswerState = "fallback"
)

// Decision is the coarse claim-decision label of the legacy response shape.
type Decision string

const (
	DecisionApproved          Decision = "Approved"
	DecisionRejected          Decision = "Rejected"
	DecisionPartiallyApproved Decision = "Partially Approved"
	DecisionInformationOnly   Decision = "Information Only"
)

// Traceability points at the clause justifying an answer.
type Traceability struct {
	ClauseID   string
	Text       string
	Page       int
	Confidence float64
}

// ClauseRef is a single cited clause in the legacy justification block.
type ClauseRef struct {
	Reference string
	Text      string
}

// Justification is the legacy decision explanation block.
type Justification struct {
	Summary string
	Clauses []ClauseRef
}

// Answer is the structured result of one query. Transient, never persisted.
// Legacy holds the backward-compatible decision shape; it is populated on
// the rule-based fallback path and nil otherwise.
type Answer struct {
	Answer       string
	Traceability Traceability
	Confidence   float64
	Explanation  string
	State        AnswerState
	Legacy       *LegacyDecision
}

// LegacyDecision is the backward-compatible structured decision.
type LegacyDecision struct {
	Decision      Decision
	Amount        string
	Justification Justification
}
