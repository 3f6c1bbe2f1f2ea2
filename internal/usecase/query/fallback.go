package query

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/clausewise/internal/domain"
)

// FallbackReason says why the rule-based responder was invoked.
type FallbackReason int

const (
	// ReasonQuotaExceeded means the daily generation quota is exhausted.
	ReasonQuotaExceeded FallbackReason = iota
	// ReasonGenerationFailed means the generation call failed or its
	// output was rejected.
	ReasonGenerationFailed
)

const (
	quotaSummary   = "AI analysis limit reached for today."
	failureSummary = "AI analysis temporarily unavailable."
)

// Rule is one keyword predicate over the question and retrieved context.
// Rules are evaluated in order, first match wins. Treat the table as
// configuration data.
type Rule struct {
	Match    func(question, context string, intent Intent) bool
	Decision domain.Decision
	Summary  string
}

func questionHas(q string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

var fallbackRules = []Rule{
	{
		Match: func(q, ctx string, _ Intent) bool {
			return questionHas(q, "pre-existing", "pre existing", "surgery", "illness", "medical condition") &&
				questionHas(ctx, "pre-existing", "pre existing", "excluded", "not covered", "exclusion", "maternity")
		},
		Decision: domain.DecisionRejected,
		Summary:  "Surgery for pre-existing medical conditions is typically excluded from coverage under travel insurance policies.",
	},
	{
		Match: func(q, ctx string, _ Intent) bool {
			return questionHas(q, "pre-existing", "pre existing", "surgery", "illness", "medical condition") &&
				questionHas(ctx, "covered", "eligible", "emergency surgery")
		},
		Decision: domain.DecisionPartiallyApproved,
		Summary:  "Emergency surgery may be covered if it's unrelated to pre-existing conditions.",
	},
	{
		Match: func(q, _ string, _ Intent) bool {
			return questionHas(q, "pre-existing", "pre existing", "surgery", "illness", "medical condition")
		},
		Decision: domain.DecisionInformationOnly,
		Summary:  "Your policy contains information about pre-existing medical conditions.",
	},
	{
		Match: func(q, ctx string, _ Intent) bool {
			return strings.Contains(q, "death") && strings.Contains(q, "accident") &&
				questionHas(ctx, "accidental death", "death benefit", "accident benefit")
		},
		Decision: domain.DecisionApproved,
		Summary:  "Accidental death benefits are covered under your policy.",
	},
	{
		Match: func(q, ctx string, _ Intent) bool {
			return strings.Contains(q, "death") && strings.Contains(q, "accident") &&
				questionHas(ctx, "excluded", "not covered")
		},
		Decision: domain.DecisionRejected,
		Summary:  "Accidental death in road accidents is excluded from coverage.",
	},
	{
		Match: func(q, _ string, _ Intent) bool {
			return strings.Contains(q, "death") && strings.Contains(q, "accident")
		},
		Decision: domain.DecisionInformationOnly,
		Summary:  "Policy information regarding accidental death benefits has been located.",
	},
	{
		Match: func(_, ctx string, intent Intent) bool {
			return intent == IntentCoverageCheck && questionHas(ctx, "covered", "eligible", "benefit payable")
		},
		Decision: domain.DecisionApproved,
		Summary:  "This claim is covered under your policy terms.",
	},
	{
		Match: func(_, ctx string, intent Intent) bool {
			return intent == IntentCoverageCheck && questionHas(ctx, "excluded", "not covered", "not eligible")
		},
		Decision: domain.DecisionRejected,
		Summary:  "This claim is not covered based on policy exclusions.",
	},
	{
		Match: func(_, _ string, intent Intent) bool {
			return intent == IntentCoverageCheck
		},
		Decision: domain.DecisionInformationOnly,
		Summary:  "Coverage information has been found in your policy documents.",
	},
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sum insured[:\s]*\$?[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)benefit[:\s]*\$?[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)maximum[:\s]*\$?[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)\d+%\s*of\s*(?:sum insured|annual income|actual cost)`),
	regexp.MustCompile(`(?i)up to\s*\$?[\d,]+(?:\.\d{2})?`),
}

var clausePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Section\s+[IVX\d]+[^:]*:?[^.]*)`),
	regexp.MustCompile(`(?i)(Clause\s+[IVX\d]+[^:]*:?[^.]*)`),
	regexp.MustCompile(`(?i)(Article\s+[IVX\d]+[^:]*:?[^.]*)`),
	regexp.MustCompile(`(?i)(Benefit\s+[IVX\d]+[^:]*:?[^.]*)`),
	regexp.MustCompile(`(?i)(Coverage\s+[A-Z][^:]*:?[^.]*)`),
	regexp.MustCompile(`(?i)(EXCLUSIONS?[^:]*:?[^.]*)`),
	regexp.MustCompile(`(?i)(Pre-existing[^:]*:?[^.]*)`),
}

const (
	clauseExcerptLen    = 300
	clausesPerPattern   = 2
	fallbackContextTrim = 200
)

// FallbackRespond produces a structured decision without the generation
// model: keyword rules pick the decision, regexes lift amounts and
// clause headings out of the retrieved context. Low precision by intent,
// it is a safety net, not a substitute for generation.
func FallbackRespond(question string, chunks []domain.RetrievedChunk, reason FallbackReason) domain.LegacyDecision {
	var contextParts []string
	for _, c := range chunks {
		contextParts = append(contextParts, c.Text)
	}
	context := strings.Join(contextParts, "\n\n")

	decision := domain.DecisionInformationOnly
	var summary string
	switch reason {
	case ReasonQuotaExceeded:
		summary = quotaSummary
	default:
		summary = failureSummary
	}

	// Quota exhaustion pins the decision and summary, rules are skipped.
	if reason != ReasonQuotaExceeded {
		q := strings.ToLower(question)
		ctx := strings.ToLower(context)
		intent := ParseIntent(question)
		for _, rule := range fallbackRules {
			if rule.Match(q, ctx, intent) {
				decision = rule.Decision
				summary = rule.Summary
				break
			}
		}
	}

	return domain.LegacyDecision{
		Decision: decision,
		Amount:   extractAmount(context),
		Justification: domain.Justification{
			Summary: summary,
			Clauses: extractClauses(context),
		},
	}
}

// extractAmount returns the first monetary or percentage amount found in
// the context, in pattern order, or "sum insured" when nothing matches.
func extractAmount(context string) string {
	for _, p := range amountPatterns {
		if m := p.FindString(context); m != "" {
			return m
		}
	}
	return "sum insured"
}

// extractClauses lifts clause-like headings with a 300-char excerpt each,
// at most two matches per pattern. When nothing matches, a trimmed slice
// of the context stands in.
func extractClauses(context string) []domain.ClauseRef {
	var clauses []domain.ClauseRef
	lower := strings.ToLower(context)

	for _, p := range clausePatterns {
		matches := p.FindAllString(context, clausesPerPattern)
		for _, m := range matches {
			start := strings.Index(lower, strings.ToLower(m))
			if start == -1 {
				continue
			}
			end := start + clauseExcerptLen
			if end > len(context) {
				end = len(context)
			}
			clauses = append(clauses, domain.ClauseRef{
				Reference: strings.TrimSpace(m),
				Text:      strings.TrimSpace(context[start:end]),
			})
		}
	}

	if len(clauses) == 0 {
		text := context
		if len(text) > fallbackContextTrim {
			text = text[:fallbackContextTrim] + "..."
		}
		clauses = []domain.ClauseRef{{Reference: "Policy Terms", Text: text}}
	}
	return clauses
}
