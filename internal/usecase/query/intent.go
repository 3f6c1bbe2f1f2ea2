package query

import "strings"

// Intent is the coarse question category used by the fallback rules.
type Intent string

const (
	IntentGeneral       Intent = "general"
	IntentCoverageCheck Intent = "coverage_check"
	IntentAmountInquiry Intent = "amount_inquiry"
	IntentDefinition    Intent = "definition"
)

var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentCoverageCheck, []string{"covered", "cover", "eligible", "claim"}},
	{IntentAmountInquiry, []string{"how much", "amount", "cost", "price"}},
	{IntentDefinition, []string{"what is", "explain", "define"}},
}

// ParseIntent classifies a question by keyword presence, first match wins.
func ParseIntent(question string) Intent {
	q := strings.ToLower(question)
	for _, entry := range intentKeywords {
		for _, w := range entry.words {
			if strings.Contains(q, w) {
				return entry.intent
			}
		}
	}
	return IntentGeneral
}
