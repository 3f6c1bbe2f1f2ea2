package chunker

import "strings"

// CountTokens approximates a subword tokenizer count: every
// whitespace-delimited word contributes one token per four characters,
// rounded up, with a minimum of one. The function is deterministic so
// chunk boundaries are reproducible across runs and platforms.
func CountTokens(text string) int {
	total := 0
	for _, word := range strings.Fields(text) {
		n := (len(word) + 3) / 4
		if n < 1 {
			n = 1
		}
		total += n
	}
	return total
}
