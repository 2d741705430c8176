package policy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultDuplicateThreshold is the empirically tuned similarity score
// (0-100) above which a candidate counts as a re-asked question.
const DefaultDuplicateThreshold = 80

// Similarity scores two strings on a 0-100 edit-similarity scale,
// case-insensitive. 100 means identical after lowering.
func Similarity(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (longest - dist) * 100 / longest
}

// Duplicate reports whether the candidate is too similar to any previously
// asked assistant question. Guards against the model re-asking a question
// with paraphrased wording.
func Duplicate(candidate string, priorQuestions []string, threshold int) bool {
	for _, prior := range priorQuestions {
		if strings.TrimSpace(prior) == "" {
			continue
		}
		if Similarity(candidate, prior) >= threshold {
			return true
		}
	}
	return false
}
