package policy

import "strings"

// DefaultForbiddenPhrases lists topic fragments the interview must never ask
// about: anything requiring the client to guess at market analysis. The
// match is a deliberate literal substring policy, not semantic detection.
var DefaultForbiddenPhrases = []string{
	"expected demand",
	"future demand",
	"market forecast",
	"how much future demand",
	"how much demand",
	"estimate future sales",
	"foresee any increase in demand",
	"market size",
	"current market size",
	"future market size",
}

// Forbidden reports whether the candidate question touches a banned topic.
// Matching is case-insensitive substring over the configured fragments.
func Forbidden(candidate string, phrases []string) bool {
	lowered := strings.ToLower(candidate)
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
