package policy

// Violation names the filter a candidate question failed.
type Violation string

const (
	ViolationNone      Violation = ""
	ViolationForbidden Violation = "forbidden_topic"
	ViolationDuplicate Violation = "duplicate_question"
)

// Filters bundles the interview's output checks.
type Filters struct {
	Phrases            []string
	DuplicateThreshold int
}

func NewFilters(phrases []string, threshold int) Filters {
	if len(phrases) == 0 {
		phrases = DefaultForbiddenPhrases
	}
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	return Filters{Phrases: phrases, DuplicateThreshold: threshold}
}

// Check runs the candidate question through both filters and reports the
// first violation found. Forbidden topics are checked before duplicates so
// a question that fails both is reported as a topic violation.
func (f Filters) Check(candidate string, priorQuestions []string) Violation {
	if Forbidden(candidate, f.Phrases) {
		return ViolationForbidden
	}
	if Duplicate(candidate, priorQuestions, f.DuplicateThreshold) {
		return ViolationDuplicate
	}
	return ViolationNone
}
