package policy

import "testing"

func TestForbidden(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"clean question", "What certifications does your product hold?", false},
		{"exact fragment", "What is the expected demand for this product?", true},
		{"mixed case", "Can you share the MARKET Size you are targeting?", true},
		{"fragment inside word run", "How much demand do you anticipate?", true},
		{"empty candidate", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Forbidden(tt.candidate, DefaultForbiddenPhrases); got != tt.want {
				t.Fatalf("Forbidden(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("What is your MOQ?", "what is your moq?"); got != 100 {
		t.Fatalf("case-insensitive identical strings scored %d, want 100", got)
	}
	got := Similarity("What's your MOQ minimum order quantity?", "What is your minimum order quantity?")
	if got < 80 {
		t.Fatalf("paraphrase scored %d, want >= 80", got)
	}
	if got := Similarity("", ""); got != 100 {
		t.Fatalf("empty strings scored %d, want 100", got)
	}
}

func TestDuplicate(t *testing.T) {
	history := []string{
		"Hello! What is the name or model of the product?",
		"What is your minimum order quantity?",
	}
	if !Duplicate("What's your MOQ minimum order quantity?", history, DefaultDuplicateThreshold) {
		t.Fatal("paraphrased re-ask not flagged as duplicate")
	}
	if Duplicate("What certifications does your product hold?", history, DefaultDuplicateThreshold) {
		t.Fatal("fresh question flagged as duplicate")
	}
	if Duplicate("anything", nil, DefaultDuplicateThreshold) {
		t.Fatal("empty history flagged a duplicate")
	}
}

func TestFiltersCheck(t *testing.T) {
	f := NewFilters(nil, 0)
	history := []string{"What is your minimum order quantity?"}

	if v := f.Check("What is the market size?", history); v != ViolationForbidden {
		t.Fatalf("Check() = %q, want %q", v, ViolationForbidden)
	}
	if v := f.Check("What's your MOQ minimum order quantity?", history); v != ViolationDuplicate {
		t.Fatalf("Check() = %q, want %q", v, ViolationDuplicate)
	}
	if v := f.Check("Where is your product manufactured?", history); v != ViolationNone {
		t.Fatalf("Check() = %q, want none", v)
	}
}
