package interview

import (
	"context"
	"testing"

	"github.com/unglihq/ungli/internal/transcript"
)

func TestEnsureConversationCreatesOnce(t *testing.T) {
	store := transcript.NewInMemoryStore()
	rec := transcript.NewRecorder(store)
	ctx := context.Background()

	conv, turns, err := EnsureConversation(ctx, store, rec, "sess-42")
	if err != nil {
		t.Fatalf("EnsureConversation() error = %v", err)
	}
	if len(turns) != 1 || turns[0].Text != OpeningQuestion {
		t.Fatalf("first init turns = %+v, want single opening question", turns)
	}
	if !turns[0].Speaker.IsAssistant() {
		t.Fatalf("opening turn speaker = %s, want assistant", turns[0].Speaker)
	}

	again, turns2, err := EnsureConversation(ctx, store, rec, "sess-42")
	if err != nil {
		t.Fatalf("second EnsureConversation() error = %v", err)
	}
	if again.ID != conv.ID {
		t.Fatalf("second init conversation = %q, want %q", again.ID, conv.ID)
	}
	if len(turns2) != 1 {
		t.Fatalf("second init turns = %d, want 1 (no duplicate opening)", len(turns2))
	}
}

func TestEnsureConversationReseedsEmptyTranscript(t *testing.T) {
	store := transcript.NewInMemoryStore()
	rec := transcript.NewRecorder(store)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, transcript.Conversation{
		SessionKey: "sess-empty",
		Title:      "Product discovery",
	})
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	got, turns, err := EnsureConversation(ctx, store, rec, "sess-empty")
	if err != nil {
		t.Fatalf("EnsureConversation() error = %v", err)
	}
	if got.ID != conv.ID {
		t.Fatalf("conversation = %q, want existing %q", got.ID, conv.ID)
	}
	if len(turns) != 1 || turns[0].Text != OpeningQuestion {
		t.Fatalf("turns = %+v, want opening question re-seeded", turns)
	}

	stored, err := store.ListTurns(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListTurns() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored turns = %d, want 1", len(stored))
	}
}
