package transcript

import (
	"context"
	"time"
)

// Recorder appends turns with ordering guarantees and keeps the
// conversation summary fields fresh.
type Recorder struct {
	store Store
	now   func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// RecordUserTurn appends the user's utterance with the current timestamp.
func (r *Recorder) RecordUserTurn(ctx context.Context, conversationID, text string) (Turn, error) {
	turn := Turn{
		ConversationID: conversationID,
		Speaker:        SpeakerUser,
		Text:           text,
		CreatedAt:      r.now(),
	}
	saved, err := r.store.AppendTurn(ctx, turn)
	if err != nil {
		return Turn{}, err
	}
	if err := r.store.TouchConversation(ctx, conversationID, text, saved.CreatedAt); err != nil {
		return Turn{}, err
	}
	return saved, nil
}

// RecordAssistantTurn appends an assistant utterance. When the clock has not
// advanced past notBefore (the preceding user turn), the timestamp is nudged
// forward so listing order stays user-then-assistant under coarse clocks.
func (r *Recorder) RecordAssistantTurn(ctx context.Context, conversationID, text string, notBefore time.Time) (Turn, error) {
	at := r.now()
	if !notBefore.IsZero() && !at.After(notBefore) {
		at = notBefore.Add(time.Millisecond)
	}
	turn := Turn{
		ConversationID: conversationID,
		Speaker:        SpeakerBot,
		Text:           text,
		CreatedAt:      at,
	}
	saved, err := r.store.AppendTurn(ctx, turn)
	if err != nil {
		return Turn{}, err
	}
	if err := r.store.TouchConversation(ctx, conversationID, text, saved.CreatedAt); err != nil {
		return Turn{}, err
	}
	return saved, nil
}
