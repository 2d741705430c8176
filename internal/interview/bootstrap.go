package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/unglihq/ungli/internal/transcript"
)

// EnsureConversation finds the conversation bound to sessionKey, creating it
// and recording the opening question on first sight. Safe to call on every
// client init; an existing conversation with turns is returned untouched,
// while an empty transcript gets the opening question recorded again.
func EnsureConversation(ctx context.Context, store transcript.Store, rec *transcript.Recorder, sessionKey string) (transcript.Conversation, []transcript.Turn, error) {
	conv, err := store.GetConversationBySessionKey(ctx, sessionKey)
	if err == nil {
		turns, err := store.ListTurns(ctx, conv.ID)
		if err != nil {
			return transcript.Conversation{}, nil, fmt.Errorf("list turns: %w", err)
		}
		if len(turns) == 0 {
			opening, err := rec.RecordAssistantTurn(ctx, conv.ID, OpeningQuestion, conv.CreatedAt)
			if err != nil {
				return transcript.Conversation{}, nil, fmt.Errorf("record opening question: %w", err)
			}
			turns = []transcript.Turn{opening}
		}
		return conv, turns, nil
	}
	if !errors.Is(err, transcript.ErrConversationNotFound) {
		return transcript.Conversation{}, nil, fmt.Errorf("lookup session %q: %w", sessionKey, err)
	}

	conv, err = store.CreateConversation(ctx, transcript.Conversation{
		SessionKey: sessionKey,
		Title:      "Product discovery",
	})
	if err != nil {
		return transcript.Conversation{}, nil, fmt.Errorf("create conversation: %w", err)
	}
	opening, err := rec.RecordAssistantTurn(ctx, conv.ID, OpeningQuestion, conv.CreatedAt)
	if err != nil {
		return transcript.Conversation{}, nil, fmt.Errorf("record opening question: %w", err)
	}
	return conv, []transcript.Turn{opening}, nil
}
