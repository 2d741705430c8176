package transcript

import (
	"context"
	"errors"
	"time"
)

// Speaker identifies who authored a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
	// SpeakerBot is the fixed system identity used when the service itself
	// seeds or answers a conversation. Treated as assistant everywhere.
	SpeakerBot Speaker = "bot"
)

// IsAssistant reports whether the speaker maps to the assistant role.
func (s Speaker) IsAssistant() bool {
	return s == SpeakerAssistant || s == SpeakerBot
}

// Turn is one immutable utterance within a conversation. The log is
// append-only: turns are never mutated or deleted.
type Turn struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Speaker        Speaker   `json:"speaker"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation carries the denormalized listing summary for one interview.
// The summary fields are derived from the turn log and refreshed on every
// append; the turn log stays authoritative.
type Conversation struct {
	ID             string    `json:"id"`
	SessionKey     string    `json:"session_key"`
	Title          string    `json:"title"`
	LastMessage    string    `json:"last_message"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

var ErrConversationNotFound = errors.New("conversation not found")

// Store persists conversations and their ordered turn logs.
type Store interface {
	CreateConversation(ctx context.Context, conv Conversation) (Conversation, error)
	GetConversation(ctx context.Context, id string) (Conversation, error)
	GetConversationBySessionKey(ctx context.Context, sessionKey string) (Conversation, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
	TouchConversation(ctx context.Context, id, lastMessage string, at time.Time) error

	AppendTurn(ctx context.Context, turn Turn) (Turn, error)
	// ListTurns returns turns in ascending CreatedAt order; equal timestamps
	// keep insertion order.
	ListTurns(ctx context.Context, conversationID string) ([]Turn, error)

	Close() error
}
