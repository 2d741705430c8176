package completion

import (
	"context"
	"strings"
	"sync"
)

// MockClient returns canned replies for local development and tests.
// Replies are consumed in order; once exhausted it echoes the last
// user message.
type MockClient struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func NewMockClient(replies ...string) *MockClient {
	return &MockClient{replies: replies}
}

func (m *MockClient) Complete(ctx context.Context, messages []Message) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.replies) > 0 {
		reply := m.replies[0]
		m.replies = m.replies[1:]
		return reply, nil
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && strings.TrimSpace(messages[i].Content) != "" {
			return "I heard you: " + strings.TrimSpace(messages[i].Content), nil
		}
	}
	return "I am listening.", nil
}

// Calls reports how many completions were requested.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
