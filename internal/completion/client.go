package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Chat roles on the completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the chat history sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces the next assistant message for a chat history.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// GatewayError marks a failure talking to the completion backend, as opposed
// to the backend returning an unusable answer. Callers surface these to the
// user as a generic apology rather than retrying.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("completion gateway: %v", e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }

// IsGatewayError reports whether err is (or wraps) a gateway failure.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// Config controls client construction.
type Config struct {
	Mode        string
	URL         string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// New builds a Client for the configured mode. "auto" picks http when a URL
// is configured and falls back to the deterministic mock otherwise.
func New(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.URL) != "" {
			return NewHTTPClient(cfg), nil
		}
		return NewMockClient(), nil
	case "http":
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, errors.New("completion URL is required for http mode")
		}
		return NewHTTPClient(cfg), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported completion mode %q", cfg.Mode)
	}
}
