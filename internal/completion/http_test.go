package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  What does this product do?  "}},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{
		URL:         srv.URL,
		APIKey:      "sk-test",
		Model:       "gpt-4o",
		MaxTokens:   30,
		Temperature: 0.1,
		Timeout:     5 * time.Second,
	})

	got, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "ask questions"},
		{Role: RoleUser, Content: "Acme Widget"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "What does this product do?" {
		t.Fatalf("Complete() = %q, want trimmed question", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotReq.Model != "gpt-4o" || gotReq.MaxTokens != 30 {
		t.Fatalf("request model/max_tokens = %q/%d", gotReq.Model, gotReq.MaxTokens)
	}
}

func TestHTTPClientCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{URL: srv.URL, Timeout: 5 * time.Second})
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("Complete() error = nil, want gateway error")
	}
	if !IsGatewayError(err) {
		t.Fatalf("IsGatewayError(%v) = false, want true", err)
	}
}

func TestHTTPClientCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{URL: srv.URL, Timeout: 5 * time.Second})
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !IsGatewayError(err) {
		t.Fatalf("Complete() error = %v, want gateway error", err)
	}
}

func TestNewModeSelection(t *testing.T) {
	if _, err := New(Config{Mode: "http"}); err == nil {
		t.Fatal("New(http without URL) error = nil, want error")
	}
	c, err := New(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("New(auto) error = %v", err)
	}
	if _, ok := c.(*MockClient); !ok {
		t.Fatalf("New(auto) without URL = %T, want *MockClient", c)
	}
	if _, err := New(Config{Mode: "banana"}); err == nil {
		t.Fatal("New(banana) error = nil, want error")
	}
}
