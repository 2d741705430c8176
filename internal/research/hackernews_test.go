package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchStories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tags"); got != "story" {
			t.Errorf("tags = %q, want story", got)
		}
		if got := r.URL.Query().Get("query"); got != "acme compounds" {
			t.Errorf("query = %q, want lowercased company", got)
		}
		_, _ = w.Write([]byte(`{"hits":[
			{"objectID":"1","author":"pg","url":"https://acme.example","created_at":"2024-03-01T10:00:00Z","num_comments":12,"title":"Acme launches"},
			{"objectID":"2","author":"dang","story_title":"Ask HN: Acme?"}
		]}`))
	}))
	defer srv.Close()

	c := NewHNClient(srv.URL, 5*time.Second)
	got, err := c.SearchStories(context.Background(), "  Acme Compounds ")
	if err != nil {
		t.Fatalf("SearchStories() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(got))
	}
	if got[0].Title != "Acme launches" || got[0].NumComments != 12 {
		t.Fatalf("posts[0] = %+v", got[0])
	}
	if got[1].Title != "Ask HN: Acme?" {
		t.Fatalf("posts[1].Title = %q, want story_title fallback", got[1].Title)
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatalf("posts[0].CreatedAt not parsed")
	}
}

func TestSearchStoriesEmptyCompany(t *testing.T) {
	c := NewHNClient("http://127.0.0.1:0", time.Second)
	got, err := c.SearchStories(context.Background(), "   ")
	if err != nil || got != nil {
		t.Fatalf("SearchStories(blank) = %v, %v, want nil, nil", got, err)
	}
}
