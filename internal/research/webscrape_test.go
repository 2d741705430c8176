package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScraperFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Acme</title><style>p{}</style></head>
<body><script>ignore()</script>
<main><h1>Acme Compounds</h1><p>We make coupling agents.</p>
<a href="/products">Products</a>
<a href="https://www.youtube.com/watch?v=abc">Demo</a>
<a href="#top">Top</a></main></body></html>`))
	}))
	defer srv.Close()

	s := NewScraper(5 * time.Second)
	got, err := s.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	var sawHeading, sawScript bool
	for _, text := range got.TextContent {
		if text == "Acme Compounds" {
			sawHeading = true
		}
		if text == "ignore()" {
			sawScript = true
		}
	}
	if !sawHeading {
		t.Fatalf("heading text missing from %v", got.TextContent)
	}
	if sawScript {
		t.Fatalf("script body leaked into text content")
	}

	gotLinks := make(map[string]bool)
	for _, link := range got.Links {
		if link == srv.URL+"/#top" || link == srv.URL+"#top" {
			t.Fatalf("fragment link kept: %q", link)
		}
		gotLinks[link] = true
	}
	for _, want := range []string{srv.URL + "/products", "https://www.youtube.com/watch?v=abc"} {
		if !gotLinks[want] {
			t.Fatalf("missing link %q in %v", want, got.Links)
		}
	}
}

func TestDomainAsCompany(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.acme.example/about", "acme"},
		{"https://acme.co.in", "acme"},
		{"not a url", "unknown"},
	}
	for _, tc := range cases {
		if got := domainAsCompany(tc.url); got != tc.want {
			t.Fatalf("domainAsCompany(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
