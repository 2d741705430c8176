package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHNSearchURL = "https://hn.algolia.com/api/v1/search"

// HNClient searches Hacker News stories through the Algolia API.
type HNClient struct {
	baseURL string
	client  *http.Client
}

func NewHNClient(baseURL string, timeout time.Duration) *HNClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultHNSearchURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HNClient{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type hnSearchResponse struct {
	Hits []struct {
		ObjectID    string `json:"objectID"`
		Author      string `json:"author"`
		URL         string `json:"url"`
		CreatedAt   string `json:"created_at"`
		NumComments int    `json:"num_comments"`
		Title       string `json:"title"`
		StoryTitle  string `json:"story_title"`
	} `json:"hits"`
}

// SearchStories returns normalized story posts mentioning the company.
func (c *HNClient) SearchStories(ctx context.Context, company string) ([]ForumPost, error) {
	company = strings.ToLower(strings.TrimSpace(company))
	if company == "" {
		return nil, nil
	}
	q := url.Values{"query": {company}, "tags": {"story"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create hn request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hn search %q: %w", company, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hn search status %d", res.StatusCode)
	}

	var parsed hnSearchResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 4<<20)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse hn response: %w", err)
	}

	posts := make([]ForumPost, 0, len(parsed.Hits))
	for _, hit := range parsed.Hits {
		title := hit.Title
		if title == "" {
			title = hit.StoryTitle
		}
		post := ForumPost{
			ID:          hit.ObjectID,
			Author:      hit.Author,
			Title:       title,
			URL:         hit.URL,
			NumComments: hit.NumComments,
		}
		if at, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			post.CreatedAt = at
		}
		posts = append(posts, post)
	}
	return posts, nil
}
