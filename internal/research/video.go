package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/unglihq/ungli/internal/completion"
)

const videoSummaryLimit = 12000

// VideoSummarizer fetches a video page and summarizes its visible text
// through the completion gateway.
type VideoSummarizer struct {
	scraper *Scraper
	client  completion.Client
}

func NewVideoSummarizer(scraper *Scraper, client completion.Client) *VideoSummarizer {
	return &VideoSummarizer{scraper: scraper, client: client}
}

func (v *VideoSummarizer) Summarize(ctx context.Context, url string) (string, error) {
	content, err := v.scraper.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	text := strings.Join(content.TextContent, " ")
	if len(text) > videoSummaryLimit {
		text = text[:videoSummaryLimit]
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no extractable text at %s", url)
	}

	prompt := "You are a product analyst. Summarize what this video page says about the product: " +
		"what the product is, how it is demonstrated or used, and any claims about performance or applications.\n\n" + text
	summary, err := v.client.Complete(ctx, []completion.Message{
		{Role: completion.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("summarize video %s: %w", url, err)
	}
	return summary, nil
}
