package research

import (
	"context"

	"github.com/unglihq/ungli/internal/completion"
)

// Tools is the capability surface of the research pipeline. Implementations
// never decide when to run; the orchestrator invokes each capability
// explicitly.
type Tools interface {
	Search(ctx context.Context, query string, near *LatLng) ([]Place, error)
	ScrapeWebsite(ctx context.Context, url string) (*WebsiteContent, error)
	ScrapeForum(ctx context.Context, company string) ([]ForumPost, error)
	SummarizeVideo(ctx context.Context, url string) (string, error)
}

// Toolset composes the concrete clients into the Tools surface.
type Toolset struct {
	places  *PlacesClient
	hn      *HNClient
	scraper *Scraper
	video   *VideoSummarizer
}

func NewToolset(places *PlacesClient, hn *HNClient, scraper *Scraper, client completion.Client) *Toolset {
	return &Toolset{
		places:  places,
		hn:      hn,
		scraper: scraper,
		video:   NewVideoSummarizer(scraper, client),
	}
}

func (t *Toolset) Search(ctx context.Context, query string, near *LatLng) ([]Place, error) {
	return t.places.SearchText(ctx, query, near)
}

func (t *Toolset) ScrapeWebsite(ctx context.Context, url string) (*WebsiteContent, error) {
	return t.scraper.Fetch(ctx, url)
}

func (t *Toolset) ScrapeForum(ctx context.Context, company string) ([]ForumPost, error) {
	return t.hn.SearchStories(ctx, company)
}

func (t *Toolset) SummarizeVideo(ctx context.Context, url string) (string, error) {
	return t.video.Summarize(ctx, url)
}
