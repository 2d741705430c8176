package research

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/unglihq/ungli/internal/completion"
	"github.com/unglihq/ungli/internal/observability"
	"github.com/unglihq/ungli/internal/transcript"
)

// Geocoder resolves a free-form location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*LatLng, error)
}

// Pipeline turns a finished transcript into persisted company leads.
// Every step is invoked explicitly; the tools never self-schedule.
type Pipeline struct {
	extractor   *Extractor
	tools       Tools
	geocoder    Geocoder
	store       Store
	summarizer  completion.Client
	enrichLimit int
}

func NewPipeline(extractor *Extractor, tools Tools, geocoder Geocoder, store Store, summarizer completion.Client, enrichLimit int) *Pipeline {
	if enrichLimit < 0 {
		enrichLimit = 0
	}
	return &Pipeline{
		extractor:   extractor,
		tools:       tools,
		geocoder:    geocoder,
		store:       store,
		summarizer:  summarizer,
		enrichLimit: enrichLimit,
	}
}

// Run executes the full research pass for one conversation: applications,
// search terms, places search, dedupe, persistence, then bounded company
// enrichment. Per-application failures degrade the result status instead of
// aborting the run.
func (p *Pipeline) Run(ctx context.Context, conversationID string, turns []transcript.Turn) error {
	applications, err := p.extractor.Applications(ctx, turns)
	if err != nil {
		return err
	}
	if len(applications) == 0 {
		return errors.New("no applications extracted from transcript")
	}

	var coords *LatLng
	if loc := UserLocation(turns); loc != "" {
		coords, err = p.geocoder.Geocode(ctx, loc)
		if err != nil {
			log.Printf("research: geocode %q failed: %v", loc, err)
		}
	}

	enriched := 0
	for _, application := range applications {
		result := Result{
			ConversationID: conversationID,
			Application:    application,
			Status:         StatusZeroResults,
			UpdatedAt:      time.Now().UTC(),
		}

		terms, err := p.extractor.SearchTerms(ctx, application)
		if err != nil {
			log.Printf("research: search terms for %q failed: %v", application, err)
			result.Status = StatusError
			if err := p.store.SaveResult(ctx, result); err != nil {
				return fmt.Errorf("save result for %q: %w", application, err)
			}
			continue
		}
		result.SearchTerms = terms

		seen := make(map[string]bool)
		for _, term := range terms {
			places, err := p.tools.Search(ctx, term, coords)
			if err != nil {
				log.Printf("research: search %q failed: %v", term, err)
				result.Status = StatusError
			}
			for _, place := range places {
				if place.ID == "" || seen[place.ID] {
					continue
				}
				if place.BusinessStatus == businessStatusClosed {
					continue
				}
				seen[place.ID] = true
				result.Companies = append(result.Companies, place)
			}
		}
		if len(result.Companies) > 0 && result.Status != StatusError {
			result.Status = StatusOK
		}

		for i := range result.Companies {
			if enriched >= p.enrichLimit {
				break
			}
			enrichment := p.enrichCompany(ctx, result.Companies[i])
			if enrichment != nil {
				if result.Enrichments == nil {
					result.Enrichments = make(map[string]CompanyEnrichment)
				}
				result.Enrichments[result.Companies[i].ID] = *enrichment
			}
			enriched++
		}

		if err := p.store.SaveResult(ctx, result); err != nil {
			return fmt.Errorf("save result for %q: %w", application, err)
		}
	}
	return nil
}

// enrichCompany gathers optional deep-dive material. Every sub-step is
// best-effort.
func (p *Pipeline) enrichCompany(ctx context.Context, place Place) *CompanyEnrichment {
	var enrichment CompanyEnrichment

	if posts, err := p.tools.ScrapeForum(ctx, place.Name); err == nil && len(posts) > 0 {
		enrichment.ForumPosts = posts
	}

	if place.WebsiteURL != "" {
		if content, err := p.tools.ScrapeWebsite(ctx, place.WebsiteURL); err == nil {
			if summary, err := p.summarizeWebsite(ctx, content); err == nil {
				enrichment.WebsiteSummary = summary
			}
			if videoURL := firstVideoLink(content.Links); videoURL != "" {
				if summary, err := p.tools.SummarizeVideo(ctx, videoURL); err == nil {
					enrichment.VideoSummary = summary
				}
			}
		}
	}

	if enrichment.WebsiteSummary == "" && enrichment.VideoSummary == "" && len(enrichment.ForumPosts) == 0 {
		return nil
	}
	return &enrichment
}

func (p *Pipeline) summarizeWebsite(ctx context.Context, content *WebsiteContent) (string, error) {
	text := strings.Join(content.TextContent, " ")
	if len(text) > videoSummaryLimit {
		text = text[:videoSummaryLimit]
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no website text to summarize")
	}
	prompt := `You are a company analyst. Summarize the following extracted content from a company's website.

Mention:
- What the company does
- Its services or products
- Its values/vision/mission (if available)
- Its market focus or target users

Content:
` + text
	return p.summarizer.Complete(ctx, []completion.Message{
		{Role: completion.RoleUser, Content: prompt},
	})
}

func firstVideoLink(links []string) string {
	for _, link := range links {
		if strings.Contains(link, "youtube.com/watch") || strings.Contains(link, "youtu.be/") {
			return link
		}
	}
	return ""
}

// Run statuses reported by the Runner.
const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusError   = "error"
)

var ErrRunInFlight = errors.New("research run already in flight")

// RunState is a point-in-time snapshot of a conversation's research run.
type RunState struct {
	ConversationID string    `json:"conversation_id"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitzero"`
}

// Runner owns fire-and-forget pipeline executions, at most one in flight
// per conversation.
type Runner struct {
	pipeline *Pipeline
	metrics  *observability.Metrics
	timeout  time.Duration

	mu   sync.Mutex
	runs map[string]RunState
	wg   sync.WaitGroup
}

func NewRunner(pipeline *Pipeline, metrics *observability.Metrics, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Runner{
		pipeline: pipeline,
		metrics:  metrics,
		timeout:  timeout,
		runs:     make(map[string]RunState),
	}
}

// Start launches a background run for the conversation. Returns
// ErrRunInFlight when one is already running.
func (r *Runner) Start(conversationID string, turns []transcript.Turn) error {
	r.mu.Lock()
	if state, ok := r.runs[conversationID]; ok && state.Status == RunStatusRunning {
		r.mu.Unlock()
		return ErrRunInFlight
	}
	r.runs[conversationID] = RunState{
		ConversationID: conversationID,
		Status:         RunStatusRunning,
		StartedAt:      time.Now().UTC(),
	}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		err := r.pipeline.Run(ctx, conversationID, turns)

		r.mu.Lock()
		state := r.runs[conversationID]
		state.FinishedAt = time.Now().UTC()
		if err != nil {
			state.Status = RunStatusError
			state.Error = err.Error()
			r.metrics.CountResearchRun("error")
			log.Printf("research: run for conversation %s failed: %v", conversationID, err)
		} else {
			state.Status = RunStatusDone
			r.metrics.CountResearchRun("ok")
		}
		r.runs[conversationID] = state
		r.mu.Unlock()
	}()
	return nil
}

// Status returns the latest snapshot for the conversation.
func (r *Runner) Status(conversationID string) (RunState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.runs[conversationID]
	return state, ok
}

// Wait blocks until all in-flight runs finish. Used during shutdown.
func (r *Runner) Wait() { r.wg.Wait() }
