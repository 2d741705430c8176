package research

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/unglihq/ungli/internal/completion"
	"github.com/unglihq/ungli/internal/transcript"
)

// Extractor mines the finished transcript for application areas and search
// phrases using the completion gateway.
type Extractor struct {
	client completion.Client
}

func NewExtractor(client completion.Client) *Extractor {
	return &Extractor{client: client}
}

// ChatML renders turns in ChatML-style markup for prompt embedding.
func ChatML(turns []transcript.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch {
		case t.Speaker == transcript.SpeakerUser:
			b.WriteString("<|user|> ")
		case t.Speaker.IsAssistant():
			b.WriteString("<|assistant|> ")
		default:
			continue
		}
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func applicationExtractionPrompt(chatml string) string {
	return `You are given a ChatML conversation about a product. Your task is to extract ONLY extremely specific, product-level, real-world application areas of the product discussed.

EXTREMELY STRICT GUIDELINES:
- ONLY include granular, concrete use-cases: specific physical products or engineered processes where the product plays a direct, technical role.
- DO NOT mention any industry (e.g., automotive, medical, packaging, etc.).
- DO NOT include any vague functional benefits (e.g., "improves strength", "enhances adhesion", "boosts resistance", "improves performance").
- For each output, specify the exact application, target component or material, and the functional role of the product.

VALID EXAMPLES:
- "adhesion promoter in polypropylene/glass fiber composite bumpers for injection molding"
- "compatibilizer in recycled polyethylene/polypropylene multilayer film extrusion"
- "coupling agent for polypropylene/hemp fiber biocomposites used in outdoor decking tiles"
- "reactive modifier in polypropylene-based filaments for fused deposition modeling (FDM) 3D printing"

INSTRUCTIONS:
- Include applications where the product is used as an intermediary or in combination with other products.
- Include both established and plausible, unexplored applications based on research or product databases.
- Strictly Include at least 20 granular, product-level applications, output as many as possible, but DO NOT fill the list with generic, business, or industry terms.
- Output ONLY a comma-separated list of unique, granular, product-level applications. No explanations, no generic terms, no duplicates, no industry or business phrases.

` + chatml
}

func searchTermsPrompt(application string) string {
	return fmt.Sprintf(`You are a B2B technical sales researcher.

APPLICATION: %s

TASK:
Generate atleast 20 highly effective Google search phrases as possible to find companies, manufacturers, OEMs, or research labs involved in this application. Focus on the material, process, and functional role.

USE THESE GUIDELINES:
- Include modifiers like: "supplier", "manufacturer", "OEM", "compounder"
- Focus only on search terms that would be effective on Google.

FORMAT:
Return ONLY a list like this:
["<search 1>", "<search 2>", "<search 3>", "<search 4>"]`, application)
}

// Applications asks the model for granular application areas of the product.
func (e *Extractor) Applications(ctx context.Context, turns []transcript.Turn) ([]string, error) {
	reply, err := e.client.Complete(ctx, []completion.Message{
		{Role: completion.RoleUser, Content: applicationExtractionPrompt(ChatML(turns))},
	})
	if err != nil {
		return nil, fmt.Errorf("extract applications: %w", err)
	}
	return parseApplications(reply), nil
}

// SearchTerms asks the model for Google search phrases for one application.
func (e *Extractor) SearchTerms(ctx context.Context, application string) ([]string, error) {
	reply, err := e.client.Complete(ctx, []completion.Message{
		{Role: completion.RoleUser, Content: searchTermsPrompt(application)},
	})
	if err != nil {
		return nil, fmt.Errorf("generate search terms for %q: %w", application, err)
	}
	return parseSearchTerms(reply), nil
}

func parseApplications(reply string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(reply, ",") {
		app := strings.TrimSpace(part)
		// Quotes and a trailing period can nest either way round.
		for {
			trimmed := strings.TrimSpace(strings.TrimSuffix(strings.Trim(app, `"'`), "."))
			if trimmed == app {
				break
			}
			app = trimmed
		}
		if app == "" {
			continue
		}
		key := strings.ToLower(app)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, app)
	}
	return out
}

// parseSearchTerms accepts the requested JSON array format, tolerating
// surrounding prose, and falls back to line splitting.
func parseSearchTerms(reply string) []string {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start >= 0 && end > start {
		var terms []string
		if err := json.Unmarshal([]byte(reply[start:end+1]), &terms); err == nil {
			return cleanTerms(terms)
		}
	}
	return cleanTerms(strings.Split(reply, "\n"))
}

func cleanTerms(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range raw {
		t = strings.Trim(strings.TrimSpace(t), `"',-`)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

var locationKeywords = []string{"location", "city", "region", "area", "place", "from", "based in"}

var locationPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(locationKeywords))
	for _, kw := range locationKeywords {
		m[kw] = regexp.MustCompile(kw + `\s+(in\s+)?([A-Z][a-zA-Z\s]+)`)
	}
	return m
}()

// UserLocation scans the transcript, newest first, for a stated location.
// Returns "" when none is found; best-effort by design of the heuristic.
func UserLocation(turns []transcript.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		text := turns[i].Text
		lower := strings.ToLower(text)
		for _, kw := range locationKeywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if m := locationPatterns[kw].FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[2])
			}
		}
	}
	return ""
}
