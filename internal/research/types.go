package research

import "time"

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a business candidate returned by the places search.
type Place struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Address            string   `json:"address,omitempty"`
	Location           *LatLng  `json:"location,omitempty"`
	PrimaryType        string   `json:"primary_type,omitempty"`
	Types              []string `json:"types,omitempty"`
	BusinessStatus     string   `json:"business_status,omitempty"`
	GoogleMapsURL      string   `json:"google_maps_url,omitempty"`
	WebsiteURL         string   `json:"website_url,omitempty"`
	NationalPhone      string   `json:"national_phone,omitempty"`
	InternationalPhone string   `json:"international_phone,omitempty"`
	Rating             float64  `json:"rating,omitempty"`
	UserRatingCount    int      `json:"user_rating_count,omitempty"`
}

// ForumPost is a normalized discussion item about a company.
type ForumPost struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	NumComments int       `json:"num_comments"`
	CreatedAt   time.Time `json:"created_at"`
}

// WebsiteContent is the extracted text and outbound links of one page.
type WebsiteContent struct {
	URL         string   `json:"url"`
	CompanyName string   `json:"company_name"`
	TextContent []string `json:"text_content"`
	Links       []string `json:"links"`
}

// CompanyEnrichment holds optional per-company deep-dive material.
type CompanyEnrichment struct {
	WebsiteSummary string      `json:"website_summary,omitempty"`
	VideoSummary   string      `json:"video_summary,omitempty"`
	ForumPosts     []ForumPost `json:"forum_posts,omitempty"`
}

// Result is the persisted outcome of researching one application area.
type Result struct {
	ConversationID string                       `json:"conversation_id"`
	Application    string                       `json:"application"`
	SearchTerms    []string                     `json:"search_terms"`
	Companies      []Place                      `json:"companies"`
	Enrichments    map[string]CompanyEnrichment `json:"enrichments,omitempty"`
	Status         string                       `json:"status"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

// Search statuses recorded on a Result.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
	StatusError       = "ERROR"
)
