package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unglihq/ungli/internal/reliability"
)

const (
	placesSearchURL      = "https://places.googleapis.com/v1/places:searchText"
	placeDetailsURL      = "https://maps.googleapis.com/maps/api/place/details/json"
	geocodeURL           = "https://maps.googleapis.com/maps/api/geocode/json"
	placesMaxPages       = 3
	placesRectDelta      = 0.5
	businessStatusClosed = "CLOSED_PERMANENTLY"
)

var placesFieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.location",
	"places.primaryType",
	"places.types",
	"places.businessStatus",
	"places.googleMapsUri",
	"places.websiteUri",
	"places.nationalPhoneNumber",
	"places.internationalPhoneNumber",
	"places.rating",
	"places.userRatingCount",
	"nextPageToken",
}, ",")

// PlacesClient wraps the Google Places v1 text search plus the legacy
// details and geocoding endpoints.
type PlacesClient struct {
	apiKey     string
	searchURL  string
	detailsURL string
	geocodeURL string
	maxPages   int
	client     *http.Client
}

type PlacesOption func(*PlacesClient)

// WithPlacesBaseURLs overrides endpoints, for tests. Empty values keep the
// defaults.
func WithPlacesBaseURLs(search, details, geocode string) PlacesOption {
	return func(c *PlacesClient) {
		if search != "" {
			c.searchURL = search
		}
		if details != "" {
			c.detailsURL = details
		}
		if geocode != "" {
			c.geocodeURL = geocode
		}
	}
}

func WithPlacesMaxPages(n int) PlacesOption {
	return func(c *PlacesClient) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

func NewPlacesClient(apiKey string, timeout time.Duration, opts ...PlacesOption) *PlacesClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &PlacesClient{
		apiKey:     strings.TrimSpace(apiKey),
		searchURL:  placesSearchURL,
		detailsURL: placeDetailsURL,
		geocodeURL: geocodeURL,
		maxPages:   placesMaxPages,
		client:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchTextRequest struct {
	TextQuery           string               `json:"textQuery"`
	MaxResultCount      int                  `json:"maxResultCount"`
	PageToken           string               `json:"pageToken,omitempty"`
	LocationRestriction *locationRestriction `json:"locationRestriction,omitempty"`
}

type locationRestriction struct {
	Rectangle rectangle `json:"rectangle"`
}

type rectangle struct {
	MinLatitude  float64 `json:"minLatitude"`
	MaxLatitude  float64 `json:"maxLatitude"`
	MinLongitude float64 `json:"minLongitude"`
	MaxLongitude float64 `json:"maxLongitude"`
}

type searchTextResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
		Location         *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		PrimaryType              string   `json:"primaryType"`
		Types                    []string `json:"types"`
		BusinessStatus           string   `json:"businessStatus"`
		GoogleMapsURI            string   `json:"googleMapsUri"`
		WebsiteURI               string   `json:"websiteUri"`
		NationalPhoneNumber      string   `json:"nationalPhoneNumber"`
		InternationalPhoneNumber string   `json:"internationalPhoneNumber"`
		Rating                   float64  `json:"rating"`
		UserRatingCount          int      `json:"userRatingCount"`
	} `json:"places"`
	NextPageToken string `json:"nextPageToken"`
}

// SearchText runs a text search, following up to three result pages. When
// near is set, results are restricted to a one degree square centered on it.
// Results are enriched with details (website, phone, maps URL) per place.
func (c *PlacesClient) SearchText(ctx context.Context, query string, near *LatLng) ([]Place, error) {
	reqBody := searchTextRequest{TextQuery: query, MaxResultCount: 20}
	if near != nil {
		reqBody.LocationRestriction = &locationRestriction{Rectangle: rectangle{
			MinLatitude:  near.Latitude - placesRectDelta,
			MaxLatitude:  near.Latitude + placesRectDelta,
			MinLongitude: near.Longitude - placesRectDelta,
			MaxLongitude: near.Longitude + placesRectDelta,
		}}
	}

	var out []Place
	for page := 0; page < c.maxPages; page++ {
		var resp searchTextResponse
		if err := c.postSearch(ctx, reqBody, &resp); err != nil {
			return out, err
		}
		for _, p := range resp.Places {
			place := Place{
				ID:                 p.ID,
				Name:               p.DisplayName.Text,
				Address:            p.FormattedAddress,
				PrimaryType:        p.PrimaryType,
				Types:              p.Types,
				BusinessStatus:     p.BusinessStatus,
				GoogleMapsURL:      p.GoogleMapsURI,
				WebsiteURL:         p.WebsiteURI,
				NationalPhone:      p.NationalPhoneNumber,
				InternationalPhone: p.InternationalPhoneNumber,
				Rating:             p.Rating,
				UserRatingCount:    p.UserRatingCount,
			}
			if p.Location != nil {
				place.Location = &LatLng{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
			}
			c.fillDetails(ctx, &place)
			out = append(out, place)
		}
		if resp.NextPageToken == "" {
			break
		}
		reqBody.PageToken = resp.NextPageToken
	}
	return out, nil
}

func (c *PlacesClient) postSearch(ctx context.Context, reqBody searchTextRequest, resp *searchTextResponse) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal search request: %w", err)
	}
	return reliability.Retry(ctx, 3, 500*time.Millisecond, 4*time.Second, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(payload))
		if err != nil {
			return false, fmt.Errorf("create search request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
		req.Header.Set("X-Goog-FieldMask", placesFieldMask)

		res, err := c.client.Do(req)
		if err != nil {
			return true, fmt.Errorf("places search: %w", err)
		}
		defer res.Body.Close()
		body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
		if err != nil {
			return true, fmt.Errorf("read places response: %w", err)
		}
		if res.StatusCode != http.StatusOK {
			return reliability.IsRetryableHTTPStatus(res.StatusCode),
				fmt.Errorf("places search status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		}
		*resp = searchTextResponse{}
		if err := json.Unmarshal(body, resp); err != nil {
			return false, fmt.Errorf("parse places response: %w", err)
		}
		return false, nil
	})
}

type placeDetailsResponse struct {
	Result struct {
		Website                  string `json:"website"`
		URL                      string `json:"url"`
		FormattedPhoneNumber     string `json:"formatted_phone_number"`
		InternationalPhoneNumber string `json:"international_phone_number"`
	} `json:"result"`
}

// fillDetails backfills contact fields from the details endpoint. Failures
// leave the search result as-is.
func (c *PlacesClient) fillDetails(ctx context.Context, place *Place) {
	if place.ID == "" {
		return
	}
	q := url.Values{
		"place_id": {place.ID},
		"fields":   {"website,url,formatted_phone_number,international_phone_number"},
		"key":      {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.detailsURL+"?"+q.Encode(), nil)
	if err != nil {
		return
	}
	res, err := c.client.Do(req)
	if err != nil {
		return
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return
	}
	var parsed placeDetailsResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&parsed); err != nil {
		return
	}
	if parsed.Result.Website != "" {
		place.WebsiteURL = parsed.Result.Website
	}
	if parsed.Result.URL != "" {
		place.GoogleMapsURL = parsed.Result.URL
	}
	if parsed.Result.FormattedPhoneNumber != "" {
		place.NationalPhone = parsed.Result.FormattedPhoneNumber
	}
	if parsed.Result.InternationalPhoneNumber != "" {
		place.InternationalPhone = parsed.Result.InternationalPhoneNumber
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-form location name to coordinates. Returns nil
// without error when the location cannot be resolved.
func (c *PlacesClient) Geocode(ctx context.Context, location string) (*LatLng, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, nil
	}
	q := url.Values{"address": {location}, "key": {c.apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create geocode request: %w", err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, err)
	}
	defer res.Body.Close()
	var parsed geocodeResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse geocode response: %w", err)
	}
	if parsed.Status != "OK" || len(parsed.Results) == 0 {
		return nil, nil
	}
	loc := parsed.Results[0].Geometry.Location
	return &LatLng{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
