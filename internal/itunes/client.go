// file: internal/itunes/client.go
// version: 1.2.0
// guid: 5b8c2d1e-4f6a-4097-8e3d-1c9a7b5f2e04

package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mrodavis/sound-circle-be/internal/catalog"
)

const defaultBaseURL = "https://itunes.apple.com"

// Client resolves track metadata from the iTunes Search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an iTunes Search API client. An empty baseURL falls
// back to the ITUNES_BASE_URL env var, then the public endpoint; a
// non-positive timeout falls back to 3500ms.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("ITUNES_BASE_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 3500 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the display name for this metadata source.
func (c *Client) Name() string {
	return "iTunes"
}

// searchResult represents a single song result from the iTunes Search API.
type searchResult struct {
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	PreviewURL       string `json:"previewUrl"`
	ArtworkURL100    string `json:"artworkUrl100"`
	PrimaryGenreName string `json:"primaryGenreName"`
	TrackViewURL     string `json:"trackViewUrl"`
}

// searchResponse represents the API response from an iTunes search.
type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

// Lookup queries the iTunes Search API for the best match of a song.
// Any failure collapses to LookupFailed; an empty result set is
// LookupNoMatch. Lookup never blocks longer than the client timeout.
func (c *Client) Lookup(ctx context.Context, title, artist string) (catalog.Enrichment, catalog.LookupStatus) {
	term := url.QueryEscape(strings.TrimSpace(artist + " " + title))
	searchURL := fmt.Sprintf("%s/search?media=music&limit=1&term=%s", c.baseURL, term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		log.Printf("[WARN] iTunes lookup: building request failed: %v", err)
		return catalog.Enrichment{}, catalog.LookupFailed
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[WARN] iTunes lookup for %q / %q failed: %v", artist, title, err)
		return catalog.Enrichment{}, catalog.LookupFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WARN] iTunes lookup for %q / %q returned status %d", artist, title, resp.StatusCode)
		return catalog.Enrichment{}, catalog.LookupFailed
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Printf("[WARN] iTunes lookup: decoding response failed: %v", err)
		return catalog.Enrichment{}, catalog.LookupFailed
	}

	if searchResp.ResultCount == 0 || len(searchResp.Results) == 0 {
		log.Printf("[DEBUG] iTunes lookup: no match for %q / %q", artist, title)
		return catalog.Enrichment{}, catalog.LookupNoMatch
	}

	best := searchResp.Results[0]
	meta := catalog.Enrichment{
		CoverArtURL:  upsizeArtwork(best.ArtworkURL100),
		SoundClipURL: best.PreviewURL,
		Genre:        best.PrimaryGenreName,
		SourceURL:    best.TrackViewURL,
	}
	if best.TrackID != 0 {
		meta.ProviderID = fmt.Sprintf("%d", best.TrackID)
	}
	log.Printf("[DEBUG] iTunes lookup: matched %q / %q (trackId=%d)", best.ArtistName, best.TrackName, best.TrackID)
	return meta, catalog.LookupFound
}

var artworkSizeRe = regexp.MustCompile(`/(\d+)x(\d+)bb\.`)

// upsizeArtwork rewrites an iTunes thumbnail URL to the 600x600 variant.
// Only square NxNbb segments are rewritten; anything else is returned as-is.
func upsizeArtwork(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	m := artworkSizeRe.FindStringSubmatch(artworkURL)
	if m == nil || m[1] != m[2] {
		return artworkURL
	}
	return strings.Replace(artworkURL, m[0], "/600x600bb.", 1)
}
