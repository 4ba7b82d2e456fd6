// Package itunes implements catalog.Client against the public iTunes Search
// API. No credentials are required, which makes it the natural fallback
// behind an authorized store. The API is read-only; playlist creation is not
// supported.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/brookscl/playlist-creator/pkg/catalog"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

const (
	defaultBaseURL     = "https://itunes.apple.com/search"
	defaultSearchLimit = 10
	defaultTimeout     = 10 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the search endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSearchLimit sets the maximum number of candidates per search.
// Values below 1 keep the default.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n >= 1 {
			c.limit = n
		}
	}
}

// Client is a no-auth iTunes catalog backend.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
}

var _ catalog.Client = (*Client)(nil)

// New creates a ready-to-use Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		limit:   defaultSearchLimit,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements catalog.Client.
func (c *Client) Name() string { return string(catalog.BackendITunes) }

// Authorize implements catalog.Client. The iTunes Search API is public, so
// this always succeeds.
func (c *Client) Authorize(ctx context.Context) error { return nil }

// searchResponse mirrors the iTunes Search API payload.
type searchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		TrackID    int64  `json:"trackId"`
		TrackName  string `json:"trackName"`
		ArtistName string `json:"artistName"`
		PreviewURL string `json:"previewUrl"`
	} `json:"results"`
}

// Search implements catalog.Client. Candidates are scored against the query
// and returned best-first.
func (c *Client) Search(ctx context.Context, title, artist string) ([]catalog.SearchResult, error) {
	params := url.Values{}
	params.Set("term", title+" "+artist)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("itunes search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itunes search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes search: unexpected status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("itunes search: decode response: %w", err)
	}

	results := make([]catalog.SearchResult, 0, len(payload.Results))
	for _, item := range payload.Results {
		results = append(results, catalog.SearchResult{
			Song: songs.Song{
				Title:  item.TrackName,
				Artist: item.ArtistName,
			},
			MatchConfidence: catalog.Score(title, artist, item.TrackName, item.ArtistName),
			CatalogID:       strconv.FormatInt(item.TrackID, 10),
			PreviewURL:      item.PreviewURL,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchConfidence > results[j].MatchConfidence
	})
	return results, nil
}

// CreatePlaylist implements catalog.Client. The public search API has no
// playlist endpoint.
func (c *Client) CreatePlaylist(ctx context.Context, name string, list []songs.Song) (*catalog.Playlist, error) {
	return nil, catalog.ErrPlaylistUnsupported
}
