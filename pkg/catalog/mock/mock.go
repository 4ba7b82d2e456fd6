// Package mock provides a configurable in-memory catalog.Client for tests.
package mock

import (
	"context"
	"sync"

	"github.com/brookscl/playlist-creator/pkg/catalog"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

// Client is a test double for catalog.Client. Configure behaviour by setting
// the exported function fields; unset fields fall back to benign defaults.
// Call counters are safe for concurrent use.
type Client struct {
	// NameValue is returned by Name. Default: "mock".
	NameValue string

	// AuthorizeFunc overrides Authorize. Default: success.
	AuthorizeFunc func(ctx context.Context) error

	// SearchFunc overrides Search. Default: no results.
	SearchFunc func(ctx context.Context, title, artist string) ([]catalog.SearchResult, error)

	// CreatePlaylistFunc overrides CreatePlaylist. Default: a playlist echoing
	// the request.
	CreatePlaylistFunc func(ctx context.Context, name string, list []songs.Song) (*catalog.Playlist, error)

	mu              sync.Mutex
	authorizeCalls  int
	searchCalls     int
	playlistCalls   int
	searchedQueries []string
}

var _ catalog.Client = (*Client)(nil)

// New creates a Client reporting the given backend name.
func New(name string) *Client {
	return &Client{NameValue: name}
}

// Name implements catalog.Client.
func (c *Client) Name() string {
	if c.NameValue == "" {
		return "mock"
	}
	return c.NameValue
}

// Authorize implements catalog.Client.
func (c *Client) Authorize(ctx context.Context) error {
	c.mu.Lock()
	c.authorizeCalls++
	c.mu.Unlock()
	if c.AuthorizeFunc != nil {
		return c.AuthorizeFunc(ctx)
	}
	return nil
}

// Search implements catalog.Client.
func (c *Client) Search(ctx context.Context, title, artist string) ([]catalog.SearchResult, error) {
	c.mu.Lock()
	c.searchCalls++
	c.searchedQueries = append(c.searchedQueries, title+" / "+artist)
	c.mu.Unlock()
	if c.SearchFunc != nil {
		return c.SearchFunc(ctx, title, artist)
	}
	return nil, nil
}

// CreatePlaylist implements catalog.Client.
func (c *Client) CreatePlaylist(ctx context.Context, name string, list []songs.Song) (*catalog.Playlist, error) {
	c.mu.Lock()
	c.playlistCalls++
	c.mu.Unlock()
	if c.CreatePlaylistFunc != nil {
		return c.CreatePlaylistFunc(ctx, name, list)
	}
	return &catalog.Playlist{ID: "mock-playlist", Name: name, SongCount: len(list)}, nil
}

// AuthorizeCalls returns how many times Authorize was invoked.
func (c *Client) AuthorizeCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorizeCalls
}

// SearchCalls returns how many times Search was invoked.
func (c *Client) SearchCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchCalls
}

// PlaylistCalls returns how many times CreatePlaylist was invoked.
func (c *Client) PlaylistCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlistCalls
}

// SearchedQueries returns the "title / artist" pairs Search received, in
// call order.
func (c *Client) SearchedQueries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.searchedQueries...)
}
