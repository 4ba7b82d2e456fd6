// Package spotify implements catalog.Client against the Spotify Web API.
//
// Two token flows are supported. The default client-credentials flow needs
// only an app ID and secret and covers search; playlist creation requires a
// user-scoped token obtained through the authorization-code flow and passed
// in via [WithUserToken].
package spotify

import (
	"context"
	"fmt"
	"sort"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/brookscl/playlist-creator/pkg/catalog"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

// defaultSearchLimit caps the candidates requested per search.
const defaultSearchLimit = 10

// Option configures a Client.
type Option func(*Client)

// WithSearchLimit sets the maximum number of candidates per search.
// Values below 1 keep the default.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n >= 1 {
			c.limit = n
		}
	}
}

// WithUserToken supplies a user-scoped OAuth token from the
// authorization-code flow. Required for playlist creation; the
// client-credentials flow cannot write to a user's library.
func WithUserToken(token *oauth2.Token) Option {
	return func(c *Client) { c.userToken = token }
}

// Client is an authorized Spotify catalog backend.
type Client struct {
	clientID     string
	clientSecret string
	limit        int
	userToken    *oauth2.Token

	api *spotify.Client // nil until Authorize succeeds
}

var _ catalog.Client = (*Client)(nil)

// New creates an unauthorized Client. Call [Client.Authorize] before
// searching.
func New(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		limit:        defaultSearchLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements catalog.Client.
func (c *Client) Name() string { return string(catalog.BackendSpotify) }

// Authorize obtains an API token. With a user token configured it is used
// directly; otherwise the client-credentials flow is performed, which is
// enough for search but not for playlist write-back.
func (c *Client) Authorize(ctx context.Context) error {
	token := c.userToken
	if token == nil {
		auth := spotifyauth.New(
			spotifyauth.WithClientID(c.clientID),
			spotifyauth.WithClientSecret(c.clientSecret),
		)
		exchanged, err := auth.Exchange(ctx, "",
			oauth2.SetAuthURLParam("grant_type", "client_credentials"))
		if err != nil {
			return fmt.Errorf("%w: spotify token exchange: %v", catalog.ErrNotAuthorized, err)
		}
		token = exchanged
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	c.api = spotify.New(httpClient)
	return nil
}

// Search implements catalog.Client. Candidates are scored against the query
// and returned best-first.
func (c *Client) Search(ctx context.Context, title, artist string) ([]catalog.SearchResult, error) {
	if c.api == nil {
		return nil, catalog.ErrNotAuthorized
	}

	query := fmt.Sprintf("track:%s artist:%s", title, artist)
	page, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(c.limit))
	if err != nil {
		return nil, fmt.Errorf("spotify search %q: %w", query, err)
	}
	if page.Tracks == nil {
		return nil, nil
	}

	results := make([]catalog.SearchResult, 0, len(page.Tracks.Tracks))
	for _, track := range page.Tracks.Tracks {
		trackArtist := ""
		if len(track.Artists) > 0 {
			trackArtist = track.Artists[0].Name
		}
		results = append(results, catalog.SearchResult{
			Song: songs.Song{
				Title:  track.Name,
				Artist: trackArtist,
			},
			MatchConfidence: catalog.Score(title, artist, track.Name, trackArtist),
			CatalogID:       string(track.ID),
			PreviewURL:      track.PreviewURL,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchConfidence > results[j].MatchConfidence
	})
	return results, nil
}

// CreatePlaylist implements catalog.Client. It creates a private playlist on
// the authorized user's account and adds the given songs by catalog ID.
func (c *Client) CreatePlaylist(ctx context.Context, name string, list []songs.Song) (*catalog.Playlist, error) {
	if c.api == nil {
		return nil, catalog.ErrNotAuthorized
	}

	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify current user: %w", err)
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, user.ID, name,
		"Created from a transcript", false, false)
	if err != nil {
		return nil, fmt.Errorf("spotify create playlist: %w", err)
	}

	ids := make([]spotify.ID, 0, len(list))
	for _, song := range list {
		if song.CatalogID == "" {
			continue
		}
		ids = append(ids, spotify.ID(song.CatalogID))
	}

	// The add endpoint takes at most 100 tracks per call.
	for len(ids) > 0 {
		chunk := ids
		if len(chunk) > 100 {
			chunk = chunk[:100]
		}
		if _, err := c.api.AddTracksToPlaylist(ctx, playlist.ID, chunk...); err != nil {
			return nil, fmt.Errorf("spotify add tracks: %w", err)
		}
		ids = ids[len(chunk):]
	}

	return &catalog.Playlist{
		ID:        string(playlist.ID),
		Name:      playlist.Name,
		SongCount: len(list),
		URL:       playlist.ExternalURLs["spotify"],
	}, nil
}
