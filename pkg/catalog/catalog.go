// Package catalog defines the abstraction over music catalog search backends.
//
// A backend is anything that can rank candidate songs for a title/artist
// query: the authorized native API of a streaming service, or a public
// no-authentication search endpoint. Backends are selected by configuration
// at construction time; callers only ever see the [Client] interface.
//
// Implementations must be safe for concurrent use; the search phase of the
// workflow fans out one Search call per extracted song.
package catalog

import (
	"context"
	"errors"

	"github.com/brookscl/playlist-creator/pkg/songs"
)

// ErrPlaylistUnsupported is returned by CreatePlaylist on backends that can
// search but cannot write playlists (e.g. the public iTunes Search API).
var ErrPlaylistUnsupported = errors.New("catalog: backend does not support playlist creation")

// ErrNotAuthorized is returned by Search or CreatePlaylist when Authorize has
// not been called, or the authorization it obtained has been rejected.
var ErrNotAuthorized = errors.New("catalog: backend is not authorized")

// Backend names a catalog implementation. Used for config-driven selection.
type Backend string

const (
	// BackendSpotify is the authorized Spotify Web API backend.
	BackendSpotify Backend = "spotify"

	// BackendITunes is the public, no-auth iTunes Search API backend.
	BackendITunes Backend = "itunes"
)

// IsValid reports whether b is a recognised backend name.
func (b Backend) IsValid() bool {
	return b == BackendSpotify || b == BackendITunes
}

// SearchResult is a single ranked candidate for a query song.
type SearchResult struct {
	// Song is the catalog's song, with CatalogID set.
	Song songs.Song

	// MatchConfidence scores how well this candidate matches the query,
	// in [0, 1]. Results are returned in descending MatchConfidence order.
	MatchConfidence float64

	// CatalogID is the backend's identifier for the song. Duplicates
	// Song.CatalogID for convenience.
	CatalogID string

	// PreviewURL is an optional audio preview link. Empty when the backend
	// provides none.
	PreviewURL string
}

// Playlist describes a playlist created on the catalog service.
type Playlist struct {
	ID        string
	Name      string
	SongCount int
	URL       string
}

// Client is the capability interface every catalog backend implements.
type Client interface {
	// Name returns a short backend identifier for logs and metrics.
	Name() string

	// Authorize performs the backend's one-time authorization step. Backends
	// without authentication return nil immediately. An error here means the
	// backend must not be searched.
	Authorize(ctx context.Context) error

	// Search returns ranked candidates for the given title and artist, best
	// first. An empty slice with a nil error means "no match found".
	Search(ctx context.Context, title, artist string) ([]SearchResult, error)

	// CreatePlaylist creates a playlist containing the given songs and
	// returns its metadata. Backends without write access return
	// [ErrPlaylistUnsupported].
	CreatePlaylist(ctx context.Context, name string, list []songs.Song) (*Playlist, error)
}
