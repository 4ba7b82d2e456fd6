package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brookscl/playlist-creator/pkg/catalog"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

// CatalogFallback implements [catalog.Client] with automatic failover across
// multiple catalog backends. Each backend has its own circuit breaker; when
// the primary fails or its breaker is open, the next healthy fallback is
// tried. The usual arrangement is an authorized store (Spotify) backed by a
// public search API (iTunes) that needs no credentials.
type CatalogFallback struct {
	group *FallbackGroup[catalog.Client]
}

// Compile-time interface assertion.
var _ catalog.Client = (*CatalogFallback)(nil)

// NewCatalogFallback creates a [CatalogFallback] with primary as the
// preferred backend.
func NewCatalogFallback(primary catalog.Client, cfg FallbackConfig) *CatalogFallback {
	return &CatalogFallback{
		group: NewFallbackGroup(primary, primary.Name(), cfg),
	}
}

// AddFallback registers an additional catalog backend as a fallback.
func (f *CatalogFallback) AddFallback(fallback catalog.Client) {
	f.group.AddFallback(fallback.Name(), fallback)
}

// Name returns the backend names joined in try order.
func (f *CatalogFallback) Name() string {
	return strings.Join(f.group.Names(), "+")
}

// Authorize authorizes every backend in the group. Backends that fail to
// authorize are logged and left in place; their searches will fail and trip
// their breakers, routing traffic to the healthy entries. An error is
// returned only when no backend could be authorized.
func (f *CatalogFallback) Authorize(ctx context.Context) error {
	var errs []error
	authorized := 0
	for i := range f.group.entries {
		entry := &f.group.entries[i]
		if err := entry.value.Authorize(ctx); err != nil {
			slog.Warn("catalog backend authorization failed",
				"backend", entry.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", entry.name, err))
			continue
		}
		authorized++
	}
	if authorized == 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Search queries the first healthy backend and returns its results. If the
// primary fails, subsequent fallbacks are tried.
func (f *CatalogFallback) Search(ctx context.Context, title, artist string) ([]catalog.SearchResult, error) {
	return ExecuteWithResult(f.group, func(c catalog.Client) ([]catalog.SearchResult, error) {
		return c.Search(ctx, title, artist)
	})
}

// CreatePlaylist creates the playlist on the first backend that supports
// playlists. Backends returning [catalog.ErrPlaylistUnsupported] are passed
// over without circuit breaker accounting: lack of a playlist API is a static
// property, not a transient fault, and must not poison the search path.
func (f *CatalogFallback) CreatePlaylist(ctx context.Context, name string, list []songs.Song) (*catalog.Playlist, error) {
	var lastErr error
	for i := range f.group.entries {
		entry := &f.group.entries[i]
		playlist, err := entry.value.CreatePlaylist(ctx, name, list)
		if err == nil {
			return playlist, nil
		}
		if errors.Is(err, catalog.ErrPlaylistUnsupported) {
			slog.Debug("catalog backend has no playlist support",
				"backend", entry.name)
			if lastErr == nil {
				lastErr = err
			}
			continue
		}
		lastErr = err
		slog.Warn("playlist creation failed, trying next backend",
			"backend", entry.name, "error", err)
	}
	return nil, fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
}
