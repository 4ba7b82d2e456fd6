package itunes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brookscl/playlist-creator/pkg/catalog"
)

const samplePayload = `{
	"resultCount": 2,
	"results": [
		{
			"trackId": 401135199,
			"trackName": "Bohemian Rhapsody",
			"artistName": "Queen",
			"previewUrl": "https://example.com/preview/401135199"
		},
		{
			"trackId": 123456789,
			"trackName": "Bohemian Rhapsody (Live Aid)",
			"artistName": "Queen",
			"previewUrl": ""
		}
	]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestSearch_ParsesAndRanks(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("term")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	})

	results, err := c.Search(context.Background(), "Bohemian Rhapsody", "Queen")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "Bohemian Rhapsody Queen" {
		t.Errorf("term = %q, want title and artist", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// The exact-title track must outrank the live version.
	if results[0].CatalogID != "401135199" {
		t.Errorf("top result = %q, want exact match first", results[0].CatalogID)
	}
	if results[0].MatchConfidence <= results[1].MatchConfidence {
		t.Errorf("ranking broken: %v <= %v",
			results[0].MatchConfidence, results[1].MatchConfidence)
	}
	if results[0].PreviewURL == "" {
		t.Error("preview URL not carried over")
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCount": 0, "results": []}`))
	})

	results, err := c.Search(context.Background(), "Nothing", "Nobody")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearch_ServerError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	if _, err := c.Search(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestSearch_MalformedResponse(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	if _, err := c.Search(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAuthorize_AlwaysSucceeds(t *testing.T) {
	if err := New().Authorize(context.Background()); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
}

func TestCreatePlaylist_Unsupported(t *testing.T) {
	_, err := New().CreatePlaylist(context.Background(), "Mix", nil)
	if !errors.Is(err, catalog.ErrPlaylistUnsupported) {
		t.Fatalf("err = %v, want ErrPlaylistUnsupported", err)
	}
}

func TestName(t *testing.T) {
	if got := New().Name(); got != "itunes" {
		t.Errorf("Name = %q, want itunes", got)
	}
}
