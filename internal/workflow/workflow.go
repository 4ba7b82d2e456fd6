// Package workflow implements the phase state machine that drives a playlist
// creation run from transcript to created playlist.
//
// The workflow is strictly linear: fileInput → transcription →
// musicExtraction → musicSearch → matchSelection → playlistCreation →
// complete. Any phase may fail into the error phase, and only error and
// complete accept Reset back to fileInput. The workflow is the single point
// where component failures become a phase transition; it never retries at its
// own level. Retry is the extraction client's job for transport failures.
//
// A Workflow instance drives one playlist request and is not safe for
// concurrent use.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brookscl/playlist-creator/internal/match"
	"github.com/brookscl/playlist-creator/internal/observe"
	"github.com/brookscl/playlist-creator/internal/transcript"
	"github.com/brookscl/playlist-creator/pkg/catalog"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

// Phase identifies the active stage of a playlist creation run.
type Phase string

const (
	PhaseFileInput        Phase = "fileInput"
	PhaseTranscription    Phase = "transcription"
	PhaseMusicExtraction  Phase = "musicExtraction"
	PhaseMusicSearch      Phase = "musicSearch"
	PhaseMatchSelection   Phase = "matchSelection"
	PhasePlaylistCreation Phase = "playlistCreation"
	PhaseComplete         Phase = "complete"
	PhaseError            Phase = "error"
)

// IsValid reports whether p is a known phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseFileInput, PhaseTranscription, PhaseMusicExtraction,
		PhaseMusicSearch, PhaseMatchSelection, PhasePlaylistCreation,
		PhaseComplete, PhaseError:
		return true
	}
	return false
}

// defaultSearchConcurrency bounds the parallel per-song catalog searches in
// the musicSearch phase.
const defaultSearchConcurrency = 4

// Extractor turns a transcript into extracted song mentions. Implemented by
// extract.Client.
type Extractor interface {
	Extract(ctx context.Context, t *transcript.Transcript) ([]songs.ExtractedSong, error)
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithSelector replaces the default match selector.
func WithSelector(s *match.Selector) Option {
	return func(w *Workflow) { w.selector = s }
}

// WithSearchConcurrency bounds the number of parallel catalog searches.
// Values below 1 are treated as 1.
func WithSearchConcurrency(n int) Option {
	return func(w *Workflow) {
		if n < 1 {
			n = 1
		}
		w.concurrency = n
	}
}

// WithMetrics attaches pipeline metrics. A nil *Metrics is allowed and
// records nothing.
func WithMetrics(m *observe.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

// Workflow owns the phase state and the data accumulated by each stage of a
// single playlist creation run.
type Workflow struct {
	extractor   Extractor
	catalog     catalog.Client
	selector    *match.Selector
	metrics     *observe.Metrics
	concurrency int

	phase      Phase
	errMessage string

	transcript *transcript.Transcript
	extracted  []songs.ExtractedSong
	matches    []songs.MatchedSong
	playlist   *catalog.Playlist
}

// New creates a Workflow in the fileInput phase.
func New(extractor Extractor, cat catalog.Client, opts ...Option) *Workflow {
	w := &Workflow{
		extractor:   extractor,
		catalog:     cat,
		selector:    match.NewSelector(match.DefaultAutoAcceptThreshold),
		concurrency: defaultSearchConcurrency,
		phase:       PhaseFileInput,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Phase returns the active phase.
func (w *Workflow) Phase() Phase { return w.phase }

// ErrorMessage returns the human-readable message recorded when the workflow
// entered the error phase, or "" otherwise.
func (w *Workflow) ErrorMessage() string { return w.errMessage }

// Extracted returns the songs produced by the extraction phase.
func (w *Workflow) Extracted() []songs.ExtractedSong { return w.extracted }

// Matches returns the matched songs produced by the search phase. The slice
// is shared with the review session; statuses mutate as the user reviews.
func (w *Workflow) Matches() []songs.MatchedSong { return w.matches }

// Playlist returns the created playlist, or nil before completion.
func (w *Workflow) Playlist() *catalog.Playlist { return w.playlist }

// Begin accepts the transcript produced by the external transcription
// collaborator and advances from fileInput through transcription to
// musicExtraction.
func (w *Workflow) Begin(t *transcript.Transcript) error {
	if w.phase != PhaseFileInput {
		return w.invalidPhase("begin")
	}
	if t == nil || t.Text == "" {
		return w.fail("transcript is empty")
	}
	w.transcript = t
	w.phase = PhaseTranscription

	slog.Info("transcript loaded",
		"segments", len(t.Segments),
		"language", t.Language)

	w.phase = PhaseMusicExtraction
	return nil
}

// RunExtraction runs the LLM extraction over the transcript and advances to
// musicSearch. Extraction failure moves the workflow to the error phase.
func (w *Workflow) RunExtraction(ctx context.Context) error {
	if w.phase != PhaseMusicExtraction {
		return w.invalidPhase("extraction")
	}

	extracted, err := w.extractor.Extract(ctx, w.transcript)
	if err != nil {
		return w.fail(fmt.Sprintf("song extraction failed: %v", err))
	}
	w.extracted = extracted
	w.phase = PhaseMusicSearch
	return nil
}

// RunSearch authorizes the catalog backend once, searches the catalog for
// every extracted song, and advances to matchSelection.
//
// Authorization denial moves the workflow to the error phase without issuing
// any search. Per-song search failure is isolated: the failing song gets a
// skipped sentinel match and the batch continues, so the match list is always
// exactly as long as the extracted list.
func (w *Workflow) RunSearch(ctx context.Context) error {
	if w.phase != PhaseMusicSearch {
		return w.invalidPhase("search")
	}

	if err := w.catalog.Authorize(ctx); err != nil {
		return w.fail(fmt.Sprintf("catalog authorization denied: %v", err))
	}

	results := make([]songs.MatchedSong, len(w.extracted))

	// Searches run in parallel but results are written back by index, so
	// each match stays associated with its original song regardless of
	// completion order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, song := range w.extracted {
		g.Go(func() error {
			start := time.Now()
			candidates, err := w.catalog.Search(gctx, song.Title, song.Artist)
			w.metrics.RecordSearch(gctx, w.catalog.Name(), time.Since(start).Seconds(), err == nil)
			if err != nil {
				slog.Warn("catalog search failed, skipping song",
					"title", song.Title,
					"artist", song.Artist,
					"error", err)
				results[i] = w.selector.Sentinel(song)
				return nil
			}
			results[i] = w.selector.Select(song, candidates)
			return nil
		})
	}
	// Workers never return errors; per-song failures become sentinels.
	_ = g.Wait()

	for _, m := range results {
		w.metrics.RecordMatch(ctx, string(m.Status))
	}

	w.matches = results
	w.phase = PhaseMatchSelection

	sum := match.Summarize(results)
	if sum.Total == 0 {
		slog.Warn("no songs extracted, nothing to review")
	}
	slog.Info("catalog search complete",
		"total", sum.Total,
		"auto_selected", sum.AutoSelected,
		"requires_review", sum.RequiresReview)
	return nil
}

// Summary aggregates the current match statuses.
func (w *Workflow) Summary() match.Summary {
	return match.Summarize(w.matches)
}

// CreatePlaylist creates the playlist from the matches the review left
// eligible (auto or selected) and advances to complete.
//
// With zero eligible songs the workflow moves to the error phase without
// calling the playlist collaborator.
func (w *Workflow) CreatePlaylist(ctx context.Context, name string) error {
	if w.phase != PhaseMatchSelection {
		return w.invalidPhase("playlist creation")
	}

	var list []songs.Song
	for _, m := range w.matches {
		if m.Status.Eligible() {
			list = append(list, m.Catalog)
		}
	}
	if len(list) == 0 {
		return w.fail("No songs selected for playlist")
	}

	w.phase = PhasePlaylistCreation
	playlist, err := w.catalog.CreatePlaylist(ctx, name, list)
	if err != nil {
		return w.fail(fmt.Sprintf("playlist creation failed: %v", err))
	}

	w.playlist = playlist
	w.phase = PhaseComplete
	slog.Info("playlist created",
		"id", playlist.ID,
		"name", playlist.Name,
		"songs", playlist.SongCount)
	return nil
}

// Reset returns the workflow to fileInput, discarding the transcript,
// extracted songs, matches, and playlist. Valid only from the error and
// complete phases.
func (w *Workflow) Reset() error {
	if w.phase != PhaseError && w.phase != PhaseComplete {
		return fmt.Errorf("workflow: reset is only valid from error or complete, not %s", w.phase)
	}
	w.phase = PhaseFileInput
	w.errMessage = ""
	w.transcript = nil
	w.extracted = nil
	w.matches = nil
	w.playlist = nil
	return nil
}

// fail moves the workflow to the error phase with a human-readable message
// and returns the same message as an error.
func (w *Workflow) fail(message string) error {
	w.phase = PhaseError
	w.errMessage = message
	slog.Error("workflow failed", "message", message)
	return fmt.Errorf("workflow: %s", message)
}

func (w *Workflow) invalidPhase(op string) error {
	return fmt.Errorf("workflow: cannot run %s in phase %s", op, w.phase)
}
