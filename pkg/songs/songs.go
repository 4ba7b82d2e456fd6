// Package songs defines the core value types shared across the playlist
// creation pipeline: songs extracted from a transcript, catalog candidates,
// and the matched pairs that flow through review.
package songs

import "fmt"

// Song is an immutable song value. It is used both for songs extracted from a
// transcript (CatalogID empty) and for songs returned by a catalog backend
// (CatalogID set). Equality is structural; Song is a comparable value type.
type Song struct {
	// Title is the song title.
	Title string

	// Artist is the performing artist's name.
	Artist string

	// CatalogID is the catalog service's identifier for this song.
	// Empty for songs extracted from a transcript.
	CatalogID string

	// Confidence is the confidence score attached to this song. For extracted
	// songs this is the adjusted extraction confidence; for catalog songs it
	// is the backend's match confidence. No range is enforced here; see
	// normalize.AdjustConfidence for the clamped variant.
	Confidence float64
}

// String returns a human-readable "Title — Artist" representation.
func (s Song) String() string {
	return fmt.Sprintf("%s — %s", s.Title, s.Artist)
}

// ExtractedSong is a Song plus the provenance of its extraction from a
// transcript. Created once per accepted extraction item; immutable thereafter.
type ExtractedSong struct {
	Song

	// Context is the quote from the transcript supporting the extraction,
	// truncated to at most 100 characters.
	Context string

	// Timestamp is the position in the source audio, in seconds.
	// Nil when the transcript carries no timing information.
	Timestamp *float64
}

// MatchStatus describes the review state of a MatchedSong.
type MatchStatus string

const (
	// StatusAuto means the match confidence met the auto-accept threshold.
	// Terminal and machine-assigned: the song is included without user action.
	StatusAuto MatchStatus = "auto"

	// StatusPending means the match awaits a user accept/reject decision.
	StatusPending MatchStatus = "pending"

	// StatusSelected means the user accepted the match.
	StatusSelected MatchStatus = "selected"

	// StatusSkipped means the user rejected the match, or no catalog
	// candidate was found for the original song.
	StatusSkipped MatchStatus = "skipped"
)

// IsValid reports whether m is a recognised match status.
func (m MatchStatus) IsValid() bool {
	switch m {
	case StatusAuto, StatusPending, StatusSelected, StatusSkipped:
		return true
	}
	return false
}

// Eligible reports whether a song with this status is included in the final
// playlist.
func (m MatchStatus) Eligible() bool {
	return m == StatusAuto || m == StatusSelected
}

// MatchedSong pairs an extracted song with its best catalog candidate.
//
// Status is the only mutable field and must be changed exclusively through
// the review session's accept/reject/reset operations so that every mutation
// is paired with a recorded prior state for undo.
type MatchedSong struct {
	// Original is the song as extracted from the transcript.
	Original ExtractedSong

	// Catalog is the best catalog candidate, or the sentinel "No match found"
	// song when the search returned nothing or failed.
	Catalog Song

	// Status is the review state. See the MatchStatus constants.
	Status MatchStatus

	// PreviewURL is an optional audio preview link provided by the catalog.
	PreviewURL string
}
