// Package match pairs extracted songs with their best catalog candidates and
// decides which pairings can skip human review.
package match

import (
	"github.com/brookscl/playlist-creator/pkg/catalog"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

// DefaultAutoAcceptThreshold is the match confidence at or above which a
// pairing is auto-accepted without review.
const DefaultAutoAcceptThreshold = 0.9

// sentinelTitle is the catalog-song title used when no candidate exists.
const sentinelTitle = "No match found"

// Quality is a display-only banding of match confidence. It never gates
// accept/reject decisions.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// QualityOf bands a confidence score: excellent ≥0.9, good [0.7,0.9),
// fair [0.5,0.7), poor <0.5.
func QualityOf(confidence float64) Quality {
	switch {
	case confidence >= 0.9:
		return QualityExcellent
	case confidence >= 0.7:
		return QualityGood
	case confidence >= 0.5:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Selector builds MatchedSong records from search results.
type Selector struct {
	threshold float64
}

// NewSelector creates a Selector with the given auto-accept threshold.
// Non-positive thresholds fall back to [DefaultAutoAcceptThreshold].
func NewSelector(threshold float64) *Selector {
	if threshold <= 0 {
		threshold = DefaultAutoAcceptThreshold
	}
	return &Selector{threshold: threshold}
}

// Select pairs original with the top-ranked candidate. Candidates are assumed
// to be ranked best-first by the catalog backend. With no candidates the
// sentinel "No match found" song is paired with status skipped, so every
// original yields exactly one MatchedSong.
func (s *Selector) Select(original songs.ExtractedSong, candidates []catalog.SearchResult) songs.MatchedSong {
	if len(candidates) == 0 {
		return s.Sentinel(original)
	}

	top := candidates[0]
	status := songs.StatusPending
	if top.MatchConfidence >= s.threshold {
		status = songs.StatusAuto
	}

	cat := top.Song
	cat.CatalogID = top.CatalogID
	cat.Confidence = top.MatchConfidence

	return songs.MatchedSong{
		Original:   original,
		Catalog:    cat,
		Status:     status,
		PreviewURL: top.PreviewURL,
	}
}

// Sentinel returns the skipped stand-in match for an original song whose
// search found nothing or failed. Per-item search failure must not abort the
// batch; callers convert the failure into this sentinel instead.
func (s *Selector) Sentinel(original songs.ExtractedSong) songs.MatchedSong {
	return songs.MatchedSong{
		Original: original,
		Catalog: songs.Song{
			Title:      sentinelTitle,
			Confidence: 0,
		},
		Status: songs.StatusSkipped,
	}
}

// Summary aggregates review-relevant counts over a match list.
type Summary struct {
	// Total is the number of matched songs.
	Total int

	// AutoSelected counts matches whose confidence met the auto-accept
	// threshold.
	AutoSelected int

	// RequiresReview counts matches still awaiting a user decision.
	RequiresReview int
}

// Summarize computes a [Summary]. Pure aggregation, no side effects.
func Summarize(matches []songs.MatchedSong) Summary {
	sum := Summary{Total: len(matches)}
	for _, m := range matches {
		switch m.Status {
		case songs.StatusAuto:
			sum.AutoSelected++
		case songs.StatusPending:
			sum.RequiresReview++
		}
	}
	return sum
}
