package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Similarity weights and floors for candidate scoring. The title dominates
// because catalog search engines already filter heavily on it; the artist
// term mostly disambiguates covers.
const (
	titleWeight  = 0.7
	artistWeight = 0.3
)

// Score computes a match confidence in [0, 1] for a catalog candidate against
// the query title and artist. Both sides are reduced to lowercase
// alphanumeric tokens with bracketed segments removed before comparison, so
// "Let It Be (Remastered 2009)" scores 1.0 against "let it be".
//
// Backends use this to populate [SearchResult.MatchConfidence] when the
// upstream API does not report a relevance score of its own.
func Score(queryTitle, queryArtist, candidateTitle, candidateArtist string) float64 {
	qt := foldForScoring(queryTitle)
	qa := foldForScoring(queryArtist)
	ct := foldForScoring(candidateTitle)
	ca := foldForScoring(candidateArtist)

	if qt == "" || ct == "" {
		return 0
	}

	titleSim := similarity(qt, ct)
	if qa == "" || ca == "" {
		return titleSim
	}
	return titleWeight*titleSim + artistWeight*similarity(qa, ca)
}

// similarity is 1 − normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(matchr.Levenshtein(a, b))/float64(maxLen)
}

// foldForScoring lowercases, removes bracketed segments, and reduces the rest
// to space-separated alphanumeric tokens.
func foldForScoring(s string) string {
	lower := strings.ToLower(s)

	var out strings.Builder
	depth := 0
	lastSpace := true
	for _, r := range lower {
		switch {
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			if depth > 0 {
				depth--
			}
		case depth > 0:
			// Inside a bracketed segment, drop.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				out.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(out.String())
}
