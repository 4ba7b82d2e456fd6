// Package normalize provides pure text-cleaning functions for song titles and
// artist names extracted from spoken-word transcripts, together with a
// confidence-adjustment heuristic and fuzzy duplicate detection.
//
// Transcripts and the language model both introduce predictable noise:
// trailing video-platform artifacts ("- Official Video", "(Lyrics)"),
// shouting-case or all-lowercase rendering, wrapping quotes, and
// "Beatles, The"-style library suffixes. All functions here are pure, so they
// can be applied per extraction item without ordering concerns.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/brookscl/playlist-creator/pkg/songs"
)

// titleSimilarityThreshold is the minimum normalized Levenshtein similarity
// (1 − distance/maxLen) for two titles by the same artist to be considered
// the same song.
const titleSimilarityThreshold = 0.85

// artifactSuffixes are transcript/video artifacts stripped from the end of a
// title, case-insensitively. Order matters: longer variants first so that
// e.g. "(Official Music Video)" is removed before "(Official Video)" is tried.
var artifactSuffixes = []string{
	"(official music video)",
	"(official video)",
	"(official audio)",
	"(lyric video)",
	"(lyrics)",
	"(audio)",
	"(live)",
	"- official music video",
	"- official video",
	"- official audio",
	"- lyrics",
	"- topic",
}

// artistPrefixes are label words the model sometimes leaves attached to the
// artist field ("by Queen", "performed by Queen").
var artistPrefixes = []string{
	"performed by ",
	"sung by ",
	"by ",
}

// uncertaintyMarkers flag low-quality extractions. Checked case-insensitively
// in both the title and artist fields.
var uncertaintyMarkers = []string{"?", "[", "]", "unclear", "unknown"}

// Title cleans a song title: whitespace collapse, artifact-suffix stripping,
// quote unwrapping, and the capitalization heuristic.
func Title(title string) string {
	t := collapseWhitespace(title)
	t = stripArtifacts(t)
	t = unwrapQuotes(t)
	t = fixCapitalization(t)
	return t
}

// Artist cleans an artist name. In addition to the title rules it removes
// label prefixes ("by ", "performed by ") and converts a trailing ", The"
// library suffix into a leading "The " prefix.
func Artist(artist string) string {
	a := collapseWhitespace(artist)

	lower := strings.ToLower(a)
	for _, p := range artistPrefixes {
		if strings.HasPrefix(lower, p) {
			a = collapseWhitespace(a[len(p):])
			break
		}
	}

	a = unwrapQuotes(a)

	// "Beatles, The" → "The Beatles".
	if len(a) > 5 && strings.EqualFold(a[len(a)-5:], ", the") {
		a = "The " + strings.TrimSpace(a[:len(a)-5])
	}

	a = fixCapitalization(a)
	return a
}

// AdjustConfidence applies data-quality penalties and bonuses to a base
// confidence score and clamps the result to [0, 1].
//
// Penalties: ×0.7 when the title is shorter than 3 runes, ×0.7 when the
// artist is shorter than 2 runes, and a single ×0.6 when either field
// contains any uncertainty marker (multiple markers do not stack). Bonus:
// ×1.1 when both fields are at least 3 runes and neither contains an
// ellipsis. Each factor applies independently; a marked-up title that is
// still long enough earns both the penalty and the bonus.
func AdjustConfidence(base float64, title, artist string) float64 {
	conf := base

	titleLen := utf8.RuneCountInString(title)
	artistLen := utf8.RuneCountInString(artist)

	if titleLen < 3 {
		conf *= 0.7
	}
	if artistLen < 2 {
		conf *= 0.7
	}
	if hasUncertaintyMarker(title) || hasUncertaintyMarker(artist) {
		conf *= 0.6
	}
	if titleLen >= 3 && artistLen >= 3 && !hasEllipsis(title) && !hasEllipsis(artist) {
		conf *= 1.1
	}

	return clamp01(conf)
}

// LikelyDuplicates reports whether a and b refer to the same song. It is
// symmetric and pure.
//
// Both songs are normalized and lowercased first. Exact title+artist equality
// is a duplicate; equal artists with title similarity above 0.85 is a
// duplicate; equal artists whose titles become equal after stripping a
// parenthetical or bracketed suffix is a duplicate.
func LikelyDuplicates(a, b songs.Song) bool {
	titleA := strings.ToLower(Title(a.Title))
	titleB := strings.ToLower(Title(b.Title))
	artistA := strings.ToLower(Artist(a.Artist))
	artistB := strings.ToLower(Artist(b.Artist))

	if titleA == titleB && artistA == artistB {
		return true
	}
	if artistA != artistB {
		return false
	}
	if TitleSimilarity(titleA, titleB) > titleSimilarityThreshold {
		return true
	}
	return stripParenthetical(titleA) == stripParenthetical(titleB)
}

// TitleSimilarity returns 1 − normalized Levenshtein distance between a and
// b, in [0, 1]. Identical strings score 1.0.
func TitleSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}
	dist := matchr.Levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// collapseWhitespace trims and folds internal whitespace runs to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripArtifacts removes one trailing artifact suffix, then re-trims.
func stripArtifacts(s string) string {
	lower := strings.ToLower(s)
	for _, suffix := range artifactSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return collapseWhitespace(s[:len(s)-len(suffix)])
		}
	}
	return s
}

// quotePairs lists matching opening/closing wrapping quotes. A pair is only
// stripped when both ends are present.
var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'}, // curly double
	{'‘', '’'}, // curly single
}

// unwrapQuotes strips a single pair of matching wrapping quotation marks.
func unwrapQuotes(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return s
	}
	first, last := runes[0], runes[len(runes)-1]
	for _, pair := range quotePairs {
		if first == pair[0] && last == pair[1] {
			return strings.TrimSpace(string(runes[1 : len(runes)-1]))
		}
	}
	return s
}

// fixCapitalization repairs transcript casing without destroying stylized
// names: all-caps tokens longer than 3 runes are title-cased, an entirely
// lowercase short string gets its first rune capitalized, and anything with
// mixed case is preserved as-is.
func fixCapitalization(s string) string {
	if s == "" {
		return s
	}
	switch {
	case isAllUpper(s) && utf8.RuneCountInString(s) > 3:
		return titleCase(strings.ToLower(s))
	case isAllLower(s) && utf8.RuneCountInString(s) <= 30:
		runes := []rune(s)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	default:
		return s
	}
}

// titleCase capitalizes the first rune of each whitespace-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isAllLower(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// stripParenthetical removes a trailing parenthesized or bracketed segment,
// e.g. "song (remastered 2011)" → "song".
func stripParenthetical(s string) string {
	for _, open := range []string{"(", "["} {
		if idx := strings.LastIndex(s, open); idx > 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}
	return s
}

func hasUncertaintyMarker(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range uncertaintyMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func hasEllipsis(s string) bool {
	return strings.Contains(s, "...") || strings.Contains(s, "…")
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
