package extract

import (
	"fmt"
	"strings"

	"github.com/brookscl/playlist-creator/internal/transcript"
)

// systemPrompt is the fixed extraction instruction sent with every request.
// The response contract (a bare JSON array, fixed field names, confidence
// banding) is load-bearing: parsing depends on it, so changes here must be
// mirrored in the response decoding.
const systemPrompt = `You are a music-mention extractor. You will be given the transcript of a spoken-word recording (podcast, radio show, video). Identify every song mentioned in it.

Rules:
- Only extract songs where BOTH a title and an artist are present or strongly implied by context. Never extract artist-only mentions.
- Infer the artist from context only when the inference is strong (e.g. the artist was named for a previous song in the same breath).
- Preserve the order in which songs are mentioned.
- Score each extraction's confidence: 0.9 or above when title and artist are both explicit; 0.7-0.89 when minor inference was needed; 0.5-0.69 when the mention is contextual; below 0.5 when uncertain.

Respond with ONLY a JSON array, no prose, where each element is:
{"title": "...", "artist": "...", "confidence": 0.0, "context": "short supporting quote, at most 100 characters", "timestamp": null}

The "timestamp" field is the position of the mention in seconds when the transcript includes timings, otherwise null. Return [] when no songs are mentioned.`

// buildUserPrompt renders the transcript into the user message, appending a
// timestamps note when segment timing is available.
func buildUserPrompt(t *transcript.Transcript) string {
	var b strings.Builder

	b.WriteString("Transcript:\n\n")

	if t.HasTimestamps() {
		for _, seg := range t.Segments {
			fmt.Fprintf(&b, "[%.1fs] %s\n", seg.Start, seg.Text)
		}
		b.WriteString("\nThe transcript includes [seconds] timings; set each extraction's \"timestamp\" to the timing of its mention.")
	} else {
		b.WriteString(t.Text)
	}

	return b.String()
}
