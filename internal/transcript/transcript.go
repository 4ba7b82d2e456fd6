// Package transcript defines the transcript shape consumed by the extraction
// client and loads transcripts from plain-text or WebVTT files.
//
// Transcription itself (speech-to-text) happens outside this program; this
// package only models its output.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Segment is a timed span of transcript text.
type Segment struct {
	// Text is the spoken text of this span.
	Text string

	// Start and End are offsets into the source audio, in seconds.
	Start float64
	End   float64
}

// Transcript is the output of an external transcription provider.
type Transcript struct {
	// Text is the full transcript text.
	Text string

	// Segments is the timed breakdown of Text. Empty when the source carries
	// no timing information (plain-text files).
	Segments []Segment

	// Language is the detected language code, when known (e.g. "en").
	Language string

	// Confidence is the transcription provider's overall confidence, when
	// known. Zero when the provider reports none.
	Confidence float64
}

// HasTimestamps reports whether the transcript carries per-segment timing.
func (t *Transcript) HasTimestamps() bool {
	return len(t.Segments) > 0
}

// Load reads a transcript file, dispatching on the file extension: ".vtt" is
// parsed as WebVTT, everything else is treated as plain text.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: read %q: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".vtt") {
		t, err := ParseVTT(string(data))
		if err != nil {
			return nil, fmt.Errorf("transcript: parse %q: %w", path, err)
		}
		return t, nil
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("transcript: %q is empty", path)
	}
	return &Transcript{Text: text}, nil
}
