package transcript

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ParseVTT parses a WebVTT document into a Transcript. Cue identifiers, NOTE
// blocks, and STYLE blocks are skipped; cue payload lines are joined with
// spaces. The full text is the cue texts joined in order.
//
// The parser is deliberately lenient: malformed cue timings skip the cue
// rather than failing the whole file, since auto-generated captions are a
// common input.
func ParseVTT(input string) (*Transcript, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("vtt: empty input")
	}
	header := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
	if !strings.HasPrefix(header, "WEBVTT") {
		return nil, fmt.Errorf("vtt: missing WEBVTT header")
	}

	var (
		segments []Segment
		current  *Segment
		inNote   bool
	)

	flush := func() {
		if current != nil && strings.TrimSpace(current.Text) != "" {
			current.Text = strings.TrimSpace(current.Text)
			segments = append(segments, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			flush()
			inNote = false

		case strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE"):
			flush()
			inNote = true

		case inNote:
			// Skip block contents.

		case strings.Contains(line, "-->"):
			flush()
			start, end, err := parseCueTiming(line)
			if err != nil {
				// Lenient: skip this cue entirely.
				current = nil
				continue
			}
			current = &Segment{Start: start, End: end}

		case current != nil:
			if current.Text != "" {
				current.Text += " "
			}
			current.Text += stripCueTags(line)

		default:
			// Cue identifier line before the timing, ignore.
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vtt: scan: %w", err)
	}

	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		texts = append(texts, s.Text)
	}

	return &Transcript{
		Text:     strings.Join(texts, " "),
		Segments: segments,
	}, nil
}

// parseCueTiming parses "00:01:02.500 --> 00:01:05.000" (settings after the
// end time are ignored).
func parseCueTiming(line string) (start, end float64, err error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("vtt: bad cue timing %q", line)
	}
	start, err = parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	endField := strings.Fields(strings.TrimSpace(parts[1]))
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("vtt: bad cue timing %q", line)
	}
	end, err = parseTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp parses "HH:MM:SS.mmm" or "MM:SS.mmm" into seconds.
func parseTimestamp(ts string) (float64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("vtt: bad timestamp %q", ts)
	}

	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("vtt: bad timestamp %q: %w", ts, err)
		}
		total = total*60 + v
	}
	return total, nil
}

// stripCueTags removes inline VTT markup like <v Speaker> and <i>.
func stripCueTags(s string) string {
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return out.String()
}
