// Package review implements the card-style accept/reject session over a list
// of matched songs.
//
// The session owns the mutable Status field of every MatchedSong it is given:
// all mutations go through Accept/Reject/batch operations so that each one is
// paired with a history entry recording the prior state, which is what makes
// Undo exact. The session is not designed for concurrent mutation from
// multiple callers.
package review

import (
	"errors"

	"github.com/brookscl/playlist-creator/pkg/songs"
)

// ErrNoCurrent is returned by Accept/Reject when the cursor is past the end
// of the list (session complete).
var ErrNoCurrent = errors.New("review: no current card")

// ErrNothingToUndo is returned by Undo when no forward action remains
// unrevoked.
var ErrNothingToUndo = errors.New("review: nothing to undo")

// historyEntry records one status mutation for undo.
type historyEntry struct {
	index      int
	prevStatus songs.MatchStatus
}

// Session is a cursor over an ordered list of matched songs with bounded-undo
// accept/reject semantics.
//
// Invariants: the cursor only ever increases except via Undo; the history
// length equals forward actions taken minus undos.
type Session struct {
	matches []songs.MatchedSong
	cursor  int
	history []historyEntry
}

// NewSession creates a Session owning the given matches. The slice is used
// in place; callers hand over ownership of the Status fields.
func NewSession(matches []songs.MatchedSong) *Session {
	return &Session{matches: matches}
}

// Matches returns the underlying match list. Callers must not mutate Status
// directly; use the session operations.
func (s *Session) Matches() []songs.MatchedSong {
	return s.matches
}

// Current returns the match under the cursor, or nil when the session is
// complete.
func (s *Session) Current() *songs.MatchedSong {
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return nil
	}
	return &s.matches[s.cursor]
}

// Index returns the cursor position.
func (s *Session) Index() int { return s.cursor }

// Remaining counts items at or after the cursor that are still pending.
func (s *Session) Remaining() int {
	n := 0
	for i := s.cursor; i < len(s.matches); i++ {
		if s.matches[i].Status == songs.StatusPending {
			n++
		}
	}
	return n
}

// Done reports whether the cursor has passed the end of the list.
func (s *Session) Done() bool {
	return s.cursor >= len(s.matches)
}

// Accept marks the current card selected and advances the cursor.
func (s *Session) Accept() error {
	return s.decide(songs.StatusSelected)
}

// Reject marks the current card skipped and advances the cursor.
func (s *Session) Reject() error {
	return s.decide(songs.StatusSkipped)
}

// decide records the current status in history, applies the new one, and
// advances the cursor past the card. Only pending cards are mutable by user
// action: a card already auto/selected/skipped is passed over without a
// history entry.
func (s *Session) decide(status songs.MatchStatus) error {
	if s.cursor >= len(s.matches) {
		return ErrNoCurrent
	}
	if s.matches[s.cursor].Status != songs.StatusPending {
		s.cursor++
		return nil
	}
	s.history = append(s.history, historyEntry{
		index:      s.cursor,
		prevStatus: s.matches[s.cursor].Status,
	})
	s.matches[s.cursor].Status = status
	s.cursor++
	return nil
}

// Undo revokes the most recent action: the recorded status is restored at its
// index and the cursor moves back to that index. Repeated Undo walks backward
// through history one step at a time.
func (s *Session) Undo() error {
	if len(s.history) == 0 {
		return ErrNothingToUndo
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	s.matches[last.index].Status = last.prevStatus
	s.cursor = last.index
	return nil
}

// AcceptAll accepts every remaining pending card, pushing one history entry
// per affected item, and completes the session (cursor moves to the end).
// Undoing a batch takes one Undo per affected item.
func (s *Session) AcceptAll() {
	s.batchAll(songs.StatusSelected)
}

// RejectAll rejects every remaining pending card; see [Session.AcceptAll]
// for history and cursor behaviour.
func (s *Session) RejectAll() {
	s.batchAll(songs.StatusSkipped)
}

func (s *Session) batchAll(status songs.MatchStatus) {
	for i := s.cursor; i < len(s.matches); i++ {
		if s.matches[i].Status != songs.StatusPending {
			continue
		}
		s.history = append(s.history, historyEntry{index: i, prevStatus: s.matches[i].Status})
		s.matches[i].Status = status
	}
	s.cursor = len(s.matches)
}

// AcceptAllAbove accepts every pending card whose match confidence is at or
// above threshold. Non-pending cards are never touched and the cursor does
// not move.
func (s *Session) AcceptAllAbove(threshold float64) int {
	return s.batchThreshold(songs.StatusSelected, func(conf float64) bool {
		return conf >= threshold
	})
}

// RejectAllBelow rejects every pending card whose match confidence is below
// threshold. Non-pending cards are never touched and the cursor does not
// move.
func (s *Session) RejectAllBelow(threshold float64) int {
	return s.batchThreshold(songs.StatusSkipped, func(conf float64) bool {
		return conf < threshold
	})
}

func (s *Session) batchThreshold(status songs.MatchStatus, match func(float64) bool) int {
	affected := 0
	for i := range s.matches {
		if s.matches[i].Status != songs.StatusPending {
			continue
		}
		if !match(s.matches[i].Catalog.Confidence) {
			continue
		}
		s.history = append(s.history, historyEntry{index: i, prevStatus: s.matches[i].Status})
		s.matches[i].Status = status
		affected++
	}
	return affected
}

// Reset restarts the session: history is cleared, every card returns to
// pending, and the cursor rewinds to zero. This is a full restart, not an
// undo: auto and skipped-sentinel states are discarded too.
func (s *Session) Reset() {
	for i := range s.matches {
		s.matches[i].Status = songs.StatusPending
	}
	s.history = s.history[:0]
	s.cursor = 0
}

// HistoryLen returns the number of undoable actions currently recorded.
func (s *Session) HistoryLen() int { return len(s.history) }
