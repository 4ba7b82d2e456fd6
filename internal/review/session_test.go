package review

import (
	"errors"
	"testing"

	"github.com/brookscl/playlist-creator/pkg/songs"
)

// fixture builds a session over pending matches with the given confidences.
func fixture(confidences ...float64) *Session {
	matches := make([]songs.MatchedSong, len(confidences))
	for i, c := range confidences {
		matches[i] = songs.MatchedSong{
			Original: songs.ExtractedSong{Song: songs.Song{Title: "orig"}},
			Catalog:  songs.Song{Title: "cat", Confidence: c},
			Status:   songs.StatusPending,
		}
	}
	return NewSession(matches)
}

func TestAccept_AdvancesAndRecords(t *testing.T) {
	s := fixture(0.8, 0.7)

	if err := s.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got := s.Matches()[0].Status; got != songs.StatusSelected {
		t.Errorf("status = %v, want selected", got)
	}
	if s.Index() != 1 {
		t.Errorf("cursor = %d, want 1", s.Index())
	}
	if s.HistoryLen() != 1 {
		t.Errorf("history = %d, want 1", s.HistoryLen())
	}
}

func TestReject_MarksSkipped(t *testing.T) {
	s := fixture(0.8)
	if err := s.Reject(); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got := s.Matches()[0].Status; got != songs.StatusSkipped {
		t.Errorf("status = %v, want skipped", got)
	}
	if !s.Done() {
		t.Error("session should be done")
	}
}

func TestAccept_PastEnd(t *testing.T) {
	s := fixture(0.8)
	_ = s.Accept()
	if err := s.Accept(); !errors.Is(err, ErrNoCurrent) {
		t.Errorf("err = %v, want ErrNoCurrent", err)
	}
}

func TestUndo_RestoresExactState(t *testing.T) {
	s := fixture(0.8, 0.7)

	beforeStatus := s.Matches()[0].Status
	beforeCursor := s.Index()
	beforeHistory := s.HistoryLen()

	if err := s.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	// State must be bit-identical to before the accept.
	if got := s.Matches()[0].Status; got != beforeStatus {
		t.Errorf("status = %v, want %v", got, beforeStatus)
	}
	if s.Index() != beforeCursor {
		t.Errorf("cursor = %d, want %d", s.Index(), beforeCursor)
	}
	if s.HistoryLen() != beforeHistory {
		t.Errorf("history = %d, want %d", s.HistoryLen(), beforeHistory)
	}
}

func TestUndo_WalksBackwardOneStepAtATime(t *testing.T) {
	s := fixture(0.8, 0.7, 0.6)
	_ = s.Accept()
	_ = s.Reject()
	_ = s.Accept()

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.Index() != 2 || s.Matches()[2].Status != songs.StatusPending {
		t.Errorf("after first undo: cursor=%d status=%v", s.Index(), s.Matches()[2].Status)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.Index() != 1 || s.Matches()[1].Status != songs.StatusPending {
		t.Errorf("after second undo: cursor=%d status=%v", s.Index(), s.Matches()[1].Status)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("err = %v, want ErrNothingToUndo", err)
	}
}

func TestAccept_SkipsNonPendingCards(t *testing.T) {
	s := fixture(0.8, 0.7)
	s.Matches()[0].Status = songs.StatusAuto

	// Accepting an auto card passes over it without touching it.
	if err := s.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got := s.Matches()[0].Status; got != songs.StatusAuto {
		t.Errorf("auto card mutated to %v", got)
	}
	if s.Index() != 1 {
		t.Errorf("cursor = %d, want 1", s.Index())
	}
	if s.HistoryLen() != 0 {
		t.Errorf("history = %d, want 0", s.HistoryLen())
	}
}

func TestAcceptAll(t *testing.T) {
	s := fixture(0.8, 0.7, 0.6)
	s.Matches()[1].Status = songs.StatusAuto

	s.AcceptAll()

	if got := s.Matches()[0].Status; got != songs.StatusSelected {
		t.Errorf("card 0 = %v, want selected", got)
	}
	if got := s.Matches()[1].Status; got != songs.StatusAuto {
		t.Errorf("card 1 = %v, want auto untouched", got)
	}
	if got := s.Matches()[2].Status; got != songs.StatusSelected {
		t.Errorf("card 2 = %v, want selected", got)
	}
	if !s.Done() {
		t.Error("session should be complete")
	}
	// One history entry per affected item: full-batch undo is repeated
	// single-step undo.
	if s.HistoryLen() != 2 {
		t.Errorf("history = %d, want 2", s.HistoryLen())
	}

	_ = s.Undo()
	_ = s.Undo()
	if s.Matches()[0].Status != songs.StatusPending || s.Matches()[2].Status != songs.StatusPending {
		t.Error("batch not fully undone by repeated single undo")
	}
}

func TestRejectAll_ClearsRemaining(t *testing.T) {
	s := fixture(0.8, 0.7)
	s.RejectAll()

	if s.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", s.Remaining())
	}
	for i, m := range s.Matches() {
		if m.Status != songs.StatusSkipped {
			t.Errorf("card %d = %v, want skipped", i, m.Status)
		}
	}
}

func TestAcceptAllAbove_OnlyTouchesPending(t *testing.T) {
	s := fixture(0.95, 0.92, 0.5)
	s.Matches()[0].Status = songs.StatusSkipped // user already rejected

	affected := s.AcceptAllAbove(0.9)

	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}
	if got := s.Matches()[0].Status; got != songs.StatusSkipped {
		t.Errorf("skipped card changed to %v", got)
	}
	if got := s.Matches()[1].Status; got != songs.StatusSelected {
		t.Errorf("pending 0.92 card = %v, want selected", got)
	}
	if got := s.Matches()[2].Status; got != songs.StatusPending {
		t.Errorf("0.5 card = %v, want pending", got)
	}
	if s.Index() != 0 {
		t.Errorf("cursor moved to %d; threshold ops must not advance it", s.Index())
	}
}

func TestRejectAllBelow(t *testing.T) {
	s := fixture(0.95, 0.4, 0.3)
	affected := s.RejectAllBelow(0.5)

	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}
	if got := s.Matches()[0].Status; got != songs.StatusPending {
		t.Errorf("0.95 card = %v, want pending", got)
	}
	if s.Matches()[1].Status != songs.StatusSkipped || s.Matches()[2].Status != songs.StatusSkipped {
		t.Error("low-confidence cards not skipped")
	}
}

func TestReset_FullRestart(t *testing.T) {
	s := fixture(0.8, 0.7)
	_ = s.Accept()
	_ = s.Reject()

	s.Reset()

	if s.Index() != 0 {
		t.Errorf("cursor = %d, want 0", s.Index())
	}
	if s.HistoryLen() != 0 {
		t.Errorf("history = %d, want 0", s.HistoryLen())
	}
	for i, m := range s.Matches() {
		if m.Status != songs.StatusPending {
			t.Errorf("card %d = %v, want pending", i, m.Status)
		}
	}
}

func TestRemaining(t *testing.T) {
	s := fixture(0.8, 0.7, 0.6)
	if s.Remaining() != 3 {
		t.Errorf("Remaining = %d, want 3", s.Remaining())
	}
	_ = s.Accept()
	if s.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", s.Remaining())
	}
}
