// Package history implements the host-side undo/redo stack. The timeline
// engine only delegates through its History port; this package owns the
// actual snapshots.
package history

import "github.com/tOgg1/trackline/internal/models"

// DefaultDepth is how many undo steps are kept before the oldest is
// discarded.
const DefaultDepth = 100

// Snapshot captures all three clip collections at one point in time.
type Snapshot struct {
	Video []models.VideoClip
	Text  []models.TextClip
	Sound []models.SoundClip
}

// Clone deep-copies the snapshot so later edits cannot leak into stored
// history entries.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Video: append([]models.VideoClip(nil), s.Video...),
		Text:  append([]models.TextClip(nil), s.Text...),
		Sound: append([]models.SoundClip(nil), s.Sound...),
	}
}

// Stack is a bounded undo/redo stack. Not safe for concurrent use; the
// editor is single-threaded by design.
type Stack struct {
	past   []Snapshot
	future []Snapshot
	depth  int
}

// NewStack returns a stack bounded at the given depth; zero or negative
// depths fall back to DefaultDepth.
func NewStack(depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{depth: depth}
}

// Push records the state as it was before a mutation and clears the redo
// branch.
func (s *Stack) Push(snap Snapshot) {
	s.past = append(s.past, snap.Clone())
	if len(s.past) > s.depth {
		s.past = s.past[len(s.past)-s.depth:]
	}
	s.future = s.future[:0]
}

// Undo trades the current state for the most recent snapshot. The second
// return is false when there is nothing to undo.
func (s *Stack) Undo(current Snapshot) (Snapshot, bool) {
	if len(s.past) == 0 {
		return Snapshot{}, false
	}
	top := s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	s.future = append(s.future, current.Clone())
	return top, true
}

// Redo trades the current state for the most recently undone snapshot.
func (s *Stack) Redo(current Snapshot) (Snapshot, bool) {
	if len(s.future) == 0 {
		return Snapshot{}, false
	}
	top := s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	s.past = append(s.past, current.Clone())
	return top, true
}

// CanUndo reports whether an undo step is available.
func (s *Stack) CanUndo() bool { return len(s.past) > 0 }

// CanRedo reports whether a redo step is available.
func (s *Stack) CanRedo() bool { return len(s.future) > 0 }

// Len returns the number of undoable steps.
func (s *Stack) Len() int { return len(s.past) }
