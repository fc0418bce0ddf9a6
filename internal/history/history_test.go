package history

import (
	"testing"

	"github.com/tOgg1/trackline/internal/models"
)

func snap(ids ...string) Snapshot {
	s := Snapshot{}
	for _, id := range ids {
		s.Video = append(s.Video, models.VideoClip{ID: id, Duration: 200})
	}
	return s
}

func TestUndoRedoRoundTrip(t *testing.T) {
	st := NewStack(10)
	if st.CanUndo() || st.CanRedo() {
		t.Fatal("fresh stack should have no history")
	}

	before := snap("a")
	after := snap("a", "b")
	st.Push(before)

	got, ok := st.Undo(after)
	if !ok || len(got.Video) != 1 {
		t.Fatalf("Undo returned %v, %v", got, ok)
	}
	if !st.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}

	got, ok = st.Redo(got)
	if !ok || len(got.Video) != 2 {
		t.Fatalf("Redo returned %v, %v", got, ok)
	}
}

func TestPushClearsRedoBranch(t *testing.T) {
	st := NewStack(10)
	st.Push(snap("a"))
	if _, ok := st.Undo(snap("a", "b")); !ok {
		t.Fatal("undo failed")
	}
	st.Push(snap("c"))
	if st.CanRedo() {
		t.Error("push should clear the redo branch")
	}
}

func TestDepthBound(t *testing.T) {
	st := NewStack(3)
	for i := 0; i < 10; i++ {
		st.Push(snap("a"))
	}
	if st.Len() != 3 {
		t.Errorf("Len() = %d, want 3", st.Len())
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	st := NewStack(10)
	live := snap("a")
	st.Push(live)
	live.Video[0].Position = 999

	got, _ := st.Undo(snap())
	if got.Video[0].Position != 0 {
		t.Error("stored snapshot was mutated through the live slice")
	}
}
