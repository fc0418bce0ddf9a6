package timeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/trackline/internal/events"
	"github.com/tOgg1/trackline/internal/gesture"
	"github.com/tOgg1/trackline/internal/models"
)

const (
	testHeader     = 24.0
	testLaneHeight = 40.0
)

type stubTransport struct {
	seeks   []float64
	toggles int
}

func (t *stubTransport) Seek(seconds float64) { t.seeks = append(t.seeks, seconds) }
func (t *stubTransport) PlayPause()           { t.toggles++ }

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("new-%d", s.n)
}

// layoutGeometry mirrors the TUI host's layout: stacked lane rows per kind
// at 100% zoom, so screen pixels equal base pixels.
func layoutGeometry(e *Engine) gesture.Geometry {
	geom := gesture.Geometry{
		Bounds:       gesture.Rect{X: 0, Y: 0, W: 7200, H: 600},
		HeaderHeight: testHeader,
	}
	y := testHeader
	for _, kind := range models.Kinds {
		for _, index := range e.Lanes(kind) {
			geom.Lanes = append(geom.Lanes, gesture.LaneRect{
				Kind:   kind,
				Index:  index,
				Bounds: gesture.Rect{X: 0, Y: y, W: 7200, H: testLaneHeight},
			})
			y += testLaneHeight
		}
	}
	for _, kind := range models.Kinds {
		for _, r := range e.Clips(kind) {
			for _, lane := range geom.Lanes {
				if lane.Kind == kind && lane.Index == r.LaneIndex() {
					geom.Clips = append(geom.Clips, gesture.ClipRect{
						Ref:    r,
						Bounds: gesture.Rect{X: r.Position, Y: lane.Bounds.Y, W: r.Duration, H: testLaneHeight},
					})
				}
			}
		}
	}
	return geom
}

func refreshGeometry(e *Engine) { e.SetGeometry(layoutGeometry(e)) }

func vclip(id string, position, duration float64, lane int) models.VideoClip {
	return models.VideoClip{ID: id, Position: position, Duration: duration, Lane: lane}
}

// drag presses on the clip's center and releases deltaX to the right.
func drag(t *testing.T, e *Engine, r models.Ref, deltaX float64) {
	t.Helper()
	refreshGeometry(e)
	from := gesture.Point{X: r.Position + r.Duration/2, Y: testHeader + testLaneHeight/2}
	to := gesture.Point{X: from.X + deltaX, Y: from.Y}
	e.PointerDown(from, false)
	e.PointerMove(to)
	require.NoError(t, e.PointerUp(context.Background(), to))
}

func TestDragCommitSnapsAndPublishes(t *testing.T) {
	video := NewMemoryRepository(
		vclip("a", 100, 200, 0),
		vclip("b", 500, 200, 0),
	)
	e := NewEngine(Options{Video: video})

	var got []events.Event
	require.NoError(t, e.Events().Subscribe("test", events.Filter{Types: []events.Type{events.TypeClipMoved}}, func(ev events.Event) {
		got = append(got, ev)
	}))

	// Dragging "a" 230px right overlaps "b" by 15%, below the replace
	// threshold, so it snaps back to abut at 300.
	a, ok := models.FindRef(e.Clips(models.KindVideo), "a")
	require.True(t, ok)
	drag(t, e, a, 230)

	clips := video.All()
	moved, ok := models.Find(clips, "a")
	require.True(t, ok)
	require.InDelta(t, 300.0, moved.Position, 1e-9)

	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ClipID)
	require.True(t, e.CanUndo())
}

func TestDragUndoRedo(t *testing.T) {
	video := NewMemoryRepository(vclip("a", 100, 200, 0))
	e := NewEngine(Options{Video: video})

	a, _ := models.FindRef(e.Clips(models.KindVideo), "a")
	drag(t, e, a, 400)

	moved, _ := models.Find(video.All(), "a")
	require.InDelta(t, 500.0, moved.Position, 1e-9)

	require.True(t, e.Undo())
	back, _ := models.Find(video.All(), "a")
	require.InDelta(t, 100.0, back.Position, 1e-9)

	require.True(t, e.Redo())
	again, _ := models.Find(video.All(), "a")
	require.InDelta(t, 500.0, again.Position, 1e-9)
}

func TestReplaceConfirmed(t *testing.T) {
	video := NewMemoryRepository(
		vclip("a", 0, 200, 0),
		vclip("b", 220, 200, 0),
	)
	e := NewEngine(Options{
		Video: video,
		Confirmer: ConfirmerFunc(func(context.Context, models.Ref, string) (bool, error) {
			return true, nil
		}),
	})

	// 75% overlap with "b": replace.
	a, _ := models.FindRef(e.Clips(models.KindVideo), "a")
	drag(t, e, a, 270)

	clips := video.All()
	require.Len(t, clips, 1)
	require.Equal(t, "a", clips[0].ID)
	require.InDelta(t, 270.0, clips[0].Position, 1e-9)
}

func TestReplaceDeclinedLeavesEverything(t *testing.T) {
	video := NewMemoryRepository(
		vclip("a", 0, 200, 0),
		vclip("b", 220, 200, 0),
	)
	declined := 0
	e := NewEngine(Options{
		Video: video,
		Confirmer: ConfirmerFunc(func(context.Context, models.Ref, string) (bool, error) {
			declined++
			return false, nil
		}),
	})

	a, _ := models.FindRef(e.Clips(models.KindVideo), "a")
	drag(t, e, a, 270)

	require.Equal(t, 1, declined)
	clips := video.All()
	require.Len(t, clips, 2)
	still, _ := models.Find(clips, "a")
	require.InDelta(t, 0.0, still.Position, 1e-9)
	require.False(t, e.CanUndo())
}

func TestDropzoneAllocatesLane(t *testing.T) {
	video := NewMemoryRepository(vclip("a", 100, 200, 0))
	laneCtrl := NewMemoryLanes(0)
	e := NewEngine(Options{Video: video, VideoLanes: laneCtrl})
	refreshGeometry(e)

	// The video dropzone band sits just below the single video lane row.
	from := gesture.Point{X: 200, Y: testHeader + testLaneHeight/2}
	to := gesture.Point{X: 200, Y: testHeader + testLaneHeight + gesture.DropzoneHeight/2}
	e.PointerDown(from, false)
	e.PointerMove(to)
	require.NoError(t, e.PointerUp(context.Background(), to))

	require.Equal(t, []int{0, 1}, laneCtrl.Lanes())
	moved, _ := models.Find(video.All(), "a")
	require.Equal(t, 1, moved.Lane)
}

func TestResizeRightKeepsTrimOffset(t *testing.T) {
	clip := vclip("a", 100, 200, 0)
	clip.StartTime = 40
	clip.MaxDuration = 400
	video := NewMemoryRepository(clip)
	e := NewEngine(Options{Video: video})
	refreshGeometry(e)

	// Grab the right handle and pull 100px right.
	from := gesture.Point{X: 299, Y: testHeader + 10}
	to := gesture.Point{X: 399, Y: testHeader + 10}
	e.PointerDown(from, false)
	e.PointerMove(to)
	require.NoError(t, e.PointerUp(context.Background(), to))

	got, _ := models.Find(video.All(), "a")
	require.InDelta(t, 100.0, got.Position, 1e-9)
	require.InDelta(t, 300.0, got.Duration, 1e-9)
	require.InDelta(t, 40.0, got.StartTime, 1e-9)
}

func TestResizeLeftShiftsTrimOffset(t *testing.T) {
	clip := vclip("a", 400, 200, 0)
	clip.StartTime = 80
	clip.MaxDuration = 600
	video := NewMemoryRepository(clip)
	e := NewEngine(Options{Video: video})
	refreshGeometry(e)

	// Pull the left handle 80px left: trim is fully consumed.
	from := gesture.Point{X: 401, Y: testHeader + 10}
	to := gesture.Point{X: 321, Y: testHeader + 10}
	e.PointerDown(from, false)
	e.PointerMove(to)
	require.NoError(t, e.PointerUp(context.Background(), to))

	got, _ := models.Find(video.All(), "a")
	require.InDelta(t, 320.0, got.Position, 1e-9)
	require.InDelta(t, 280.0, got.Duration, 1e-9)
	require.InDelta(t, 0.0, got.StartTime, 1e-9)
}

func TestSeekClampsQuantizesAndNotifiesTransport(t *testing.T) {
	transport := &stubTransport{}
	e := NewEngine(Options{Transport: transport})

	e.Seek(200)
	require.InDelta(t, 180.0, e.Playhead(), 1e-9)
	require.Equal(t, []float64{180}, transport.seeks)

	// Quantized to the 1/30s grid.
	e.Seek(1.26)
	require.InDelta(t, 38.0/30.0, e.Playhead(), 1e-9)

	e.PlayPause()
	require.Equal(t, 1, transport.toggles)
}

func TestDuplicatePlacesAfterOriginal(t *testing.T) {
	video := NewMemoryRepository(
		vclip("a", 100, 200, 0),
		vclip("b", 300, 150, 0),
	)
	e := NewEngine(Options{Video: video, IDs: &seqIDs{}})

	// "b" abuts "a", so the copy snaps past "b" to 450.
	id, err := e.Duplicate(models.KindVideo, "a")
	require.NoError(t, err)
	require.Equal(t, "new-1", id)

	dup, ok := models.Find(video.All(), "new-1")
	require.True(t, ok)
	require.InDelta(t, 450.0, dup.Position, 1e-9)
	require.InDelta(t, 200.0, dup.Duration, 1e-9)

	_, err = e.Duplicate(models.KindVideo, "missing")
	require.ErrorIs(t, err, ErrClipNotFound)
}

func TestSplitAtPlayhead(t *testing.T) {
	clip := vclip("a", 120, 240, 0)
	clip.StartTime = 40
	video := NewMemoryRepository(clip)
	e := NewEngine(Options{Video: video, IDs: &seqIDs{}})

	// 6s of playhead = 240 base-px, inside [120, 360).
	e.Seek(6)
	require.True(t, e.CanSplit(models.KindVideo, "a"))

	rightID, err := e.SplitAtPlayhead(models.KindVideo, "a")
	require.NoError(t, err)
	require.Equal(t, "new-1", rightID)

	clips := video.All()
	require.Len(t, clips, 2)
	left, _ := models.Find(clips, "a")
	right, _ := models.Find(clips, "new-1")
	require.InDelta(t, 120.0, left.Position, 1e-9)
	require.InDelta(t, 120.0, left.Duration, 1e-9)
	require.InDelta(t, 240.0, right.Position, 1e-9)
	require.InDelta(t, 120.0, right.Duration, 1e-9)
	require.InDelta(t, 160.0, right.StartTime, 1e-9)
}

func TestSplitRefusedOutsideClip(t *testing.T) {
	video := NewMemoryRepository(vclip("a", 120, 240, 0))
	e := NewEngine(Options{Video: video, IDs: &seqIDs{}})

	e.Seek(0)
	require.False(t, e.CanSplit(models.KindVideo, "a"))
	_, err := e.SplitAtPlayhead(models.KindVideo, "a")
	require.ErrorIs(t, err, ErrNothingToCut)
	require.Len(t, video.All(), 1)
}

func TestDeleteSelected(t *testing.T) {
	video := NewMemoryRepository(
		vclip("a", 100, 200, 0),
		vclip("b", 400, 200, 0),
	)
	e := NewEngine(Options{Video: video})
	refreshGeometry(e)

	// Rubber-band across both clips.
	from := gesture.Point{X: 50, Y: testHeader + 2}
	to := gesture.Point{X: 700, Y: testHeader + testLaneHeight - 2}
	e.PointerDown(from, false)
	e.PointerMove(to)
	require.NoError(t, e.PointerUp(context.Background(), to))
	require.Len(t, e.Machine().Selection(), 2)

	require.Equal(t, 2, e.DeleteSelected())
	require.Empty(t, video.All())
	require.Empty(t, e.Machine().Selection())
	require.True(t, e.CanUndo())

	require.Equal(t, 0, e.DeleteSelected())
}

func TestLaneOperations(t *testing.T) {
	video := NewMemoryRepository(vclip("a", 100, 200, 1))
	laneCtrl := NewMemoryLanes(0, 1)
	e := NewEngine(Options{Video: video, VideoLanes: laneCtrl})

	// Lane 1 holds a clip.
	err := e.RemoveLane(models.KindVideo, 1)
	require.ErrorIs(t, err, ErrLaneNotEmpty)

	// Lane 0 is protected even when empty.
	err = e.RemoveLane(models.KindVideo, 0)
	require.ErrorIs(t, err, ErrLaneProtected)

	index, err := e.AddLane(models.KindVideo)
	require.NoError(t, err)
	require.Equal(t, 2, index)

	_, err = e.AddLane(models.KindVideo)
	require.ErrorIs(t, err, ErrLaneCap)

	require.NoError(t, e.RemoveLane(models.KindVideo, 2))
	require.Equal(t, []int{0, 1}, laneCtrl.Lanes())
}

func TestContentEndAndTotalLength(t *testing.T) {
	video := NewMemoryRepository(vclip("a", 100, 200, 0))
	sound := NewMemoryRepository(models.SoundClip{ID: "s", Position: 400, Duration: 240, Volume: 100})
	e := NewEngine(Options{Video: video, Sound: sound})

	require.InDelta(t, 640.0, e.ContentEnd(), 1e-9)
	// 16s of content + 10s tail rounds up to 26s, below the 180s floor.
	require.InDelta(t, 7200.0, e.TotalLength(), 1e-9)
}

func TestZoomRebuildsScale(t *testing.T) {
	e := NewEngine(Options{})
	for i := 0; i < 10; i++ {
		e.ZoomIn()
	}
	require.Equal(t, 200, e.Scale().Percent())
	for i := 0; i < 20; i++ {
		e.ZoomOut()
	}
	require.Equal(t, 50, e.Scale().Percent())
}

func TestAddClipLandsInFirstFreeSlot(t *testing.T) {
	video := NewMemoryRepository(vclip("a", 0, 200, 0))
	e := NewEngine(Options{Video: video})

	var added []events.Event
	require.NoError(t, e.Events().Subscribe("test", events.Filter{Types: []events.Type{events.TypeClipAdded}}, func(ev events.Event) {
		added = append(added, ev)
	}))

	// Requested position overlaps "a", so the new clip is pushed to its end.
	require.NoError(t, e.AddVideo(vclip("b", 100, 150, 0), 0))

	b, ok := models.Find(video.All(), "b")
	require.True(t, ok)
	require.InDelta(t, 200.0, b.Position, 1e-9)
	require.Equal(t, 0, b.Lane)

	require.Len(t, added, 1)
	require.Equal(t, "b", added[0].ClipID)
	require.True(t, e.CanUndo())

	// Invalid clips are refused before anything mutates.
	err := e.AddVideo(vclip("c", 0, 10, 0), 0)
	require.Error(t, err)
	require.Len(t, video.All(), 2)
}
