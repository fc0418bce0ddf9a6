package timeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tOgg1/trackline/internal/events"
	"github.com/tOgg1/trackline/internal/gesture"
	"github.com/tOgg1/trackline/internal/history"
	"github.com/tOgg1/trackline/internal/lanes"
	"github.com/tOgg1/trackline/internal/logging"
	"github.com/tOgg1/trackline/internal/magnet"
	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/timescale"
)

// Options configures an Engine. Missing ports default to in-memory
// implementations; a missing Confirmer accepts every replace, so hosts
// that want a real confirmation gate must install one.
type Options struct {
	Video Repository[models.VideoClip]
	Text  Repository[models.TextClip]
	Sound Repository[models.SoundClip]

	VideoLanes LaneController
	TextLanes  LaneController
	SoundLanes LaneController

	Confirmer Confirmer
	Transport Transport
	History   History
	IDs       IDSource
	Events    *events.Publisher
}

// Engine is the timeline orchestrator: it owns the gesture machine, the
// zoom scale, and the playhead, and translates finished gestures into
// whole-collection replacements on the three repositories.
type Engine struct {
	video Repository[models.VideoClip]
	text  Repository[models.TextClip]
	sound Repository[models.SoundClip]

	videoLanes LaneController
	textLanes  LaneController
	soundLanes LaneController

	confirm   Confirmer
	transport Transport
	hist      History
	ids       IDSource
	bus       *events.Publisher

	machine  *gesture.Machine
	scale    timescale.Scale
	playhead float64 // seconds
	logger   zerolog.Logger
}

// NewEngine wires an engine from the given options.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		video:      opts.Video,
		text:       opts.Text,
		sound:      opts.Sound,
		videoLanes: opts.VideoLanes,
		textLanes:  opts.TextLanes,
		soundLanes: opts.SoundLanes,
		confirm:    opts.Confirmer,
		transport:  opts.Transport,
		hist:       opts.History,
		ids:        opts.IDs,
		bus:        opts.Events,
		scale:      timescale.New(),
		logger:     logging.Component("timeline"),
	}
	if e.video == nil {
		e.video = NewMemoryRepository[models.VideoClip]()
	}
	if e.text == nil {
		e.text = NewMemoryRepository[models.TextClip]()
	}
	if e.sound == nil {
		e.sound = NewMemoryRepository[models.SoundClip]()
	}
	if e.videoLanes == nil {
		e.videoLanes = NewMemoryLanes()
	}
	if e.textLanes == nil {
		e.textLanes = NewMemoryLanes()
	}
	if e.soundLanes == nil {
		e.soundLanes = NewMemoryLanes()
	}
	if e.confirm == nil {
		e.confirm = ConfirmerFunc(func(context.Context, models.Ref, string) (bool, error) {
			return true, nil
		})
	}
	if e.hist == nil {
		e.hist = history.NewStack(history.DefaultDepth)
	}
	if e.ids == nil {
		e.ids = UUIDSource{}
	}
	if e.bus == nil {
		e.bus = events.NewPublisher()
	}
	e.machine = gesture.NewMachine(e)
	e.machine.OnSeek(func(seconds float64) { e.Seek(seconds) })
	return e
}

// Clips implements gesture.Board.
func (e *Engine) Clips(kind models.Kind) []models.Ref {
	switch kind {
	case models.KindVideo:
		return models.Refs(e.video.All())
	case models.KindText:
		return models.Refs(e.text.All())
	case models.KindSound:
		return models.Refs(e.sound.All())
	default:
		return nil
	}
}

// Lanes implements gesture.Board.
func (e *Engine) Lanes(kind models.Kind) []int {
	return e.laneController(kind).Lanes()
}

func (e *Engine) laneController(kind models.Kind) LaneController {
	switch kind {
	case models.KindText:
		return e.textLanes
	case models.KindSound:
		return e.soundLanes
	default:
		return e.videoLanes
	}
}

// Machine exposes the gesture machine for the host's pointer wiring.
func (e *Engine) Machine() *gesture.Machine { return e.machine }

// Events exposes the engine's event bus.
func (e *Engine) Events() *events.Publisher { return e.bus }

// SetGeometry installs the host's latest layout snapshot.
func (e *Engine) SetGeometry(geom gesture.Geometry) {
	e.machine.SetGeometry(geom, e.scale)
}

// PointerDown forwards a pointer press to the gesture machine.
func (e *Engine) PointerDown(p gesture.Point, shift bool) {
	e.machine.PointerDown(p, shift)
}

// PointerMove forwards pointer motion to the gesture machine.
func (e *Engine) PointerMove(p gesture.Point) {
	e.machine.PointerMove(p)
}

// PointerUp finishes the active gesture and commits its outcome. The
// context gates the replace confirmation; everything else is synchronous.
func (e *Engine) PointerUp(ctx context.Context, p gesture.Point) error {
	out := e.machine.PointerUp(p)

	switch out.Kind {
	case gesture.OutcomeMove:
		return e.commitMoves(ctx, out.Moves)
	case gesture.OutcomeResize:
		e.commitResize(*out.Resize)
		return nil
	case gesture.OutcomeSeek:
		e.Seek(out.Seek)
		return nil
	case gesture.OutcomeSelect:
		e.bus.Publish(events.Event{Type: events.TypeSelectionChanged})
		return nil
	default:
		return nil
	}
}

// commitMoves applies resolved drop placements. Replace placements pass
// through the confirmation gate; a declined replace leaves that clip
// exactly where it started.
func (e *Engine) commitMoves(ctx context.Context, moves []gesture.Move) error {
	pre := e.Snapshot()
	mutated := false

	for _, mv := range moves {
		kind := mv.Clip.Kind
		lane := mv.Lane

		if mv.NewLane {
			ctrl := e.laneController(kind)
			index, ok := lanes.NextAvailable(ctrl.Lanes())
			if !ok {
				// Lane cap reached between detection and drop.
				lane = mv.Clip.LaneIndex()
			} else {
				ctrl.Add(index)
				lane = index
				e.bus.Publish(events.Event{Type: events.TypeLaneAdded, Kind: kind, Lane: index})
			}
		}

		if mv.Placement.Decision == magnet.DecisionReplace {
			ok, err := e.confirm.ConfirmReplace(ctx, mv.Clip, mv.Placement.ReplaceID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			e.removeClip(kind, mv.Placement.ReplaceID)
			e.bus.Publish(events.Event{Type: events.TypeClipReplaced, Kind: kind, ClipID: mv.Placement.ReplaceID})
		}

		e.applyPlacement(kind, mv.Clip.ID, mv.Placement.Position, lane)
		e.bus.Publish(events.Event{Type: events.TypeClipMoved, Kind: kind, ClipID: mv.Clip.ID, Lane: lane})
		mutated = true
	}

	if mutated {
		e.hist.Push(pre)
	}
	return nil
}

// commitResize applies a span change. Left-handle resizes shift the trim
// offset by the position delta so the clip keeps showing the same source
// content at its anchored edge.
func (e *Engine) commitResize(r gesture.Resize) {
	pre := e.Snapshot()
	deltaPos := r.Position - r.Clip.Position

	switch r.Clip.Kind {
	case models.KindVideo:
		clips := e.video.All()
		for i, c := range clips {
			if c.ID == r.Clip.ID {
				c = c.WithSpan(r.Position, r.Duration)
				c.StartTime += deltaPos
				clips[i] = c
			}
		}
		e.video.ReplaceAll(clips)
	case models.KindText:
		e.text.ReplaceAll(models.ApplySpan(e.text.All(), r.Clip.ID, r.Position, r.Duration))
	case models.KindSound:
		clips := e.sound.All()
		for i, c := range clips {
			if c.ID == r.Clip.ID {
				c = c.WithSpan(r.Position, r.Duration)
				c.StartTime += deltaPos
				clips[i] = c
			}
		}
		e.sound.ReplaceAll(clips)
	}

	e.hist.Push(pre)
	e.bus.Publish(events.Event{Type: events.TypeClipResized, Kind: r.Clip.Kind, ClipID: r.Clip.ID})
}

func (e *Engine) applyPlacement(kind models.Kind, id string, position float64, lane int) {
	switch kind {
	case models.KindVideo:
		e.video.ReplaceAll(models.ApplyPlacement(e.video.All(), id, position, lane))
	case models.KindText:
		e.text.ReplaceAll(models.ApplyPlacement(e.text.All(), id, position, lane))
	case models.KindSound:
		e.sound.ReplaceAll(models.ApplyPlacement(e.sound.All(), id, position, lane))
	}
}

func (e *Engine) removeClip(kind models.Kind, id string) {
	switch kind {
	case models.KindVideo:
		e.video.ReplaceAll(models.Remove(e.video.All(), id))
	case models.KindText:
		e.text.ReplaceAll(models.Remove(e.text.All(), id))
	case models.KindSound:
		e.sound.ReplaceAll(models.Remove(e.sound.All(), id))
	}
}

// Snapshot captures the three collections for history and persistence.
func (e *Engine) Snapshot() history.Snapshot {
	return history.Snapshot{
		Video: e.video.All(),
		Text:  e.text.All(),
		Sound: e.sound.All(),
	}
}

// Restore replaces all three collections from a snapshot.
func (e *Engine) Restore(snap history.Snapshot) {
	e.video.ReplaceAll(snap.Video)
	e.text.ReplaceAll(snap.Text)
	e.sound.ReplaceAll(snap.Sound)
}

// Undo reverts the most recent committed mutation.
func (e *Engine) Undo() bool {
	snap, ok := e.hist.Undo(e.Snapshot())
	if !ok {
		return false
	}
	e.Restore(snap)
	return true
}

// Redo re-applies the most recently undone mutation.
func (e *Engine) Redo() bool {
	snap, ok := e.hist.Redo(e.Snapshot())
	if !ok {
		return false
	}
	e.Restore(snap)
	return true
}

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }

// Scale returns the current zoom setting.
func (e *Engine) Scale() timescale.Scale { return e.scale }

// ZoomIn steps the zoom up 10%, clamped at 200%. The host must rebuild
// geometry afterwards.
func (e *Engine) ZoomIn() {
	e.scale = e.scale.ZoomIn()
}

// ZoomOut steps the zoom down 10%, clamped at 50%.
func (e *Engine) ZoomOut() {
	e.scale = e.scale.ZoomOut()
}

// Playhead returns the current playhead time in seconds.
func (e *Engine) Playhead() float64 { return e.playhead }

// Seek moves the playhead, clamped to the 3-minute hard limit and
// quantized to the frame grid.
func (e *Engine) Seek(seconds float64) {
	seconds = timescale.QuantizeToFrame(timescale.ClampSeek(seconds))
	if seconds == e.playhead {
		return
	}
	e.playhead = seconds
	if e.transport != nil {
		e.transport.Seek(seconds)
	}
	e.bus.Publish(events.Event{Type: events.TypePlayheadSeeked, Seconds: seconds})
}

// PlayPause toggles playback on the host transport.
func (e *Engine) PlayPause() {
	if e.transport != nil {
		e.transport.PlayPause()
	}
}

// ContentEnd returns the maximum clip end across all three collections, in
// base pixels.
func (e *Engine) ContentEnd() float64 {
	end := 0.0
	for _, kind := range models.Kinds {
		for _, r := range e.Clips(kind) {
			if r.End() > end {
				end = r.End()
			}
		}
	}
	return end
}

// TotalLength returns the rendered timeline length in base pixels.
func (e *Engine) TotalLength() float64 {
	return timescale.TotalLength(e.ContentEnd())
}
