package gesture

import (
	"github.com/rs/zerolog"

	"github.com/tOgg1/trackline/internal/lanes"
	"github.com/tOgg1/trackline/internal/logging"
	"github.com/tOgg1/trackline/internal/magnet"
	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/timescale"
)

// State is the machine's current interaction mode. States are mutually
// exclusive; a gesture must return to Idle before another can begin.
type State int

const (
	StateIdle State = iota
	StateDraggingClip
	StateResizingClip
	StateDraggingPlayhead
	StateSelectingRange
	StateAdjustingSelection
	StateMovingSelection
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraggingClip:
		return "dragging-clip"
	case StateResizingClip:
		return "resizing-clip"
	case StateDraggingPlayhead:
		return "dragging-playhead"
	case StateSelectingRange:
		return "selecting-range"
	case StateAdjustingSelection:
		return "adjusting-selection"
	case StateMovingSelection:
		return "moving-selection"
	default:
		return "unknown"
	}
}

// Board is the machine's read-only view of the host's clip collections and
// lane lists. Snapshots are taken as needed; the machine never mutates
// anything behind this interface.
type Board interface {
	Clips(kind models.Kind) []models.Ref
	Lanes(kind models.Kind) []int
}

// Machine tracks one pointer gesture at a time. All coordinates entering
// the machine are timeline-local screen pixels; deltas are converted to
// base units through the geometry's scale before touching clip data.
type Machine struct {
	board  Board
	geom   Geometry
	scale  timescale.Scale
	seek   func(seconds float64)
	logger zerolog.Logger

	state   State
	start   Point
	current Point

	active models.Ref
	handle Handle
	moving []models.Ref

	targetLane  int
	targetKnown bool
	newLaneDrop bool

	selection     []models.Ref
	pendingSelect bool
}

// NewMachine creates a machine over the given board at 100% zoom.
func NewMachine(board Board) *Machine {
	return &Machine{
		board:  board,
		scale:  timescale.New(),
		logger: logging.Component("gesture"),
	}
}

// SetGeometry installs the latest layout snapshot. The host calls this on
// every layout or zoom change.
func (m *Machine) SetGeometry(geom Geometry, scale timescale.Scale) {
	m.geom = geom
	m.scale = scale
}

// Geometry returns the layout snapshot currently hit-tested against.
func (m *Machine) Geometry() Geometry { return m.geom }

// OnSeek registers the continuous seek callback used while the playhead is
// dragged. The value passed is frame-quantized seconds.
func (m *Machine) OnSeek(fn func(seconds float64)) { m.seek = fn }

// State returns the current interaction mode.
func (m *Machine) State() State { return m.state }

// Selection returns the current multi-selection.
func (m *Machine) Selection() []models.Ref {
	out := make([]models.Ref, len(m.selection))
	copy(out, m.selection)
	return out
}

// SetSelection replaces the multi-selection, e.g. after the host deletes
// selected clips.
func (m *Machine) SetSelection(sel []models.Ref) {
	m.selection = append([]models.Ref(nil), sel...)
}

// PointerDown begins a gesture. It is ignored unless the machine is idle.
func (m *Machine) PointerDown(p Point, shift bool) {
	if m.state != StateIdle {
		return
	}
	m.start, m.current = p, p

	clip, handle, onClip := m.geom.ClipAt(p)

	switch {
	case onClip && handle != HandleNone:
		m.state = StateResizingClip
		m.active = clip.Ref
		m.handle = handle

	case m.geom.OnPlayhead(p) || m.geom.InHeader(p):
		m.state = StateDraggingPlayhead
		m.emitSeek(p)

	case onClip && shift:
		// Shift-click toggles membership in the multi-selection.
		m.toggleSelection(clip.Ref)
		m.pendingSelect = true

	case onClip && m.inSelection(clip.Ref.ID) && len(m.selection) > 1:
		m.state = StateMovingSelection
		m.active = clip.Ref
		m.moving = m.refreshRefs(m.selection)
		m.targetLane = clip.Ref.Lane
		m.targetKnown = true

	case onClip:
		m.state = StateDraggingClip
		m.active = clip.Ref
		m.moving = []models.Ref{clip.Ref}
		m.selection = []models.Ref{clip.Ref}
		m.pendingSelect = true
		m.targetLane = clip.Ref.Lane
		m.targetKnown = true

	case shift && len(m.selection) > 0:
		m.state = StateAdjustingSelection

	default:
		m.state = StateSelectingRange
	}
}

// PointerMove advances the active gesture. No clip data changes; previews
// are recomputed from the stored delta on demand.
func (m *Machine) PointerMove(p Point) {
	if m.state == StateIdle {
		return
	}
	m.current = p

	switch m.state {
	case StateDraggingClip, StateMovingSelection:
		m.detectTargetLane(p)
	case StateDraggingPlayhead:
		m.emitSeek(p)
	case StateSelectingRange:
		m.selection = m.bandSelection(nil)
	case StateAdjustingSelection:
		m.selection = m.bandSelection(m.selection)
	}
}

// PointerUp finishes the gesture and returns what the host should commit.
// All transient state is reset unconditionally, success or not.
func (m *Machine) PointerUp(p Point) Outcome {
	defer m.reset()
	m.current = p

	switch m.state {
	case StateDraggingClip, StateMovingSelection:
		return m.finishDrag(p)

	case StateResizingClip:
		return m.finishResize()

	case StateDraggingPlayhead:
		return Outcome{Kind: OutcomeSeek, Seek: m.seekTime(p)}

	case StateSelectingRange, StateAdjustingSelection:
		return m.finishSelect()

	default:
		if m.pendingSelect {
			return Outcome{Kind: OutcomeSelect, Selection: m.Selection()}
		}
		return Outcome{Kind: OutcomeNone}
	}
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.active = models.Ref{}
	m.handle = HandleNone
	m.moving = nil
	m.targetKnown = false
	m.newLaneDrop = false
	m.pendingSelect = false
}

// --- drag ---

// detectTargetLane resolves which lane of the active clip's kind the
// pointer is over: exact rectangle hit first, then the new-lane dropzone,
// then nearest lane by vertical center distance.
func (m *Machine) detectTargetLane(p Point) {
	kind := m.active.Kind
	if lane, ok := m.geom.LaneAt(kind, p); ok {
		m.targetLane = lane
		m.targetKnown = true
		m.newLaneDrop = false
		return
	}
	if m.geom.InDropzone(kind, p) && lanes.CanAdd(m.board.Lanes(kind)) {
		m.newLaneDrop = true
		m.targetKnown = false
		return
	}
	if lane, ok := m.geom.NearestLane(kind, p.Y); ok {
		m.targetLane = lane
		m.targetKnown = true
		m.newLaneDrop = false
	}
}

func (m *Machine) finishDrag(p Point) Outcome {
	// Re-detect once more at the release coordinates; if the pointer left
	// the timeline entirely, fall back to the clip's originating lane.
	m.detectTargetLane(p)

	deltaBase := m.scale.ToBase(m.current.X - m.start.X)
	moves := m.resolveMoves(deltaBase)

	if len(moves) == 0 {
		if m.pendingSelect {
			// A zero-delta click on a clip: no data changes, but the
			// selection did.
			return Outcome{Kind: OutcomeSelect, Selection: m.Selection()}
		}
		return Outcome{Kind: OutcomeNone}
	}

	m.logger.Debug().
		Str("clip_id", m.active.ID).
		Str("kind", string(m.active.Kind)).
		Float64("delta_base", deltaBase).
		Int("moves", len(moves)).
		Msg("drag finished")

	return Outcome{Kind: OutcomeMove, Moves: moves, Selection: m.Selection()}
}

// resolveMoves computes the final placement for every moving clip. Each
// clip resolves against its own target lane; all share the same delta.
func (m *Machine) resolveMoves(deltaBase float64) []Move {
	deltaY := m.current.Y - m.start.Y
	movingIDs := make(map[string]bool, len(m.moving))
	for _, r := range m.moving {
		movingIDs[r.ID] = true
	}

	moves := make([]Move, 0, len(m.moving))
	for _, clip := range m.moving {
		lane, newLane := m.laneFor(clip, deltaY)
		requested := clip.Position + deltaBase
		if requested < 0 {
			requested = 0
		}

		var placement magnet.Placement
		if newLane {
			// A freshly created lane is empty by definition.
			placement = magnet.Placement{Decision: magnet.DecisionPlace, Position: requested}
		} else {
			placement = magnet.Resolve(m.laneClips(clip.Kind, lane, movingIDs), requested, clip.Duration)
		}

		// Dropping a clip exactly where it started is a no-op.
		if !newLane && lane == clip.Lane && placement.Decision != magnet.DecisionReplace &&
			placement.Position == clip.Position {
			continue
		}

		moves = append(moves, Move{
			Clip:      clip,
			Lane:      lane,
			NewLane:   newLane,
			Placement: placement,
		})
	}
	return moves
}

// laneFor resolves the target lane for one moving clip. The actively
// grabbed clip follows the pointer; other selected clips follow the shared
// vertical delta from their own lane, within their own kind.
func (m *Machine) laneFor(clip models.Ref, deltaY float64) (lane int, newLane bool) {
	if clip.ID == m.active.ID {
		if m.newLaneDrop {
			return 0, true
		}
		if m.targetKnown {
			return m.targetLane, false
		}
		return clip.Lane, false
	}

	origin, ok := m.laneRect(clip.Kind, clip.Lane)
	if !ok {
		return clip.Lane, false
	}
	probe := Point{X: origin.Bounds.X + 1, Y: origin.Bounds.CenterY() + deltaY}
	if found, ok := m.geom.LaneAt(clip.Kind, probe); ok {
		return found, false
	}
	if found, ok := m.geom.NearestLane(clip.Kind, probe.Y); ok {
		return found, false
	}
	return clip.Lane, false
}

func (m *Machine) laneRect(kind models.Kind, index int) (LaneRect, bool) {
	for _, lane := range m.geom.Lanes {
		if lane.Kind == kind && lane.Index == index {
			return lane, true
		}
	}
	return LaneRect{}, false
}

// laneClips returns the refs in a lane, excluding the moving set.
func (m *Machine) laneClips(kind models.Kind, lane int, exclude map[string]bool) []models.Ref {
	all := m.board.Clips(kind)
	out := make([]models.Ref, 0, len(all))
	for _, r := range all {
		if exclude[r.ID] || r.LaneIndex() != lane {
			continue
		}
		out = append(out, r)
	}
	return out
}

// --- resize ---

// resolveResize computes the clamped span for the current resize drag. The
// edge opposite the grabbed handle stays anchored.
func (m *Machine) resolveResize() (position, duration float64) {
	deltaBase := m.scale.ToBase(m.current.X - m.start.X)
	orig := m.active

	switch m.handle {
	case HandleRight:
		position = orig.Position
		duration = orig.Duration + deltaBase
		if orig.Limit > 0 {
			if max := orig.Limit - orig.Start; duration > max {
				duration = max
			}
		}
		if duration < models.MinClipWidth {
			duration = models.MinClipWidth
		}

	case HandleLeft:
		shift := deltaBase
		// Trimmed media cannot reveal content before the source start.
		if orig.Kind != models.KindText && shift < -orig.Start {
			shift = -orig.Start
		}
		if shift < -orig.Position {
			shift = -orig.Position
		}
		if max := orig.Duration - models.MinClipWidth; shift > max {
			shift = max
		}
		position = orig.Position + shift
		duration = orig.Duration - shift

	default:
		return orig.Position, orig.Duration
	}

	exclude := map[string]bool{orig.ID: true}
	return magnet.ClampResize(m.laneClips(orig.Kind, orig.LaneIndex(), exclude), orig, position, duration)
}

func (m *Machine) finishResize() Outcome {
	position, duration := m.resolveResize()
	if position == m.active.Position && duration == m.active.Duration {
		return Outcome{Kind: OutcomeNone}
	}

	m.logger.Debug().
		Str("clip_id", m.active.ID).
		Str("handle", m.handle.String()).
		Float64("position", position).
		Float64("duration", duration).
		Msg("resize finished")

	return Outcome{
		Kind: OutcomeResize,
		Resize: &Resize{
			Clip:     m.active,
			Handle:   m.handle,
			Position: position,
			Duration: duration,
		},
	}
}

// --- playhead ---

func (m *Machine) seekTime(p Point) float64 {
	return m.scale.SeekAt(p.X - m.geom.Bounds.X)
}

func (m *Machine) emitSeek(p Point) {
	if m.seek != nil {
		m.seek(m.seekTime(p))
	}
}

// --- selection ---

// bandSelection intersects the rubber-band rectangle with every rendered
// clip box, regardless of kind. An undersized band selects nothing.
func (m *Machine) bandSelection(base []models.Ref) []models.Ref {
	band := normalized(m.start, m.current)
	if band.W < minSelectWidth || band.H < minSelectHeight {
		return base
	}

	seen := make(map[string]bool, len(base))
	out := append([]models.Ref(nil), base...)
	for _, r := range out {
		seen[r.ID] = true
	}
	for _, clip := range m.geom.Clips {
		if seen[clip.Ref.ID] || !band.Intersects(clip.Bounds) {
			continue
		}
		out = append(out, clip.Ref)
		seen[clip.Ref.ID] = true
	}
	return out
}

func (m *Machine) finishSelect() Outcome {
	band := normalized(m.start, m.current)
	if band.W < minSelectWidth || band.H < minSelectHeight {
		if m.state == StateSelectingRange {
			// A bare click on the background deselects.
			m.selection = nil
		}
		return Outcome{Kind: OutcomeSelect, Selection: m.Selection()}
	}
	return Outcome{Kind: OutcomeSelect, Selection: m.Selection()}
}

func (m *Machine) inSelection(id string) bool {
	for _, r := range m.selection {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (m *Machine) toggleSelection(clip models.Ref) {
	for i, r := range m.selection {
		if r.ID == clip.ID {
			m.selection = append(m.selection[:i], m.selection[i+1:]...)
			return
		}
	}
	m.selection = append(m.selection, clip)
}

// refreshRefs re-reads the given clips from the board so a multi-clip drag
// starts from committed data, not a stale selection snapshot.
func (m *Machine) refreshRefs(sel []models.Ref) []models.Ref {
	out := make([]models.Ref, 0, len(sel))
	for _, stale := range sel {
		refs := m.board.Clips(stale.Kind)
		if fresh, ok := models.FindRef(refs, stale.ID); ok {
			out = append(out, fresh)
		}
	}
	return out
}
