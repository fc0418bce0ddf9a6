package gesture

import (
	"github.com/tOgg1/trackline/internal/magnet"
	"github.com/tOgg1/trackline/internal/models"
)

// OutcomeKind classifies what a finished gesture asks the host to commit.
type OutcomeKind int

const (
	// OutcomeNone means the gesture resolved to a no-op; nothing changes.
	OutcomeNone OutcomeKind = iota
	OutcomeMove
	OutcomeResize
	OutcomeSeek
	OutcomeSelect
)

// Move is one clip's resolved landing spot at drop time.
type Move struct {
	Clip models.Ref

	// Lane is the resolved target lane, ignored when NewLane is set: the
	// orchestrator allocates the new lane's index at commit time.
	Lane int

	// NewLane requests creation of a fresh lane for this clip's kind.
	NewLane bool

	Placement magnet.Placement
}

// Resize is a committed span change. Position differs from the original
// only for left-handle resizes; the host shifts trim offsets by the
// position delta.
type Resize struct {
	Clip     models.Ref
	Handle   Handle
	Position float64
	Duration float64
}

// Outcome is what PointerUp hands the orchestrator.
type Outcome struct {
	Kind      OutcomeKind
	Moves     []Move
	Resize    *Resize
	Seek      float64
	Selection []models.Ref
}

// Ghost is one clip's non-committed drag preview: where it would land and
// whether it would replace another clip if released right now.
type Ghost struct {
	Clip      models.Ref
	Lane      int
	NewLane   bool
	Position  float64
	Duration  float64
	Replace   bool
	ReplaceID string
}

// Previews returns the ghost geometry for the gesture in flight. It runs
// the same placement path a release would, so the preview and the commit
// can never disagree. Outside drag/resize states it returns nil.
func (m *Machine) Previews() []Ghost {
	switch m.state {
	case StateDraggingClip, StateMovingSelection:
		deltaBase := m.scale.ToBase(m.current.X - m.start.X)
		moves := m.resolveMoves(deltaBase)
		ghosts := make([]Ghost, 0, len(moves))
		for _, mv := range moves {
			ghosts = append(ghosts, Ghost{
				Clip:      mv.Clip,
				Lane:      mv.Lane,
				NewLane:   mv.NewLane,
				Position:  mv.Placement.Position,
				Duration:  mv.Clip.Duration,
				Replace:   mv.Placement.Decision == magnet.DecisionReplace,
				ReplaceID: mv.Placement.ReplaceID,
			})
		}
		return ghosts

	case StateResizingClip:
		position, duration := m.resolveResize()
		return []Ghost{{
			Clip:     m.active,
			Lane:     m.active.LaneIndex(),
			Position: position,
			Duration: duration,
		}}

	default:
		return nil
	}
}

// SelectionBand returns the live rubber-band rectangle, if one is being
// drawn.
func (m *Machine) SelectionBand() (Rect, bool) {
	if m.state != StateSelectingRange && m.state != StateAdjustingSelection {
		return Rect{}, false
	}
	return normalized(m.start, m.current), true
}
