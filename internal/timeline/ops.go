package timeline

import (
	"errors"
	"fmt"

	"github.com/tOgg1/trackline/internal/events"
	"github.com/tOgg1/trackline/internal/history"
	"github.com/tOgg1/trackline/internal/lanes"
	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/timescale"
)

var (
	ErrClipNotFound  = errors.New("clip not found")
	ErrNothingToCut  = errors.New("playhead is not inside the clip")
	ErrLaneCap       = errors.New("lane cap reached")
	ErrLaneNotEmpty  = errors.New("lane still holds clips")
	ErrLaneProtected = errors.New("lane 0 cannot be removed")
)

// AddVideo places a new video clip into a lane, pushed right into the first
// free slot so it never overlaps an occupant.
func (e *Engine) AddVideo(c models.VideoClip, lane int) error {
	c.Lane = lane
	if err := c.Validate(); err != nil {
		return fmt.Errorf("add video clip: %w", err)
	}
	pre := e.Snapshot()
	c.Position = e.insertPosition(models.KindVideo, lane, c.Position, c.Duration)
	e.video.ReplaceAll(append(e.video.All(), c))
	e.commitAdd(pre, models.KindVideo, c.ID, lane)
	return nil
}

// AddText places a new text clip into a lane.
func (e *Engine) AddText(c models.TextClip, lane int) error {
	c.Lane = lane
	if err := c.Validate(); err != nil {
		return fmt.Errorf("add text clip: %w", err)
	}
	pre := e.Snapshot()
	c.Position = e.insertPosition(models.KindText, lane, c.Position, c.Duration)
	e.text.ReplaceAll(append(e.text.All(), c))
	e.commitAdd(pre, models.KindText, c.ID, lane)
	return nil
}

// AddSound places a new sound clip into a lane.
func (e *Engine) AddSound(c models.SoundClip, lane int) error {
	c.Lane = lane
	if err := c.Validate(); err != nil {
		return fmt.Errorf("add sound clip: %w", err)
	}
	pre := e.Snapshot()
	c.Position = e.insertPosition(models.KindSound, lane, c.Position, c.Duration)
	e.sound.ReplaceAll(append(e.sound.All(), c))
	e.commitAdd(pre, models.KindSound, c.ID, lane)
	return nil
}

func (e *Engine) insertPosition(kind models.Kind, lane int, position, duration float64) float64 {
	laneMates := make([]models.Ref, 0)
	for _, r := range e.Clips(kind) {
		if r.LaneIndex() == lane {
			laneMates = append(laneMates, r)
		}
	}
	return freeSlotAfter(laneMates, position, duration)
}

func (e *Engine) commitAdd(pre history.Snapshot, kind models.Kind, id string, lane int) {
	e.hist.Push(pre)
	e.bus.Publish(events.Event{Type: events.TypeClipAdded, Kind: kind, ClipID: id, Lane: lane})
}

// DeleteSelected removes every clip in the current multi-selection, or the
// single focused clip when no band selection exists. It returns the number
// of clips removed.
func (e *Engine) DeleteSelected() int {
	selection := e.machine.Selection()
	if len(selection) == 0 {
		return 0
	}

	pre := e.Snapshot()
	removed := 0
	for _, ref := range selection {
		if e.deleteOne(ref.Kind, ref.ID) {
			removed++
		}
	}
	if removed == 0 {
		return 0
	}

	e.machine.SetSelection(nil)
	e.hist.Push(pre)
	e.bus.Publish(events.Event{Type: events.TypeSelectionChanged})
	return removed
}

// DeleteClip removes a single clip by id.
func (e *Engine) DeleteClip(kind models.Kind, id string) error {
	pre := e.Snapshot()
	if !e.deleteOne(kind, id) {
		return fmt.Errorf("delete %s clip %s: %w", kind, id, ErrClipNotFound)
	}
	e.hist.Push(pre)
	return nil
}

func (e *Engine) deleteOne(kind models.Kind, id string) bool {
	if _, ok := models.FindRef(e.Clips(kind), id); !ok {
		return false
	}
	e.removeClip(kind, id)
	e.bus.Publish(events.Event{Type: events.TypeClipDeleted, Kind: kind, ClipID: id})
	return true
}

// Duplicate copies a clip and drops the copy in the first free gap after
// the original, never replacing an occupant. The new clip's id is returned.
func (e *Engine) Duplicate(kind models.Kind, id string) (string, error) {
	ref, ok := models.FindRef(e.Clips(kind), id)
	if !ok {
		return "", fmt.Errorf("duplicate %s clip %s: %w", kind, id, ErrClipNotFound)
	}

	laneMates := make([]models.Ref, 0)
	for _, r := range e.Clips(kind) {
		if r.LaneIndex() == ref.LaneIndex() {
			laneMates = append(laneMates, r)
		}
	}
	position := freeSlotAfter(laneMates, ref.End(), ref.Duration)

	pre := e.Snapshot()
	newID := e.ids.NewID()

	switch kind {
	case models.KindVideo:
		clips := e.video.All()
		c, ok := models.Find(clips, id)
		if !ok {
			return "", fmt.Errorf("duplicate video clip %s: %w", id, ErrClipNotFound)
		}
		dup := c.DuplicateVideo(newID)
		dup.Position = position
		e.video.ReplaceAll(append(clips, dup))
	case models.KindText:
		clips := e.text.All()
		c, ok := models.Find(clips, id)
		if !ok {
			return "", fmt.Errorf("duplicate text clip %s: %w", id, ErrClipNotFound)
		}
		dup := c.DuplicateText(newID)
		dup.Position = position
		e.text.ReplaceAll(append(clips, dup))
	case models.KindSound:
		clips := e.sound.All()
		c, ok := models.Find(clips, id)
		if !ok {
			return "", fmt.Errorf("duplicate sound clip %s: %w", id, ErrClipNotFound)
		}
		dup := c.DuplicateSound(newID)
		dup.Position = position
		e.sound.ReplaceAll(append(clips, dup))
	default:
		return "", fmt.Errorf("duplicate: unknown kind %q", kind)
	}

	e.hist.Push(pre)
	e.bus.Publish(events.Event{Type: events.TypeClipDuplicated, Kind: kind, ClipID: newID, Lane: ref.LaneIndex()})
	e.logger.Debug().Str("clip", id).Str("copy", newID).Msg("clip duplicated")
	return newID, nil
}

// freeSlotAfter walks right from the requested position until a span of the
// given duration overlaps nothing in the lane.
func freeSlotAfter(occupied []models.Ref, position, duration float64) float64 {
	for {
		moved := false
		for _, r := range occupied {
			if position < r.End() && position+duration > r.Position {
				position = r.End()
				moved = true
			}
		}
		if !moved {
			return position
		}
	}
}

// CanSplit reports whether the playhead falls strictly inside the clip and
// both halves would stay at least minimum width.
func (e *Engine) CanSplit(kind models.Kind, id string) bool {
	ref, ok := models.FindRef(e.Clips(kind), id)
	if !ok {
		return false
	}
	cut := timescale.SecondsToBase(e.playhead)
	left := cut - ref.Position
	right := ref.End() - cut
	return left >= models.MinClipWidth && right >= models.MinClipWidth
}

// SplitAtPlayhead cuts a clip at the playhead into two clips. The left half
// keeps the original id, the right half gets a fresh one, which is
// returned.
func (e *Engine) SplitAtPlayhead(kind models.Kind, id string) (string, error) {
	cut := timescale.SecondsToBase(e.playhead)
	pre := e.Snapshot()
	newID := e.ids.NewID()

	switch kind {
	case models.KindVideo:
		clips := e.video.All()
		c, ok := models.Find(clips, id)
		if !ok {
			return "", fmt.Errorf("split video clip %s: %w", id, ErrClipNotFound)
		}
		left, right, ok := c.SplitVideo(cut, newID)
		if !ok {
			return "", fmt.Errorf("split video clip %s: %w", id, ErrNothingToCut)
		}
		clips = models.Remove(clips, id)
		e.video.ReplaceAll(append(clips, left, right))
	case models.KindText:
		clips := e.text.All()
		c, ok := models.Find(clips, id)
		if !ok {
			return "", fmt.Errorf("split text clip %s: %w", id, ErrClipNotFound)
		}
		left, right, ok := c.SplitText(cut, newID)
		if !ok {
			return "", fmt.Errorf("split text clip %s: %w", id, ErrNothingToCut)
		}
		clips = models.Remove(clips, id)
		e.text.ReplaceAll(append(clips, left, right))
	case models.KindSound:
		clips := e.sound.All()
		c, ok := models.Find(clips, id)
		if !ok {
			return "", fmt.Errorf("split sound clip %s: %w", id, ErrClipNotFound)
		}
		left, right, ok := c.SplitSound(cut, newID)
		if !ok {
			return "", fmt.Errorf("split sound clip %s: %w", id, ErrNothingToCut)
		}
		clips = models.Remove(clips, id)
		e.sound.ReplaceAll(append(clips, left, right))
	default:
		return "", fmt.Errorf("split: unknown kind %q", kind)
	}

	e.hist.Push(pre)
	e.bus.Publish(events.Event{Type: events.TypeClipSplit, Kind: kind, ClipID: id})
	return newID, nil
}

// AddLane appends a lane for the kind, respecting the per-kind cap. It
// returns the new lane's index.
func (e *Engine) AddLane(kind models.Kind) (int, error) {
	ctrl := e.laneController(kind)
	current := ctrl.Lanes()
	if !lanes.CanAdd(current) {
		return 0, fmt.Errorf("add %s lane: %w", kind, ErrLaneCap)
	}
	index, ok := lanes.NextAvailable(current)
	if !ok {
		return 0, fmt.Errorf("add %s lane: %w", kind, ErrLaneCap)
	}
	ctrl.Add(index)
	e.bus.Publish(events.Event{Type: events.TypeLaneAdded, Kind: kind, Lane: index})
	return index, nil
}

// RemoveLane deletes an empty, non-zero lane for the kind.
func (e *Engine) RemoveLane(kind models.Kind, index int) error {
	if index == 0 {
		return fmt.Errorf("remove %s lane %d: %w", kind, index, ErrLaneProtected)
	}
	refs := e.Clips(kind)
	if !lanes.CanRemove(index, refs, e.laneController(kind).Lanes()) {
		return fmt.Errorf("remove %s lane %d: %w", kind, index, ErrLaneNotEmpty)
	}
	e.laneController(kind).Remove(index)
	e.bus.Publish(events.Event{Type: events.TypeLaneRemoved, Kind: kind, Lane: index})
	return nil
}
