// Package gesture implements the pointer-driven interaction engine for the
// timeline: clip dragging, edge resizing, playhead scrubbing, and
// rubber-band selection. The machine is headless; instead of querying a
// rendered document it hit-tests against a Geometry snapshot the host
// rebuilds on every layout pass.
package gesture

import (
	"math"

	"github.com/tOgg1/trackline/internal/models"
)

const (
	// PlayheadGrabWidth is how close, in screen pixels, a pointer-down must
	// land to the playhead to start scrubbing it.
	PlayheadGrabWidth = 8.0

	// DropzoneHeight is the band directly below a kind's last lane in which
	// a drop creates a new lane.
	DropzoneHeight = 24.0

	// HandleWidth is the grab width of a clip's resize handles.
	HandleWidth = 6.0

	// Rubber-band rectangles smaller than this in either axis are treated
	// as plain clicks and clear the selection instead of selecting.
	minSelectWidth  = 5.0
	minSelectHeight = 1.0
)

// Point is a position in the timeline's local screen space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in timeline-local screen space.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// normalized returns the rectangle spanned by two corner points.
func normalized(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// LaneRect is one lane's clip-area bounding rectangle.
type LaneRect struct {
	Kind   models.Kind
	Index  int
	Bounds Rect
}

// ClipRect is one rendered clip's bounding rectangle.
type ClipRect struct {
	Ref    models.Ref
	Bounds Rect
}

// Geometry is the host-supplied layout snapshot the machine hit-tests
// against. The host rebuilds it whenever the layout or zoom changes.
type Geometry struct {
	// Bounds is the whole timeline area in local coordinates.
	Bounds Rect

	// HeaderHeight is the ruler band at the top; rubber-band selection
	// cannot start inside it.
	HeaderHeight float64

	// PlayheadX is the playhead's current on-screen position.
	PlayheadX float64

	Lanes []LaneRect
	Clips []ClipRect
}

// Handle identifies a resize grip.
type Handle int

const (
	HandleNone Handle = iota
	HandleLeft
	HandleRight
)

func (h Handle) String() string {
	switch h {
	case HandleLeft:
		return "left"
	case HandleRight:
		return "right"
	default:
		return "none"
	}
}

// ClipAt returns the topmost clip under the pointer and which resize handle,
// if any, the pointer grabbed.
func (g *Geometry) ClipAt(p Point) (ClipRect, Handle, bool) {
	// Later entries render on top.
	for i := len(g.Clips) - 1; i >= 0; i-- {
		c := g.Clips[i]
		if !c.Bounds.Contains(p) {
			continue
		}
		switch {
		case p.X < c.Bounds.X+HandleWidth:
			return c, HandleLeft, true
		case p.X >= c.Bounds.X+c.Bounds.W-HandleWidth:
			return c, HandleRight, true
		default:
			return c, HandleNone, true
		}
	}
	return ClipRect{}, HandleNone, false
}

// LaneAt returns the lane of the given kind whose rectangle contains the
// pointer.
func (g *Geometry) LaneAt(kind models.Kind, p Point) (int, bool) {
	for _, lane := range g.Lanes {
		if lane.Kind == kind && lane.Bounds.Contains(p) {
			return lane.Index, true
		}
	}
	return 0, false
}

// NearestLane returns the lane of the given kind whose vertical center is
// closest to y.
func (g *Geometry) NearestLane(kind models.Kind, y float64) (int, bool) {
	best := -1
	bestDist := math.Inf(1)
	for _, lane := range g.Lanes {
		if lane.Kind != kind {
			continue
		}
		if dist := math.Abs(lane.Bounds.CenterY() - y); dist < bestDist {
			best = lane.Index
			bestDist = dist
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// InDropzone reports whether the pointer sits in the fixed-height band
// directly below the last rendered lane of the given kind.
func (g *Geometry) InDropzone(kind models.Kind, p Point) bool {
	bottom := math.Inf(-1)
	var last LaneRect
	found := false
	for _, lane := range g.Lanes {
		if lane.Kind != kind {
			continue
		}
		if b := lane.Bounds.Y + lane.Bounds.H; b > bottom {
			bottom = b
			last = lane
			found = true
		}
	}
	if !found {
		return false
	}
	band := Rect{X: last.Bounds.X, Y: bottom, W: last.Bounds.W, H: DropzoneHeight}
	return band.Contains(p)
}

// OnPlayhead reports whether the pointer is within grab range of the
// playhead.
func (g *Geometry) OnPlayhead(p Point) bool {
	return g.Bounds.Contains(p) && math.Abs(p.X-g.PlayheadX) <= PlayheadGrabWidth
}

// InHeader reports whether the pointer is inside the ruler band.
func (g *Geometry) InHeader(p Point) bool {
	return p.Y < g.Bounds.Y+g.HeaderHeight
}
