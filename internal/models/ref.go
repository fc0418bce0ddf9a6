package models

// Ref is a kind-tagged, read-only view of a clip. The gesture engine works
// exclusively on Refs captured at pointer-down; concrete records are only
// touched when a gesture commits.
type Ref struct {
	ID       string
	Kind     Kind
	Position float64
	Duration float64
	Lane     int

	// Start is the trim offset into the source asset (video/sound only).
	// A Start of zero means the clip already shows the source's first frame,
	// so a left-handle resize cannot extend it further left.
	Start float64

	// Limit is the source asset's total length in base pixels, zero when
	// the clip has no trim constraint (text clips, generated media).
	Limit float64
}

func (r Ref) ClipID() string           { return r.ID }
func (r Ref) Span() (float64, float64) { return r.Position, r.Duration }
func (r Ref) LaneIndex() int           { return ClampLane(r.Lane) }

// End returns the exclusive end of the clip's interval.
func (r Ref) End() float64 { return r.Position + r.Duration }

// Refs converts a concrete collection into engine views.
func Refs[T interface{ Ref() Ref }](clips []T) []Ref {
	out := make([]Ref, len(clips))
	for i, c := range clips {
		out[i] = c.Ref()
	}
	return out
}

// FindRef returns the Ref with the given id, if present.
func FindRef(refs []Ref, id string) (Ref, bool) {
	for _, r := range refs {
		if r.ID == id {
			return r, true
		}
	}
	return Ref{}, false
}
