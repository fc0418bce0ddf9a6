// Package magnet decides where a moved or resized clip lands inside a lane:
// either snapped against the nearest neighbor edge, or classified as a
// replacement of the single clip it overlaps beyond the threshold. The same
// entry point serves the live ghost preview and the final drop, so the
// preview always shows exactly what a release would commit.
package magnet

import (
	"math"
	"sort"

	"github.com/tOgg1/trackline/internal/models"
)

// ReplaceThreshold is the overlap ratio (intersection over the moving
// clip's duration) at or above which a drop replaces the overlapped clip
// instead of snapping beside it.
const ReplaceThreshold = 0.5

// Decision classifies a placement.
type Decision int

const (
	// DecisionPlace accepts the requested position unchanged.
	DecisionPlace Decision = iota

	// DecisionSnap moves the clip to abut the nearest neighbor edge.
	DecisionSnap

	// DecisionReplace drops the clip at the requested position and removes
	// the clip it overlaps.
	DecisionReplace
)

func (d Decision) String() string {
	switch d {
	case DecisionPlace:
		return "place"
	case DecisionSnap:
		return "snap"
	case DecisionReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Placement is the resolved landing spot for a moving clip.
type Placement struct {
	Decision Decision

	// Position is the final base-px position the clip lands at.
	Position float64

	// ReplaceID names the clip removed by a DecisionReplace.
	ReplaceID string

	// Overlap is the highest overlap ratio observed, for previews.
	Overlap float64
}

// overlap returns the intersection length of [aPos, aPos+aDur) and
// [bPos, bPos+bDur).
func overlap(aPos, aDur, bPos, bDur float64) float64 {
	start := math.Max(aPos, bPos)
	end := math.Min(aPos+aDur, bPos+bDur)
	if end <= start {
		return 0
	}
	return end - start
}

// Resolve computes where a clip of the given span lands in a lane whose
// existing clips are passed in others. The moving clip itself must be
// excluded from others by the caller.
func Resolve(others []models.Ref, position, duration float64) Placement {
	if position < 0 {
		position = 0
	}
	if len(others) == 0 {
		return Placement{Decision: DecisionPlace, Position: position}
	}

	maxRatio := 0.0
	var maxClip models.Ref
	anyOverlap := false
	for _, other := range others {
		sect := overlap(position, duration, other.Position, other.Duration)
		if sect <= 0 {
			continue
		}
		anyOverlap = true
		ratio := sect / duration
		if ratio > maxRatio {
			maxRatio = ratio
			maxClip = other
		}
	}

	if maxRatio >= ReplaceThreshold {
		return Placement{
			Decision:  DecisionReplace,
			Position:  position,
			ReplaceID: maxClip.ID,
			Overlap:   maxRatio,
		}
	}

	if !anyOverlap {
		return Placement{Decision: DecisionPlace, Position: position}
	}

	return Placement{
		Decision: DecisionSnap,
		Position: snapPosition(others, position, duration),
		Overlap:  maxRatio,
	}
}

// snapPosition finds the nearest position at which the moving interval fits
// without overlapping any clip in the lane. Candidates are the abutment
// points on both sides of every clip; the one requiring the smallest
// displacement from the requested position wins.
func snapPosition(others []models.Ref, position, duration float64) float64 {
	candidates := make([]float64, 0, len(others)*2)
	for _, other := range others {
		// Abut to the right of this clip.
		candidates = append(candidates, other.End())
		// Abut to the left of this clip.
		if left := other.Position - duration; left >= 0 {
			candidates = append(candidates, left)
		}
	}

	best := math.NaN()
	bestDist := math.Inf(1)
	for _, cand := range candidates {
		if overlapsAny(others, cand, duration) {
			continue
		}
		if dist := math.Abs(cand - position); dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	if !math.IsNaN(best) {
		return best
	}

	// Every gap is too small: fall past the end of the lane.
	end := 0.0
	for _, other := range others {
		if e := other.End(); e > end {
			end = e
		}
	}
	return end
}

func overlapsAny(others []models.Ref, position, duration float64) bool {
	for _, other := range others {
		if overlap(position, duration, other.Position, other.Duration) > 0 {
			return true
		}
	}
	return false
}

// ClampResize limits a proposed span so it cannot cross the neighbors on
// either side of the clip in its lane. Resizes are continuous corrections:
// the span is clamped, never rejected.
func ClampResize(others []models.Ref, original models.Ref, position, duration float64) (float64, float64) {
	// Sort neighbors so the nearest boundaries are easy to find.
	sorted := make([]models.Ref, len(others))
	copy(sorted, others)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	leftBound := 0.0
	rightBound := math.Inf(1)
	for _, other := range sorted {
		if other.End() <= original.Position && other.End() > leftBound {
			leftBound = other.End()
		}
		if other.Position >= original.End() && other.Position < rightBound {
			rightBound = other.Position
		}
	}

	end := position + duration
	if position < leftBound {
		position = leftBound
	}
	if end > rightBound {
		end = rightBound
	}
	duration = end - position
	if duration < models.MinClipWidth {
		duration = models.MinClipWidth
	}
	return position, duration
}
