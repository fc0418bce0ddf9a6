// Package lanes implements the lane-arrangement rules shared by all three
// clip kinds: which lane a clip sits in, which lanes are occupied, and when
// lanes may be added or removed. Everything here is a pure query over a
// collection snapshot; the caller owns the lane list itself.
package lanes

import (
	"sort"

	"github.com/tOgg1/trackline/internal/models"
)

// MaxLanes re-exports the per-kind lane cap for callers that only import
// this package.
const MaxLanes = models.MaxLanes

// ClipsIn returns the clips sitting in the given lane. Out-of-range lane
// indices on clips are clamped on read, so a corrupted record still lands
// in a valid lane instead of disappearing.
func ClipsIn[T models.Placed](clips []T, lane int) []T {
	out := make([]T, 0, len(clips))
	for _, c := range clips {
		if c.LaneIndex() == lane {
			out = append(out, c)
		}
	}
	return out
}

// Used returns the sorted unique lane indices that hold at least one clip.
func Used[T models.Placed](clips []T) []int {
	seen := make(map[int]bool, MaxLanes)
	for _, c := range clips {
		seen[c.LaneIndex()] = true
	}
	out := make([]int, 0, len(seen))
	for lane := range seen {
		out = append(out, lane)
	}
	sort.Ints(out)
	return out
}

// CanAdd reports whether another lane may be created given the current
// lane list.
func CanAdd(current []int) bool {
	return len(current) < MaxLanes
}

// CanRemove reports whether the given lane may be deleted. Lane 0 is
// protected, non-empty lanes are protected, and the last remaining lane is
// protected.
func CanRemove[T models.Placed](lane int, clips []T, current []int) bool {
	if lane == 0 {
		return false
	}
	if len(current) <= 1 {
		return false
	}
	return len(ClipsIn(clips, lane)) == 0
}

// NextAvailable returns the smallest lane index in [0, MaxLanes) absent
// from the current lane list. The second return is false when every index
// is taken.
func NextAvailable(current []int) (int, bool) {
	taken := make(map[int]bool, len(current))
	for _, lane := range current {
		taken[lane] = true
	}
	for lane := 0; lane < MaxLanes; lane++ {
		if !taken[lane] {
			return lane, true
		}
	}
	return 0, false
}
