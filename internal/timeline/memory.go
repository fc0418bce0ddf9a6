package timeline

import (
	"sort"

	"github.com/tOgg1/trackline/internal/models"
)

// MemoryRepository is the built-in Repository used by the TUI host and
// tests. Reads return copies so callers can never alias engine state.
type MemoryRepository[T models.Mutable[T]] struct {
	clips []T
}

// NewMemoryRepository seeds a repository with the given clips.
func NewMemoryRepository[T models.Mutable[T]](clips ...T) *MemoryRepository[T] {
	return &MemoryRepository[T]{clips: append([]T(nil), clips...)}
}

func (r *MemoryRepository[T]) All() []T {
	return append([]T(nil), r.clips...)
}

func (r *MemoryRepository[T]) ReplaceAll(clips []T) {
	r.clips = append([]T(nil), clips...)
}

// MemoryLanes is the built-in LaneController. Lane 0 always exists.
type MemoryLanes struct {
	lanes []int
}

// NewMemoryLanes starts with the given lane indices, defaulting to {0}.
func NewMemoryLanes(lanes ...int) *MemoryLanes {
	if len(lanes) == 0 {
		lanes = []int{0}
	}
	sorted := append([]int(nil), lanes...)
	sort.Ints(sorted)
	return &MemoryLanes{lanes: sorted}
}

func (l *MemoryLanes) Lanes() []int {
	return append([]int(nil), l.lanes...)
}

func (l *MemoryLanes) Add(index int) {
	for _, existing := range l.lanes {
		if existing == index {
			return
		}
	}
	l.lanes = append(l.lanes, index)
	sort.Ints(l.lanes)
}

func (l *MemoryLanes) Remove(index int) {
	for i, existing := range l.lanes {
		if existing == index {
			l.lanes = append(l.lanes[:i], l.lanes[i+1:]...)
			return
		}
	}
}
