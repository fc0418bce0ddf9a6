// Package timeline composes the clip model, lane rules, magnetic
// positioning, and the gesture machine into one orchestrator. The host
// supplies a small set of ports; the engine never mutates collections in
// place, it always hands the ports a fully rebuilt replacement.
package timeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/tOgg1/trackline/internal/history"
	"github.com/tOgg1/trackline/internal/models"
)

// Repository is the whole-collection mutation point for one clip kind.
// ReplaceAll is the only write; persistence and change detection are the
// host's business.
type Repository[T models.Mutable[T]] interface {
	All() []T
	ReplaceAll(clips []T)
}

// LaneController owns the lane list for one clip kind. The engine checks
// the lane-arrangement rules before calling Add or Remove.
type LaneController interface {
	Lanes() []int
	Add(index int)
	Remove(index int)
}

// Confirmer gates replace-on-drop commits. Implementations may block on a
// modal dialog or resolve asynchronously; declining leaves every collection
// untouched.
type Confirmer interface {
	ConfirmReplace(ctx context.Context, moving models.Ref, replacedID string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, moving models.Ref, replacedID string) (bool, error)

func (f ConfirmerFunc) ConfirmReplace(ctx context.Context, moving models.Ref, replacedID string) (bool, error) {
	return f(ctx, moving, replacedID)
}

// Transport is the host's playback surface.
type Transport interface {
	Seek(seconds float64)
	PlayPause()
}

// History is the undo/redo delegation port, satisfied by history.Stack.
type History interface {
	Push(snap history.Snapshot)
	Undo(current history.Snapshot) (history.Snapshot, bool)
	Redo(current history.Snapshot) (history.Snapshot, bool)
	CanUndo() bool
	CanRedo() bool
}

// IDSource generates ids for duplicated and split clips. The engine never
// invents ids on its own.
type IDSource interface {
	NewID() string
}

// UUIDSource is the default IDSource.
type UUIDSource struct{}

func (UUIDSource) NewID() string { return uuid.New().String() }
