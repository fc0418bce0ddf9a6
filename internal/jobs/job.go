// Package jobs manages export render jobs: validation against the timeline
// hard limit, the job lifecycle, and a polling watcher that drives queued
// jobs through a processor.
package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/tOgg1/trackline/internal/timescale"
)

// State is a render job's lifecycle phase.
type State string

const (
	StateQueued   State = "queued"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateFailed   State = "failed"
)

// Terminal reports whether the job will never change state again.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Job is one export render request.
type Job struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	State     State     `json:"state"`
	Progress  float64   `json:"progress"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrTimelineTooLong rejects renders of timelines past the 3-minute cap.
var ErrTimelineTooLong = errors.New("timeline exceeds the 3-minute render limit")

// ValidateRenderable checks the content end (in base pixels) against the
// hard limit before a render job may be queued.
func ValidateRenderable(contentEnd float64) error {
	if contentEnd > timescale.HardLimitBase {
		return fmt.Errorf("content ends at %.1fs: %w",
			timescale.BaseToSeconds(contentEnd), ErrTimelineTooLong)
	}
	return nil
}
