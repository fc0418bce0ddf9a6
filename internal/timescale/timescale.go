// Package timescale converts between timeline base units and on-screen
// pixels under a zoom level, and owns the time-domain constants: the base
// rate of 40 px per second, the 180-second hard limit, and the 1/30-second
// playhead frame grid.
package timescale

import "math"

const (
	// BasePixelsPerSecond is the canonical rate: 40 base-px equal one
	// second at 100% zoom.
	BasePixelsPerSecond = 40.0

	// ZoomStep is one zoom increment, 10% of the base rate.
	ZoomStep = BasePixelsPerSecond / 10

	// MinPixelsPerSecond is 50% zoom.
	MinPixelsPerSecond = BasePixelsPerSecond / 2

	// MaxPixelsPerSecond is 200% zoom.
	MaxPixelsPerSecond = BasePixelsPerSecond * 2

	// HardLimitSeconds is the fixed timeline cap: 3 minutes.
	HardLimitSeconds = 180.0

	// HardLimitBase is the hard limit expressed in base pixels.
	HardLimitBase = HardLimitSeconds * BasePixelsPerSecond

	// FrameRate is the playhead quantization grid.
	FrameRate = 30.0

	// TailSeconds is the buffer appended after the last clip when the
	// content runs past the hard limit.
	TailSeconds = 10.0
)

// Scale is an immutable zoom setting. The zero value is invalid; use New.
type Scale struct {
	pixelsPerSecond float64
}

// New returns a Scale at 100% zoom.
func New() Scale {
	return Scale{pixelsPerSecond: BasePixelsPerSecond}
}

// At returns a Scale clamped to the supported zoom range.
func At(pixelsPerSecond float64) Scale {
	return Scale{pixelsPerSecond: clampRate(pixelsPerSecond)}
}

func clampRate(rate float64) float64 {
	if rate < MinPixelsPerSecond {
		return MinPixelsPerSecond
	}
	if rate > MaxPixelsPerSecond {
		return MaxPixelsPerSecond
	}
	return rate
}

// PixelsPerSecond returns the current screen rate.
func (s Scale) PixelsPerSecond() float64 { return s.pixelsPerSecond }

// Percent returns the zoom level as a whole percentage of the base rate.
func (s Scale) Percent() int {
	return int(math.Round(s.pixelsPerSecond / BasePixelsPerSecond * 100))
}

// ZoomIn steps the zoom up by 10%, clamped at 200%.
func (s Scale) ZoomIn() Scale {
	return Scale{pixelsPerSecond: clampRate(s.pixelsPerSecond + ZoomStep)}
}

// ZoomOut steps the zoom down by 10%, clamped at 50%.
func (s Scale) ZoomOut() Scale {
	return Scale{pixelsPerSecond: clampRate(s.pixelsPerSecond - ZoomStep)}
}

// ToScreen converts base pixels to on-screen pixels at this zoom.
func (s Scale) ToScreen(base float64) float64 {
	return base * (s.pixelsPerSecond / BasePixelsPerSecond)
}

// ToBase converts on-screen pixels back to base pixels. Pointer deltas are
// captured in screen pixels and must go through this before touching any
// stored position or duration.
func (s Scale) ToBase(screen float64) float64 {
	return screen * (BasePixelsPerSecond / s.pixelsPerSecond)
}

// HardLimitX returns the on-screen position of the 3-minute marker.
func (s Scale) HardLimitX() float64 {
	return s.ToScreen(HardLimitBase)
}

// SecondsToBase converts seconds to base pixels.
func SecondsToBase(seconds float64) float64 {
	return seconds * BasePixelsPerSecond
}

// BaseToSeconds converts base pixels to seconds.
func BaseToSeconds(base float64) float64 {
	return base / BasePixelsPerSecond
}

// ClampSeek clamps a seek target to [0, HardLimitSeconds].
func ClampSeek(seconds float64) float64 {
	if seconds < 0 {
		return 0
	}
	if seconds > HardLimitSeconds {
		return HardLimitSeconds
	}
	return seconds
}

// QuantizeToFrame snaps a time in seconds to the nearest 1/30-second frame
// boundary. Only the playhead drag uses this; clip geometry stays on the
// raw pixel grid.
func QuantizeToFrame(seconds float64) float64 {
	return math.Round(seconds*FrameRate) / FrameRate
}

// SeekAt converts an on-screen X coordinate into a clamped, frame-quantized
// seek time in seconds.
func (s Scale) SeekAt(screenX float64) float64 {
	return QuantizeToFrame(ClampSeek(BaseToSeconds(s.ToBase(screenX))))
}

// TotalLength returns the rendered timeline length in base pixels:
// the hard limit, or the content end rounded up to a whole second plus a
// ten-second tail, whichever is larger.
func TotalLength(contentEnd float64) float64 {
	withTail := math.Ceil(BaseToSeconds(contentEnd)+TailSeconds) * BasePixelsPerSecond
	if withTail < HardLimitBase {
		return HardLimitBase
	}
	return withTail
}

// Mark is one ruler label position.
type Mark struct {
	Seconds float64
	ScreenX float64
}

// RulerMarks returns label positions covering [0, totalBase]. The label
// interval widens as the timeline zooms out so labels never crowd.
func (s Scale) RulerMarks(totalBase float64) []Mark {
	step := 5.0
	if s.pixelsPerSecond < BasePixelsPerSecond {
		step = 10.0
	}
	totalSeconds := BaseToSeconds(totalBase)
	marks := make([]Mark, 0, int(totalSeconds/step)+1)
	for sec := 0.0; sec <= totalSeconds; sec += step {
		marks = append(marks, Mark{Seconds: sec, ScreenX: s.ToScreen(SecondsToBase(sec))})
	}
	return marks
}
