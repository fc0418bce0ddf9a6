// Package models defines the clip records shared by the timeline engine.
//
// Positions and durations are expressed in base pixels: 40 base-px equal one
// second of timeline at 100% zoom. All engine math happens in base pixels;
// conversion to on-screen pixels is the timescale package's job.
package models

// Kind identifies which of the three parallel clip collections a clip
// belongs to. The collections are never merged.
type Kind string

const (
	KindVideo Kind = "video"
	KindText  Kind = "text"
	KindSound Kind = "sound"
)

// Kinds lists all clip kinds in lane-stack order (video on top).
var Kinds = []Kind{KindVideo, KindText, KindSound}

const (
	// MaxLanes is the per-kind lane cap. Lane indices are always in [0, MaxLanes).
	MaxLanes = 3

	// MinClipWidth is the smallest committed clip duration, in base pixels.
	MinClipWidth = 80.0

	// FadeMinGap is the minimum base-px gap kept between a sound clip's
	// fade-in and fade-out ramps.
	FadeMinGap = 10.0

	// MaxFadeWidth caps a single fade ramp at 10 seconds of timeline.
	MaxFadeWidth = 400.0
)

// Placed is the capability shared by all three clip types. Lane arrangement
// and overlap/magnetic logic are written generically over it.
type Placed interface {
	ClipID() string
	Span() (position, duration float64)
	LaneIndex() int
}

// Mutable extends Placed with copy-on-write placement updates, so collection
// operations can be written once for all three concrete types.
type Mutable[T any] interface {
	Placed
	WithSpan(position, duration float64) T
	WithLane(lane int) T
}

// ClampLane forces a lane index into the valid [0, MaxLanes) range.
// Out-of-range indices are corrected on read, never raised as errors.
func ClampLane(lane int) int {
	if lane < 0 {
		return 0
	}
	if lane >= MaxLanes {
		return MaxLanes - 1
	}
	return lane
}

// VideoClip is a video segment placed on the timeline. StartTime and
// MaxDuration carry trim constraints against the source asset: StartTime is
// the offset into the source, MaxDuration the source's total length in base
// pixels (zero means unconstrained).
type VideoClip struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Position    float64 `json:"position"`
	Duration    float64 `json:"duration"`
	Lane        int     `json:"laneIndex"`
	StartTime   float64 `json:"startTime,omitempty"`
	MaxDuration float64 `json:"maxDuration,omitempty"`
}

func (c VideoClip) ClipID() string                { return c.ID }
func (c VideoClip) Span() (float64, float64)      { return c.Position, c.Duration }
func (c VideoClip) LaneIndex() int                { return ClampLane(c.Lane) }
func (c VideoClip) WithLane(lane int) VideoClip   { c.Lane = ClampLane(lane); return c }
func (c VideoClip) WithSpan(p, d float64) VideoClip {
	c.Position = p
	c.Duration = d
	return c
}

// Ref returns the kind-tagged lightweight view used by the gesture engine.
func (c VideoClip) Ref() Ref {
	return Ref{
		ID:       c.ID,
		Kind:     KindVideo,
		Position: c.Position,
		Duration: c.Duration,
		Lane:     c.LaneIndex(),
		Start:    c.StartTime,
		Limit:    c.MaxDuration,
	}
}

// TextClip is a styled text overlay placed on the timeline.
type TextClip struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Position float64   `json:"position"`
	Duration float64   `json:"duration"`
	Lane     int       `json:"laneIndex"`
	Style    TextStyle `json:"style"`
	Effect   Effect    `json:"effect,omitempty"`
}

func (c TextClip) ClipID() string              { return c.ID }
func (c TextClip) Span() (float64, float64)    { return c.Position, c.Duration }
func (c TextClip) LaneIndex() int              { return ClampLane(c.Lane) }
func (c TextClip) WithLane(lane int) TextClip  { c.Lane = ClampLane(lane); return c }
func (c TextClip) WithSpan(p, d float64) TextClip {
	c.Position = p
	c.Duration = d
	return c
}

func (c TextClip) Ref() Ref {
	return Ref{
		ID:       c.ID,
		Kind:     KindText,
		Position: c.Position,
		Duration: c.Duration,
		Lane:     c.LaneIndex(),
	}
}

// SoundClip is an audio segment with volume and fade envelopes. Waveform
// holds normalized amplitude samples supplied by the host; the engine only
// carries them along.
type SoundClip struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Position  float64   `json:"position"`
	Duration  float64   `json:"duration"`
	Lane      int       `json:"laneIndex"`
	Volume    int       `json:"volume"`
	FadeIn    float64   `json:"fadeInDuration,omitempty"`
	FadeOut   float64   `json:"fadeOutDuration,omitempty"`
	StartTime float64   `json:"startTime,omitempty"`
	Waveform  []float64 `json:"waveformData,omitempty"`
}

func (c SoundClip) ClipID() string               { return c.ID }
func (c SoundClip) Span() (float64, float64)     { return c.Position, c.Duration }
func (c SoundClip) LaneIndex() int               { return ClampLane(c.Lane) }
func (c SoundClip) WithLane(lane int) SoundClip  { c.Lane = ClampLane(lane); return c }
func (c SoundClip) WithSpan(p, d float64) SoundClip {
	c.Position = p
	c.Duration = d
	c.clampFades()
	return c
}

func (c SoundClip) Ref() Ref {
	return Ref{
		ID:       c.ID,
		Kind:     KindSound,
		Position: c.Position,
		Duration: c.Duration,
		Lane:     c.LaneIndex(),
		Start:    c.StartTime,
	}
}

// ClampVolume forces volume into the 0-100 range.
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clampFades re-fits the fade envelopes after a duration change so that
// fadeIn + fadeOut + FadeMinGap never exceeds the clip duration and neither
// fade exceeds half the duration or MaxFadeWidth.
func (c *SoundClip) clampFades() {
	c.FadeIn = clampFade(c.FadeIn, c.Duration)
	c.FadeOut = clampFade(c.FadeOut, c.Duration)
	if over := c.FadeIn + c.FadeOut + FadeMinGap - c.Duration; over > 0 {
		// Shrink the larger ramp first.
		if c.FadeIn >= c.FadeOut {
			c.FadeIn -= over
			if c.FadeIn < 0 {
				c.FadeOut += c.FadeIn
				c.FadeIn = 0
			}
		} else {
			c.FadeOut -= over
			if c.FadeOut < 0 {
				c.FadeIn += c.FadeOut
				c.FadeOut = 0
			}
		}
		if c.FadeOut < 0 {
			c.FadeOut = 0
		}
	}
}

func clampFade(fade, duration float64) float64 {
	if fade < 0 {
		return 0
	}
	if max := duration * 0.5; fade > max {
		fade = max
	}
	if fade > MaxFadeWidth {
		fade = MaxFadeWidth
	}
	return fade
}

// SetFades applies requested fade widths under the envelope constraints.
func (c *SoundClip) SetFades(fadeIn, fadeOut float64) {
	c.FadeIn = fadeIn
	c.FadeOut = fadeOut
	c.clampFades()
}
