package models

// This file holds the collection-level operations the engine commits with.
// All of them are copy-on-write: the input slice is never mutated.

// ApplyPlacement returns a copy of clips with the identified clip moved to
// the given position and lane. Unknown ids leave the collection unchanged.
func ApplyPlacement[T Mutable[T]](clips []T, id string, position float64, lane int) []T {
	out := make([]T, len(clips))
	for i, c := range clips {
		if c.ClipID() == id {
			_, dur := c.Span()
			c = c.WithSpan(position, dur).WithLane(lane)
		}
		out[i] = c
	}
	return out
}

// ApplySpan returns a copy of clips with the identified clip re-spanned.
func ApplySpan[T Mutable[T]](clips []T, id string, position, duration float64) []T {
	out := make([]T, len(clips))
	for i, c := range clips {
		if c.ClipID() == id {
			c = c.WithSpan(position, duration)
		}
		out[i] = c
	}
	return out
}

// Remove returns a copy of clips without the identified clip.
func Remove[T Placed](clips []T, id string) []T {
	out := make([]T, 0, len(clips))
	for _, c := range clips {
		if c.ClipID() == id {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Find returns the clip with the given id.
func Find[T Placed](clips []T, id string) (T, bool) {
	for _, c := range clips {
		if c.ClipID() == id {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// SplitVideo cuts a video clip at the given base-px point, which must lie
// strictly inside the clip's interval. The left half keeps the original id;
// the right half takes newID and inherits the trim offset so it keeps
// showing the same source content.
func (c VideoClip) SplitVideo(at float64, newID string) (VideoClip, VideoClip, bool) {
	left, right, ok := splitSpan(c.Position, c.Duration, at)
	if !ok {
		return c, VideoClip{}, false
	}
	first := c
	first.Duration = left

	second := c
	second.ID = newID
	second.Position = at
	second.Duration = right
	second.StartTime = c.StartTime + left
	return first, second, true
}

// SplitText cuts a text clip at the given base-px point.
func (c TextClip) SplitText(at float64, newID string) (TextClip, TextClip, bool) {
	left, right, ok := splitSpan(c.Position, c.Duration, at)
	if !ok {
		return c, TextClip{}, false
	}
	first := c
	first.Duration = left

	second := c
	second.ID = newID
	second.Position = at
	second.Duration = right
	return first, second, true
}

// SplitSound cuts a sound clip at the given base-px point. The left half
// keeps the fade-in, the right half the fade-out; both envelopes are
// re-clamped against their new durations.
func (c SoundClip) SplitSound(at float64, newID string) (SoundClip, SoundClip, bool) {
	left, right, ok := splitSpan(c.Position, c.Duration, at)
	if !ok {
		return c, SoundClip{}, false
	}
	first := c
	first.Duration = left
	first.FadeOut = 0
	first.clampFades()

	second := c
	second.ID = newID
	second.Position = at
	second.Duration = right
	second.StartTime = c.StartTime + left
	second.FadeIn = 0
	second.clampFades()
	return first, second, true
}

// splitSpan validates a cut point and returns the two half durations. Both
// halves must satisfy the minimum clip width, otherwise the cut is refused.
func splitSpan(position, duration, at float64) (left, right float64, ok bool) {
	if at <= position || at >= position+duration {
		return 0, 0, false
	}
	left = at - position
	right = duration - left
	if left < MinClipWidth || right < MinClipWidth {
		return 0, 0, false
	}
	return left, right, true
}

// DuplicateVideo copies the clip under a new id. Placement of the copy is
// the caller's job.
func (c VideoClip) DuplicateVideo(newID string) VideoClip {
	c.ID = newID
	return c
}

// DuplicateText copies the clip under a new id.
func (c TextClip) DuplicateText(newID string) TextClip {
	c.ID = newID
	return c
}

// DuplicateSound copies the clip under a new id. The waveform slice is
// shared; samples are immutable host data.
func (c SoundClip) DuplicateSound(newID string) SoundClip {
	c.ID = newID
	return c
}
