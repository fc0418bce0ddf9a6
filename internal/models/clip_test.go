package models

import "testing"

func TestClampLane(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{99, 2},
	}

	for _, tt := range tests {
		if got := ClampLane(tt.in); got != tt.want {
			t.Errorf("ClampLane(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSoundClipFadeClamping(t *testing.T) {
	tests := []struct {
		name            string
		duration        float64
		fadeIn, fadeOut float64
	}{
		{name: "fades fit", duration: 400, fadeIn: 100, fadeOut: 100},
		{name: "fade capped at half duration", duration: 200, fadeIn: 150},
		{name: "fade capped at ten seconds", duration: 2000, fadeIn: 900},
		{name: "envelope overlap shrinks larger ramp", duration: 210, fadeIn: 105, fadeOut: 100},
		{name: "negative fades zeroed", duration: 400, fadeIn: -10, fadeOut: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := SoundClip{ID: "s1", Duration: tt.duration}
			c.SetFades(tt.fadeIn, tt.fadeOut)

			if c.FadeIn+c.FadeOut+FadeMinGap > c.Duration+1e-9 {
				t.Fatalf("envelope invariant violated: in=%g out=%g dur=%g", c.FadeIn, c.FadeOut, c.Duration)
			}
			if c.FadeIn > c.Duration*0.5 || c.FadeOut > c.Duration*0.5 {
				t.Fatalf("fade exceeds half duration: in=%g out=%g dur=%g", c.FadeIn, c.FadeOut, c.Duration)
			}
			if c.FadeIn > MaxFadeWidth || c.FadeOut > MaxFadeWidth {
				t.Fatalf("fade exceeds max width: in=%g out=%g", c.FadeIn, c.FadeOut)
			}
		})
	}
}

func TestSoundClipFadeCappedAtHalf(t *testing.T) {
	c := SoundClip{ID: "s1", Duration: 300}
	c.SetFades(250, 0)
	if c.FadeIn != 150 {
		t.Errorf("FadeIn = %g, want 150 (half of 300)", c.FadeIn)
	}
}

func TestVideoClipValidate(t *testing.T) {
	tests := []struct {
		name    string
		clip    VideoClip
		wantErr bool
	}{
		{
			name: "valid",
			clip: VideoClip{ID: "v1", Position: 0, Duration: 200, Lane: 0},
		},
		{
			name:    "negative position",
			clip:    VideoClip{ID: "v1", Position: -1, Duration: 200},
			wantErr: true,
		},
		{
			name:    "below minimum width",
			clip:    VideoClip{ID: "v1", Duration: 79},
			wantErr: true,
		},
		{
			name:    "lane out of range",
			clip:    VideoClip{ID: "v1", Duration: 200, Lane: 3},
			wantErr: true,
		},
		{
			name:    "duration beyond source",
			clip:    VideoClip{ID: "v1", Duration: 500, MaxDuration: 400},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.clip.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitVideo(t *testing.T) {
	c := VideoClip{ID: "v1", Position: 100, Duration: 400, StartTime: 40, MaxDuration: 800}

	left, right, ok := c.SplitVideo(300, "v2")
	if !ok {
		t.Fatal("expected split to succeed")
	}
	if left.ID != "v1" || right.ID != "v2" {
		t.Errorf("ids = %s/%s, want v1/v2", left.ID, right.ID)
	}
	if left.Duration+right.Duration != c.Duration {
		t.Errorf("durations %g+%g do not sum to %g", left.Duration, right.Duration, c.Duration)
	}
	if right.Position != 300 {
		t.Errorf("right.Position = %g, want 300", right.Position)
	}
	if right.StartTime != 240 {
		t.Errorf("right.StartTime = %g, want 240 (trim shifted by left width)", right.StartTime)
	}
}

func TestSplitRefusedAtEdgesAndThinHalves(t *testing.T) {
	c := VideoClip{ID: "v1", Position: 0, Duration: 200}

	// Edges, out-of-range points, and cuts producing a half thinner than
	// MinClipWidth are all refused.
	for _, at := range []float64{0, 200, -10, 250, 50, 150.5} {
		if _, _, ok := c.SplitVideo(at, "v2"); ok {
			t.Errorf("split at %g should be refused", at)
		}
	}

	if _, _, ok := c.SplitVideo(100, "v2"); !ok {
		t.Error("split at midpoint should succeed")
	}
}

func TestSplitSoundFadesAndTrim(t *testing.T) {
	c := SoundClip{ID: "s1", Position: 0, Duration: 400, FadeIn: 50, FadeOut: 60, StartTime: 20}

	left, right, ok := c.SplitSound(200, "s2")
	if !ok {
		t.Fatal("expected split to succeed")
	}
	if left.FadeOut != 0 {
		t.Errorf("left.FadeOut = %g, want 0", left.FadeOut)
	}
	if right.FadeIn != 0 {
		t.Errorf("right.FadeIn = %g, want 0", right.FadeIn)
	}
	if right.StartTime != 220 {
		t.Errorf("right.StartTime = %g, want 220", right.StartTime)
	}
}

func TestApplyPlacementCopiesCollection(t *testing.T) {
	in := []VideoClip{
		{ID: "a", Position: 0, Duration: 200},
		{ID: "b", Position: 300, Duration: 200},
	}

	out := ApplyPlacement(in, "b", 600, 1)

	if in[1].Position != 300 || in[1].Lane != 0 {
		t.Error("input collection was mutated")
	}
	if out[1].Position != 600 || out[1].Lane != 1 {
		t.Errorf("moved clip = %+v, want position 600 lane 1", out[1])
	}
}

func TestRemove(t *testing.T) {
	in := []TextClip{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out := Remove(in, "b")
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("Remove left %v", out)
	}
	if len(Remove(in, "missing")) != 3 {
		t.Error("removing unknown id changed collection size")
	}
}
