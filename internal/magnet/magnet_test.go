package magnet

import (
	"testing"

	"github.com/tOgg1/trackline/internal/models"
)

func ref(id string, position, duration float64) models.Ref {
	return models.Ref{ID: id, Kind: models.KindVideo, Position: position, Duration: duration}
}

func TestResolveEmptyLaneAcceptsRequest(t *testing.T) {
	p := Resolve(nil, 150, 200)
	if p.Decision != DecisionPlace || p.Position != 150 {
		t.Errorf("empty lane: %+v, want place at 150", p)
	}
}

func TestResolveClampsNegativePosition(t *testing.T) {
	p := Resolve(nil, -30, 200)
	if p.Position != 0 {
		t.Errorf("position = %g, want 0", p.Position)
	}
}

func TestResolveNoOverlapPlacesAsIs(t *testing.T) {
	others := []models.Ref{ref("x", 0, 200)}
	p := Resolve(others, 300, 200)
	if p.Decision != DecisionPlace || p.Position != 300 {
		t.Errorf("disjoint request: %+v, want place at 300", p)
	}
}

func TestResolveBelowThresholdSnapsToNearestEdge(t *testing.T) {
	// Lane has X at [0,200). Requested 150 with duration 200 overlaps 50px,
	// ratio 0.25 < 0.5, so the clip snaps to abut X's right edge at 200.
	others := []models.Ref{ref("x", 0, 200)}
	p := Resolve(others, 150, 200)
	if p.Decision != DecisionSnap {
		t.Fatalf("decision = %v, want snap", p.Decision)
	}
	if p.Position != 200 {
		t.Errorf("snap position = %g, want 200", p.Position)
	}
	if p.ReplaceID != "" {
		t.Errorf("snap must not carry a replace target, got %q", p.ReplaceID)
	}
}

func TestResolveAtThresholdReplaces(t *testing.T) {
	// Overlap 150/200 = 0.75 >= 0.5 classifies as replace against X,
	// keeping the requested position unchanged.
	others := []models.Ref{ref("x", 0, 200)}
	p := Resolve(others, 50, 200)
	if p.Decision != DecisionReplace {
		t.Fatalf("decision = %v, want replace", p.Decision)
	}
	if p.ReplaceID != "x" {
		t.Errorf("replace target = %q, want x", p.ReplaceID)
	}
	if p.Position != 50 {
		t.Errorf("replace position = %g, want requested 50", p.Position)
	}
}

func TestResolveReplaceTargetsHighestOverlap(t *testing.T) {
	others := []models.Ref{
		ref("a", 0, 200),
		ref("b", 200, 400),
	}
	// Request [150, 450): 50px over a (0.16), 250px over b (0.83).
	p := Resolve(others, 150, 300)
	if p.Decision != DecisionReplace || p.ReplaceID != "b" {
		t.Errorf("got %+v, want replace of b", p)
	}
}

func TestResolveSnapPrefersSmallerDisplacement(t *testing.T) {
	// X at [400,600). Request [330,430): overlap 30/100=0.3 -> snap.
	// Left abutment is 300 (displacement 30), right abutment 600
	// (displacement 270). Left wins.
	others := []models.Ref{ref("x", 400, 200)}
	p := Resolve(others, 330, 100)
	if p.Decision != DecisionSnap || p.Position != 300 {
		t.Errorf("got %+v, want snap at 300", p)
	}
}

func TestResolveSnapSkipsOccupiedCandidates(t *testing.T) {
	// Two clips with a gap too small for the moving clip: [0,200) and
	// [250,450). A 100px clip requested at 180 cannot sit at 200 (the gap
	// is 50px); it must land at 450.
	others := []models.Ref{ref("a", 0, 200), ref("b", 250, 200)}
	p := Resolve(others, 180, 100)
	if p.Decision != DecisionSnap {
		t.Fatalf("decision = %v, want snap", p.Decision)
	}
	if p.Position != 450 {
		t.Errorf("snap position = %g, want 450", p.Position)
	}
}

func TestResolveSnapClampsAtZero(t *testing.T) {
	// X at [100,300). Request [10,110): overlap 10/100 = 0.1 -> snap.
	// The left abutment at 0 wins over the right abutment at 300.
	others := []models.Ref{ref("x", 100, 200)}
	p := Resolve(others, 10, 100)
	if p.Decision != DecisionSnap || p.Position != 0 {
		t.Errorf("got %+v, want snap at 0 (left abutment clamped into range)", p)
	}
}

func TestClampResizeAgainstNeighbors(t *testing.T) {
	neighbors := []models.Ref{
		ref("left", 0, 100),
		ref("right", 500, 100),
	}
	original := ref("mid", 200, 200)

	// Extending the right edge past the right neighbor clamps at 500.
	pos, dur := ClampResize(neighbors, original, 200, 400)
	if pos != 200 || dur != 300 {
		t.Errorf("right clamp = (%g,%g), want (200,300)", pos, dur)
	}

	// Extending the left edge past the left neighbor clamps at 100.
	pos, dur = ClampResize(neighbors, original, 50, 350)
	if pos != 100 || dur != 300 {
		t.Errorf("left clamp = (%g,%g), want (100,300)", pos, dur)
	}
}
