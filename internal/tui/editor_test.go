package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/trackline/internal/models"
)

func testProject(t *testing.T) *models.Project {
	t.Helper()
	p := models.NewProject("p1", "test")
	p.Video = []models.VideoClip{
		{ID: "a", Position: 0, Duration: 200, Lane: 0},
		{ID: "b", Position: 220, Duration: 200, Lane: 0},
	}
	return p
}

func testModel(t *testing.T) *model {
	t.Helper()
	m := newModel(testProject(t), nil, Config{RefreshInterval: defaultRefresh})
	m.width = 120
	m.height = 40
	m.refreshGeometry()
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg(tea.Key{Type: tea.KeyEnter})
	default:
		return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg(tea.MouseEvent{X: x, Y: y, Action: action, Button: button})
}

func TestLayoutRowsStackKindsWithDropzones(t *testing.T) {
	m := testModel(t)

	rows := m.layoutRows()
	require.Len(t, rows, 3) // one lane per kind

	// Ruler row, then per kind a label row before the lane rows.
	require.Equal(t, models.KindVideo, rows[0].kind)
	require.Equal(t, headerRows+labelRows, rows[0].topRow)

	// Text starts below video's lane rows plus its dropzone row.
	require.Equal(t, models.KindText, rows[1].kind)
	require.Equal(t, rows[0].topRow+laneRows+dropzoneRows+labelRows, rows[1].topRow)

	require.Equal(t, models.KindSound, rows[2].kind)
	require.Equal(t, rows[1].topRow+laneRows+dropzoneRows+labelRows, rows[2].topRow)
}

func TestGeometryMapsClipsToScreen(t *testing.T) {
	m := testModel(t)

	geom := m.engine.Machine().Geometry()
	require.Equal(t, float64(headerRows)*rowPx, geom.HeaderHeight)
	require.Len(t, geom.Lanes, 3)
	require.Len(t, geom.Clips, 2)

	// At 100% zoom screen pixels equal base pixels.
	require.Equal(t, 0.0, geom.Clips[0].Bounds.X)
	require.Equal(t, 200.0, geom.Clips[0].Bounds.W)
	require.Equal(t, 220.0, geom.Clips[1].Bounds.X)

	// Clips sit inside their lane's rows.
	laneY := float64(headerRows+labelRows) * rowPx
	require.Equal(t, laneY, geom.Clips[0].Bounds.Y)
	require.Equal(t, float64(laneRows)*rowPx, geom.Clips[0].Bounds.H)
}

func TestPointAtAppliesCellMappingAndScroll(t *testing.T) {
	m := testModel(t)

	p := m.pointAt(10, 3)
	require.Equal(t, 10*cellPx, p.X)
	require.Equal(t, 3*rowPx, p.Y)

	m.scrollX = 80
	p = m.pointAt(10, 3)
	require.Equal(t, 10*cellPx+80, p.X)
}

func TestZoomKeysRescaleGeometry(t *testing.T) {
	m := testModel(t)

	_, _ = m.Update(keyMsg("+"))
	require.Equal(t, 110, m.engine.Scale().Percent())

	geom := m.engine.Machine().Geometry()
	require.InDelta(t, 220.0*1.1, geom.Clips[1].Bounds.X, 1e-9)

	_, _ = m.Update(keyMsg("-"))
	require.Equal(t, 100, m.engine.Scale().Percent())
}

func TestDragWithoutOverlapCommitsOnRelease(t *testing.T) {
	m := testModel(t)
	clipRow := headerRows + labelRows

	// Grab clip b at its center (base 320 = column 80) and pull right by
	// 50 columns (200 base px).
	_, _ = m.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 80, clipRow))
	_, _ = m.Update(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 130, clipRow))
	_, _ = m.Update(mouse(tea.MouseActionRelease, tea.MouseButtonNone, 130, clipRow))

	require.Equal(t, modeEdit, m.mode)
	clips := m.engine.Clips(models.KindVideo)
	require.Equal(t, 420.0, clips[1].Position)
}

func TestReplaceAsksBeforeCommitting(t *testing.T) {
	m := testModel(t)
	clipRow := headerRows + labelRows

	// Drag a (center base 100 = column 25) by 68 columns: requested
	// position 272 covers b by 148/200, past the replace threshold.
	drag := func() {
		_, _ = m.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 25, clipRow))
		_, _ = m.Update(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 93, clipRow))
		_, _ = m.Update(mouse(tea.MouseActionRelease, tea.MouseButtonNone, 93, clipRow))
	}

	drag()
	require.Equal(t, modeConfirm, m.mode)
	require.NotNil(t, m.confirm)
	require.Equal(t, "a", m.confirm.moving)
	require.Equal(t, "b", m.confirm.target)

	// Declining leaves both clips untouched.
	_, _ = m.Update(keyMsg("n"))
	require.Equal(t, modeEdit, m.mode)
	clips := m.engine.Clips(models.KindVideo)
	require.Len(t, clips, 2)
	require.Equal(t, 0.0, clips[0].Position)

	// Accepting removes the covered clip and commits the move.
	drag()
	require.Equal(t, modeConfirm, m.mode)
	_, _ = m.Update(keyMsg("y"))

	clips = m.engine.Clips(models.KindVideo)
	require.Len(t, clips, 1)
	require.Equal(t, "a", clips[0].ID)
	require.Equal(t, 272.0, clips[0].Position)
}

func TestScrollClampsToContent(t *testing.T) {
	m := testModel(t)

	m.scrollBy(-100)
	require.Equal(t, 0.0, m.scrollX)

	m.scrollBy(1e9)
	max := m.engine.Scale().ToScreen(m.engine.TotalLength())
	require.Equal(t, max, m.scrollX)
}

func TestTrackFocusAndLaneKeys(t *testing.T) {
	m := testModel(t)

	_, _ = m.Update(keyMsg("2"))
	require.Equal(t, models.KindText, m.focusKind)

	_, _ = m.Update(keyMsg("L"))
	require.Equal(t, []int{0, 1}, m.engine.Lanes(models.KindText))

	_, _ = m.Update(keyMsg("X"))
	require.Equal(t, []int{0}, m.engine.Lanes(models.KindText))

	// Lane 0 is protected; removal reports an error in the status line.
	_, _ = m.Update(keyMsg("X"))
	require.Equal(t, []int{0}, m.engine.Lanes(models.KindText))
	require.Equal(t, statusErr, m.statusKind)
}

func TestHelpOverlayTogglesOnAnyKey(t *testing.T) {
	m := testModel(t)

	_, _ = m.Update(keyMsg("?"))
	require.Equal(t, modeHelp, m.mode)
	require.Contains(t, m.View(), "undo/redo")

	_, _ = m.Update(keyMsg("j"))
	require.Equal(t, modeEdit, m.mode)
}

func TestViewRendersRulerClipsAndStatus(t *testing.T) {
	m := testModel(t)

	out := m.View()
	require.Contains(t, out, "0:00")
	require.Contains(t, out, "video (1/3 lanes)")
	require.Contains(t, out, "sound (1/3 lanes)")
	require.Contains(t, out, "zoom 100%")
	require.Contains(t, out, "a") // clip label
}

func TestMutationsMarkProjectDirty(t *testing.T) {
	m := testModel(t)
	require.False(t, m.dirty)

	clipRow := headerRows + labelRows
	_, _ = m.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 80, clipRow))
	_, _ = m.Update(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 130, clipRow))
	_, _ = m.Update(mouse(tea.MouseActionRelease, tea.MouseButtonNone, 130, clipRow))

	require.True(t, m.dirty)

	m.syncProject()
	require.Equal(t, 420.0, m.project.Video[1].Position)
}
