// Package tui hosts the timeline editor in the terminal. It owns the
// cell-to-pixel mapping: the gesture engine works in screen pixels, the
// terminal in character cells, and everything crossing that boundary goes
// through the layout in this package.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/trackline/internal/events"
	"github.com/tOgg1/trackline/internal/gesture"
	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/store"
	"github.com/tOgg1/trackline/internal/timeline"
)

const (
	// cellPx is how many screen pixels one terminal column represents. At
	// 100% zoom a second of timeline (40 px) spans ten columns.
	cellPx = 4.0

	// rowPx is how many screen pixels one terminal row represents.
	rowPx = 12.0

	headerRows     = 1
	labelRows      = 1
	laneRows       = 2
	dropzoneRows   = 1
	statusRows     = 2
	defaultRefresh = 500 * time.Millisecond
	statusTTL      = 5 * time.Second
)

// Config controls editor TUI behavior.
type Config struct {
	Theme            string
	RefreshInterval  time.Duration
	AutosaveInterval time.Duration
	ShowWaveforms    bool
	CompactMode      bool
}

// Run opens the editor on a project and blocks until the user quits.
func Run(project *models.Project, projects *store.ProjectRepository, cfg Config) error {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefresh
	}

	m := newModel(project, projects, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := program.Run()
	return err
}

type uiMode int

const (
	modeEdit uiMode = iota
	modeConfirm
	modeHelp
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusErr
)

// confirmGate is the engine's replace Confirmer. The editor answers it
// before handing the release point to the engine, so ConfirmReplace never
// blocks inside the update loop.
type confirmGate struct {
	answer bool
}

func (g *confirmGate) ConfirmReplace(context.Context, models.Ref, string) (bool, error) {
	return g.answer, nil
}

type confirmState struct {
	release gesture.Point
	moving  string
	target  string
}

type tickMsg struct{}

type savedMsg struct {
	err error
}

type model struct {
	engine   *timeline.Engine
	gate     *confirmGate
	project  *models.Project
	projects *store.ProjectRepository
	cfg      Config
	palette  palette

	width  int
	height int

	// scrollX is the horizontal scroll offset in screen pixels.
	scrollX float64

	focusKind models.Kind
	confirm   *confirmState
	mode      uiMode
	dirty     bool
	lastSave  time.Time

	statusText    string
	statusKind    statusKind
	statusExpires time.Time
	quitting      bool
}

func newModel(project *models.Project, projects *store.ProjectRepository, cfg Config) *model {
	gate := &confirmGate{answer: true}
	engine := timeline.NewEngine(timeline.Options{
		Video:      timeline.NewMemoryRepository(project.Video...),
		Text:       timeline.NewMemoryRepository(project.Text...),
		Sound:      timeline.NewMemoryRepository(project.Sound...),
		VideoLanes: timeline.NewMemoryLanes(project.VideoLanes...),
		TextLanes:  timeline.NewMemoryLanes(project.TextLanes...),
		SoundLanes: timeline.NewMemoryLanes(project.SoundLanes...),
		Confirmer:  gate,
	})

	m := &model{
		engine:    engine,
		gate:      gate,
		project:   project,
		projects:  projects,
		cfg:       cfg,
		palette:   resolvePalette(cfg.Theme),
		focusKind: models.KindVideo,
		mode:      modeEdit,
	}

	// Any committed mutation marks the project dirty for autosave.
	_ = engine.Events().Subscribe("tui-dirty", events.Filter{}, func(events.Event) {
		m.dirty = true
	})

	return m
}

func (m *model) Init() tea.Cmd {
	m.refreshGeometry()
	return m.tickCmd()
}

func (m *model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.RefreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshGeometry()
		return m, nil

	case tickMsg:
		if !m.statusExpires.IsZero() && time.Now().After(m.statusExpires) {
			m.statusText = ""
		}
		var cmds []tea.Cmd
		if m.shouldAutosave() {
			cmds = append(cmds, m.saveCmd())
		}
		cmds = append(cmds, m.tickCmd())
		return m, tea.Batch(cmds...)

	case savedMsg:
		if msg.err != nil {
			m.setStatus(statusErr, fmt.Sprintf("save failed: %v", msg.err))
		} else {
			m.dirty = false
			m.lastSave = time.Now()
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// shouldAutosave reports whether a periodic save is due.
func (m *model) shouldAutosave() bool {
	if m.cfg.AutosaveInterval <= 0 || !m.dirty || m.projects == nil {
		return false
	}
	return time.Since(m.lastSave) >= m.cfg.AutosaveInterval
}

func (m *model) saveCmd() tea.Cmd {
	m.syncProject()
	project := m.project
	repo := m.projects
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return savedMsg{err: repo.Save(ctx, project)}
	}
}

// syncProject copies engine state back into the project record.
func (m *model) syncProject() {
	snap := m.engine.Snapshot()
	m.project.Video = snap.Video
	m.project.Text = snap.Text
	m.project.Sound = snap.Sound
	m.project.VideoLanes = m.engine.Lanes(models.KindVideo)
	m.project.TextLanes = m.engine.Lanes(models.KindText)
	m.project.SoundLanes = m.engine.Lanes(models.KindSound)
}

// --- mouse ---

func (m *model) pointAt(x, y int) gesture.Point {
	return gesture.Point{
		X: float64(x)*cellPx + m.scrollX,
		Y: float64(y) * rowPx,
	}
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeEdit {
		return m, nil
	}

	p := m.pointAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.engine.PointerDown(p, msg.Shift)
		case tea.MouseButtonWheelUp:
			m.scrollBy(-4 * cellPx)
		case tea.MouseButtonWheelDown:
			m.scrollBy(4 * cellPx)
		}
		return m, nil

	case tea.MouseActionMotion:
		m.engine.PointerMove(p)
		return m, nil

	case tea.MouseActionRelease:
		if replace := m.pendingReplace(); replace != nil {
			// Hold the commit until the user answers the dialog.
			replace.release = p
			m.confirm = replace
			m.mode = modeConfirm
			return m, nil
		}
		m.releaseAt(p, true)
		return m, nil
	}

	return m, nil
}

// pendingReplace returns confirm state when releasing now would replace a
// clip.
func (m *model) pendingReplace() *confirmState {
	for _, ghost := range m.engine.Machine().Previews() {
		if ghost.Replace {
			return &confirmState{moving: ghost.Clip.ID, target: ghost.ReplaceID}
		}
	}
	return nil
}

// releaseAt finishes the gesture, answering any replace confirmation with
// accept.
func (m *model) releaseAt(p gesture.Point, accept bool) {
	m.gate.answer = accept
	if err := m.engine.PointerUp(context.Background(), p); err != nil {
		m.setStatus(statusErr, err.Error())
	}
	m.refreshGeometry()
}

func (m *model) scrollBy(deltaPx float64) {
	m.scrollX += deltaPx
	if m.scrollX < 0 {
		m.scrollX = 0
	}
	if max := m.engine.Scale().ToScreen(m.engine.TotalLength()); m.scrollX > max {
		m.scrollX = max
	}
	m.refreshGeometry()
}

// --- keys ---

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirm {
		return m.handleConfirmKey(msg)
	}
	if m.mode == modeHelp {
		m.mode = modeEdit
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.dirty && m.projects != nil {
			return m, tea.Sequence(m.saveCmd(), tea.Quit)
		}
		return m, tea.Quit

	case "?":
		m.mode = modeHelp

	case "+", "=":
		m.engine.ZoomIn()
		m.refreshGeometry()
		m.setStatus(statusInfo, fmt.Sprintf("zoom %d%%", m.engine.Scale().Percent()))

	case "-":
		m.engine.ZoomOut()
		m.refreshGeometry()
		m.setStatus(statusInfo, fmt.Sprintf("zoom %d%%", m.engine.Scale().Percent()))

	case " ":
		m.engine.PlayPause()

	case "left":
		m.engine.Seek(m.engine.Playhead() - 1.0/30.0)
		m.refreshGeometry()

	case "right":
		m.engine.Seek(m.engine.Playhead() + 1.0/30.0)
		m.refreshGeometry()

	case "shift+left":
		m.engine.Seek(m.engine.Playhead() - 1)
		m.refreshGeometry()

	case "shift+right":
		m.engine.Seek(m.engine.Playhead() + 1)
		m.refreshGeometry()

	case "u":
		if m.engine.Undo() {
			m.refreshGeometry()
			m.setStatus(statusInfo, "undo")
		}

	case "r":
		if m.engine.Redo() {
			m.refreshGeometry()
			m.setStatus(statusInfo, "redo")
		}

	case "x", "delete", "backspace":
		if n := m.engine.DeleteSelected(); n > 0 {
			m.refreshGeometry()
			m.setStatus(statusOK, fmt.Sprintf("deleted %d clip(s)", n))
		}

	case "c":
		m.duplicateSelected()

	case "s":
		m.splitSelected()

	case "1":
		m.focusKind = models.KindVideo
		m.setStatus(statusInfo, "video track focused")
	case "2":
		m.focusKind = models.KindText
		m.setStatus(statusInfo, "text track focused")
	case "3":
		m.focusKind = models.KindSound
		m.setStatus(statusInfo, "sound track focused")

	case "L":
		if index, err := m.engine.AddLane(m.focusKind); err != nil {
			m.setStatus(statusErr, err.Error())
		} else {
			m.refreshGeometry()
			m.setStatus(statusOK, fmt.Sprintf("added %s lane %d", m.focusKind, index))
		}

	case "X":
		m.removeLastLane()

	case "S":
		if m.projects != nil {
			return m, m.saveCmd()
		}
	}

	return m, nil
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := m.confirm
	m.confirm = nil
	m.mode = modeEdit
	if confirm == nil {
		return m, nil
	}

	switch msg.String() {
	case "y", "Y", "enter":
		m.releaseAt(confirm.release, true)
		m.setStatus(statusOK, "clip replaced")
	default:
		m.releaseAt(confirm.release, false)
	}
	return m, nil
}

func (m *model) duplicateSelected() {
	sel := m.engine.Machine().Selection()
	if len(sel) != 1 {
		m.setStatus(statusInfo, "select a single clip to duplicate")
		return
	}
	if _, err := m.engine.Duplicate(sel[0].Kind, sel[0].ID); err != nil {
		m.setStatus(statusErr, err.Error())
		return
	}
	m.refreshGeometry()
	m.setStatus(statusOK, "clip duplicated")
}

func (m *model) splitSelected() {
	sel := m.engine.Machine().Selection()
	if len(sel) != 1 {
		m.setStatus(statusInfo, "select a single clip to split")
		return
	}
	clip := sel[0]
	if !m.engine.CanSplit(clip.Kind, clip.ID) {
		m.setStatus(statusInfo, "playhead is not inside the clip")
		return
	}
	if _, err := m.engine.SplitAtPlayhead(clip.Kind, clip.ID); err != nil {
		m.setStatus(statusErr, err.Error())
		return
	}
	m.refreshGeometry()
	m.setStatus(statusOK, "clip split")
}

func (m *model) removeLastLane() {
	lanes := m.engine.Lanes(m.focusKind)
	if len(lanes) == 0 {
		return
	}
	last := lanes[len(lanes)-1]
	if err := m.engine.RemoveLane(m.focusKind, last); err != nil {
		m.setStatus(statusErr, err.Error())
		return
	}
	m.refreshGeometry()
	m.setStatus(statusOK, fmt.Sprintf("removed %s lane %d", m.focusKind, last))
}

func (m *model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.statusText = text
	m.statusExpires = time.Now().Add(statusTTL)
}
