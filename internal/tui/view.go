package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tOgg1/trackline/internal/gesture"
	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/timescale"
)

// palette holds the editor's lipgloss styles. ANSI 256 colors; red and
// green stay reserved for status semantics.
type palette struct {
	ruler    lipgloss.Style
	playhead lipgloss.Style
	label    lipgloss.Style
	focus    lipgloss.Style
	dropzone lipgloss.Style

	clip     map[models.Kind]lipgloss.Style
	selected lipgloss.Style
	ghost    lipgloss.Style
	replace  lipgloss.Style

	statusInfo lipgloss.Style
	statusOK   lipgloss.Style
	statusErr  lipgloss.Style
	dim        lipgloss.Style
}

func resolvePalette(theme string) palette {
	p := palette{
		ruler:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		playhead: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		focus:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		dropzone: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		clip: map[models.Kind]lipgloss.Style{
			models.KindVideo: lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("75")),
			models.KindText:  lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("183")),
			models.KindSound: lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("117")),
		},
		selected:   lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("220")),
		ghost:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("240")),
		replace:    lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("203")),
		statusInfo: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		statusOK:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		statusErr:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}

	if theme == "light" {
		p.ruler = p.ruler.Foreground(lipgloss.Color("240"))
		p.dropzone = p.dropzone.Foreground(lipgloss.Color("250"))
		p.dim = p.dim.Foreground(lipgloss.Color("248"))
	}

	return p
}

// laneRow is one lane's vertical placement in the terminal layout.
type laneRow struct {
	kind   models.Kind
	index  int
	topRow int
}

// layoutRows computes the lane row placement: a ruler on top, then per
// kind a label row, the lane rows, and a dropzone row.
func (m *model) layoutRows() []laneRow {
	var rows []laneRow
	row := headerRows
	for _, kind := range models.Kinds {
		row += labelRows
		for _, index := range m.engine.Lanes(kind) {
			rows = append(rows, laneRow{kind: kind, index: index, topRow: row})
			row += laneRows
		}
		row += dropzoneRows
	}
	return rows
}

// refreshGeometry rebuilds the gesture hit-test snapshot from the current
// layout, scale, and clip collections.
func (m *model) refreshGeometry() {
	scale := m.engine.Scale()
	rows := m.layoutRows()

	totalW := scale.ToScreen(m.engine.TotalLength())
	bottom := headerRows
	if len(rows) > 0 {
		bottom = rows[len(rows)-1].topRow + laneRows + dropzoneRows
	}

	geom := gesture.Geometry{
		Bounds:       gesture.Rect{X: 0, Y: 0, W: totalW, H: float64(bottom) * rowPx},
		HeaderHeight: float64(headerRows) * rowPx,
		PlayheadX:    scale.ToScreen(timescale.SecondsToBase(m.engine.Playhead())),
	}

	laneBounds := make(map[models.Kind]map[int]gesture.Rect, len(models.Kinds))
	for _, lr := range rows {
		bounds := gesture.Rect{
			X: 0,
			Y: float64(lr.topRow) * rowPx,
			W: totalW,
			H: float64(laneRows) * rowPx,
		}
		geom.Lanes = append(geom.Lanes, gesture.LaneRect{Kind: lr.kind, Index: lr.index, Bounds: bounds})
		if laneBounds[lr.kind] == nil {
			laneBounds[lr.kind] = make(map[int]gesture.Rect)
		}
		laneBounds[lr.kind][lr.index] = bounds
	}

	for _, kind := range models.Kinds {
		for _, r := range m.engine.Clips(kind) {
			bounds, ok := laneBounds[kind][r.LaneIndex()]
			if !ok {
				continue
			}
			geom.Clips = append(geom.Clips, gesture.ClipRect{
				Ref: r,
				Bounds: gesture.Rect{
					X: scale.ToScreen(r.Position),
					Y: bounds.Y,
					W: scale.ToScreen(r.Duration),
					H: bounds.H,
				},
			})
		}
	}

	m.engine.SetGeometry(geom)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderRuler())
	b.WriteByte('\n')

	ghosts := m.ghostsByLane()
	selected := m.selectedIDs()

	for _, kind := range models.Kinds {
		b.WriteString(m.renderKindLabel(kind))
		b.WriteByte('\n')
		for _, index := range m.engine.Lanes(kind) {
			line := m.renderLane(kind, index, ghosts, selected)
			for i := 0; i < laneRows; i++ {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		b.WriteString(m.palette.dropzone.Render(strings.Repeat("┄", m.width)))
		b.WriteByte('\n')
	}

	b.WriteString(m.renderStatus())
	return b.String()
}

// pxToCol converts an absolute screen-pixel X into a terminal column.
func (m *model) pxToCol(px float64) int {
	return int((px - m.scrollX) / cellPx)
}

func (m *model) renderRuler() string {
	scale := m.engine.Scale()
	total := m.engine.TotalLength()

	line := make([]rune, m.width)
	for i := range line {
		line[i] = ' '
	}
	for _, mark := range scale.RulerMarks(total) {
		col := m.pxToCol(mark.ScreenX)
		label := fmt.Sprintf("%d:%02d", int(mark.Seconds)/60, int(mark.Seconds)%60)
		for i, r := range label {
			if col+i >= 0 && col+i < m.width {
				line[col+i] = r
			}
		}
	}

	playCol := m.pxToCol(scale.ToScreen(timescale.SecondsToBase(m.engine.Playhead())))
	out := m.palette.ruler.Render(string(line))
	if playCol >= 0 && playCol < m.width {
		// Re-render with the playhead marker baked in.
		line[playCol] = '▼'
		out = m.palette.ruler.Render(string(line[:playCol])) +
			m.palette.playhead.Render(string(line[playCol:playCol+1])) +
			m.palette.ruler.Render(string(line[playCol+1:]))
	}
	return out
}

func (m *model) renderKindLabel(kind models.Kind) string {
	style := m.palette.label
	marker := "  "
	if kind == m.focusKind {
		style = m.palette.focus
		marker = "» "
	}
	lanes := m.engine.Lanes(kind)
	return style.Render(fmt.Sprintf("%s%s (%d/%d lanes)", marker, kind, len(lanes), models.MaxLanes))
}

// segment is one horizontal run of styled cells in a lane line.
type segment struct {
	from, to int // columns, inclusive/exclusive
	label    string
	style    lipgloss.Style
}

func (m *model) renderLane(kind models.Kind, index int, ghosts map[string][]gesture.Ghost, selected map[string]bool) string {
	scale := m.engine.Scale()

	var segs []segment
	for _, r := range m.engine.Clips(kind) {
		if r.LaneIndex() != index {
			continue
		}
		style := m.palette.clip[kind]
		if selected[r.ID] {
			style = m.palette.selected
		}
		segs = append(segs, segment{
			from:  m.pxToCol(scale.ToScreen(r.Position)),
			to:    m.pxToCol(scale.ToScreen(r.End())),
			label: clipLabel(r),
			style: style,
		})
	}

	for _, ghost := range ghosts[laneKey(kind, index)] {
		style := m.palette.ghost
		if ghost.Replace {
			style = m.palette.replace
		}
		segs = append(segs, segment{
			from:  m.pxToCol(scale.ToScreen(ghost.Position)),
			to:    m.pxToCol(scale.ToScreen(ghost.Position + ghost.Duration)),
			label: clipLabel(ghost.Clip),
			style: style,
		})
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].from < segs[j].from })

	var b strings.Builder
	col := 0
	for _, seg := range segs {
		from, to := seg.from, seg.to
		if to <= col || from >= m.width {
			continue
		}
		if from > col {
			b.WriteString(m.palette.dim.Render(strings.Repeat("·", from-col)))
			col = from
		}
		if to > m.width {
			to = m.width
		}
		width := to - col
		if width <= 0 {
			continue
		}
		b.WriteString(seg.style.Render(fitLabel(seg.label, width)))
		col = to
	}
	if col < m.width {
		b.WriteString(m.palette.dim.Render(strings.Repeat("·", m.width-col)))
	}
	return b.String()
}

func clipLabel(r models.Ref) string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

func fitLabel(label string, width int) string {
	if len(label) >= width {
		return label[:width]
	}
	return label + strings.Repeat("█", width-len(label))
}

func laneKey(kind models.Kind, index int) string {
	return fmt.Sprintf("%s/%d", kind, index)
}

// ghostsByLane groups the live drag previews by destination lane. Ghosts
// headed to a brand-new lane are shown in the dropzone's nearest existing
// lane since the lane does not exist yet.
func (m *model) ghostsByLane() map[string][]gesture.Ghost {
	previews := m.engine.Machine().Previews()
	if len(previews) == 0 {
		return nil
	}
	out := make(map[string][]gesture.Ghost, len(previews))
	for _, ghost := range previews {
		lane := ghost.Lane
		if ghost.NewLane {
			lanes := m.engine.Lanes(ghost.Clip.Kind)
			if len(lanes) > 0 {
				lane = lanes[len(lanes)-1]
			}
		}
		key := laneKey(ghost.Clip.Kind, lane)
		out[key] = append(out[key], ghost)
	}
	return out
}

func (m *model) selectedIDs() map[string]bool {
	sel := m.engine.Machine().Selection()
	out := make(map[string]bool, len(sel))
	for _, r := range sel {
		out[r.ID] = true
	}
	return out
}

func (m *model) renderStatus() string {
	if m.mode == modeHelp {
		return m.renderHelp()
	}
	if m.mode == modeConfirm && m.confirm != nil {
		prompt := fmt.Sprintf("Replace clip %s with %s? [y/n]",
			clipLabel(models.Ref{ID: m.confirm.target}), clipLabel(models.Ref{ID: m.confirm.moving}))
		return m.palette.statusErr.Render(prompt)
	}

	playhead := m.engine.Playhead()
	frame := int(playhead*timescale.FrameRate+0.5) % int(timescale.FrameRate)
	left := fmt.Sprintf(" %d:%02d.%02d  zoom %d%%  [%s]",
		int(playhead)/60, int(playhead)%60, frame,
		m.engine.Scale().Percent(), m.focusKind)
	if m.dirty {
		left += "  *"
	}

	line := m.palette.dim.Render(left)
	if m.statusText != "" {
		style := m.palette.statusInfo
		switch m.statusKind {
		case statusOK:
			style = m.palette.statusOK
		case statusErr:
			style = m.palette.statusErr
		}
		line += "  " + style.Render(m.statusText)
	}

	hint := m.palette.dim.Render("  ?: help  q: quit")
	return line + "\n" + hint
}

func (m *model) renderHelp() string {
	lines := []string{
		"mouse      drag clips, resize at edges, drag playhead, band-select",
		"shift      add/remove clips from the selection",
		"+/-        zoom in/out          space    play/pause",
		"left/right step one frame       shift+←→ step one second",
		"u/r        undo/redo            x        delete selection",
		"c          duplicate clip       s        split at playhead",
		"1/2/3      focus video/text/sound track",
		"L/X        add/remove lane on the focused track",
		"S          save now             q        quit",
	}
	return m.palette.statusInfo.Render(strings.Join(lines, "\n"))
}
