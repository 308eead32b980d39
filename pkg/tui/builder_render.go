package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/botflow/pkg/editor"
	"github.com/dshills/goterm"
)

// clipped drops every cell outside r.
type clipped struct {
	Screen
	r Rect
}

func (c clipped) SetCell(x, y int, cell goterm.Cell) {
	if c.r.Contains(x, y) {
		c.Screen.SetCell(x, y, cell)
	}
}

func (c clipped) DrawText(x, y int, text string, fg, bg goterm.Color, style goterm.Style) {
	i := 0
	for _, ch := range text {
		c.SetCell(x+i, y, goterm.NewCell(ch, fg, bg, style))
		i++
	}
}

// Render implements View.
func (v *BuilderView) Render(screen Screen) error {
	v.width, v.height = screen.Size()
	v.syncBounds()
	th := v.theme

	layout := v.canvas.Layout(v.state)
	canvas := clipped{Screen: screen, r: v.canvasRect()}
	for _, c := range layout.Curves {
		v.drawCurve(canvas, c)
	}
	for _, p := range layout.Cards {
		v.drawCard(canvas, p)
	}

	v.drawTopbar(screen)
	if r := v.sidebarRect(); r.Width > 0 {
		v.drawSidebar(screen, r)
	}
	if v.state.PanelOpen && v.state.Selected != nil {
		v.drawPanel(screen)
	}
	if v.focus == focusPalette {
		v.drawPalette(screen)
	}
	if v.menu != nil {
		v.drawMenu(screen)
	}

	help := builderHelp
	if v.connectFrom != "" {
		help = "Click the node to connect to, esc cancels"
	}
	v.status.render(screen, v.height-1, v.width, th, help)
	return nil
}

func (v *BuilderView) drawTopbar(screen Screen) {
	th := v.theme
	fill(screen, Rect{X: 0, Y: 0, Width: v.width, Height: topbarRows}, ' ', th.Fg, th.Bg)

	items := topbarItems(v.width)
	for _, it := range items {
		drawText(screen, it.x, 0, len([]rune(it.label)), it.label, th.Accent, th.Bg, goterm.StyleBold)
	}

	back := items[0]
	name := v.templateName
	if name == "" {
		name = "Template " + v.templateID
	}
	nameX := back.x + len([]rune(back.label)) + 3
	drawText(screen, nameX, 0, max(items[1].x-nameX-1, 0), name, th.Fg, th.Bg, goterm.StyleBold)

	// Zoom level sits between [-] and [+].
	drawText(screen, items[1].x+4, 0, 4, fmt.Sprintf("%3d%%", v.viewport.Zoom()), th.Fg, th.Bg, goterm.StyleNone)
}

// cardCells returns the terminal rectangle of a card at the current zoom.
func (v *BuilderView) cardCells(b editor.Rect) Rect {
	x, y := v.toCell(b.Origin())
	f := float64(v.viewport.Zoom()) / 100
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(int(b.Width*f/cellWidth), 6),
		Height: max(int(b.Height*f/cellHeight), 2),
	}
}

func (v *BuilderView) drawCard(s Screen, p editor.Placement) {
	th := v.theme
	r := v.cardCells(p.Bounds)

	border, style := th.Border, goterm.StyleNone
	switch {
	case p.Dragging:
		border, style = th.OK, goterm.StyleBold
	case p.Node.ID == v.connectFrom:
		border, style = th.Error, goterm.StyleBold
	case p.Selected:
		border, style = th.Accent, goterm.StyleBold
	}

	fill(s, r, ' ', th.Fg, th.Bg)
	drawBox(s, r, border, th.Bg, style)

	inner := r.Width - 4
	drawText(s, r.X+2, r.Y, inner, " "+truncate(p.Node.Data.Title, inner-2)+" ", th.Fg, th.Bg, goterm.StyleBold)

	lines := []string{
		string(p.Node.Type) + " · " + firstLine(p.Node.Data.Content),
	}
	if n := len(p.Node.Data.Buttons); n > 0 {
		texts := make([]string, 0, n)
		for _, b := range p.Node.Data.Buttons {
			texts = append(texts, "["+b.Text+"]")
		}
		lines = append(lines, strings.Join(texts, " "))
	}
	if n := len(p.Node.Data.QuickActions); n > 0 {
		lines = append(lines, strings.Join(p.Node.Data.QuickActions, " · "))
	}
	for i, line := range lines {
		y := r.Y + 1 + i
		if y >= r.Y+r.Height-1 {
			break
		}
		fg := th.Fg
		if i > 0 {
			fg = th.Muted
		}
		drawText(s, r.X+2, y, inner, truncate(line, inner), fg, th.Bg, goterm.StyleNone)
	}
}

// drawCurve samples the connection's Bézier once per cell and marks the
// end with an arrow just above the target card.
func (v *BuilderView) drawCurve(s Screen, c editor.Curve) {
	th := v.theme
	x0, y0 := v.toCell(c.Start)
	x1, y1 := v.toCell(c.End)
	steps := 2*max(abs(x1-x0), abs(y1-y0)) + 2

	lastX, lastY := math.MinInt, math.MinInt
	for i := 0; i <= steps; i++ {
		x, y := v.toCell(c.Point(float64(i) / float64(steps)))
		if x == lastX && y == lastY {
			continue
		}
		lastX, lastY = x, y
		s.SetCell(x, y, goterm.NewCell('·', th.Curve, th.Bg, goterm.StyleNone))
	}
	s.SetCell(x1, y1-1, goterm.NewCell('▼', th.Curve, th.Bg, goterm.StyleBold))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (v *BuilderView) drawPanel(screen Screen) {
	th := v.theme
	r := v.panelRect()
	fill(screen, r, ' ', th.Fg, th.Bg)
	drawBox(screen, r, th.Border, th.Bg, goterm.StyleNone)
	drawText(screen, r.X+2, r.Y, r.Width-4, " Properties ", th.Accent, th.Bg, goterm.StyleBold)
	drawText(screen, r.X+2, r.Y+1, r.Width-4, "Type: "+string(v.panel.Type()), th.Muted, th.Bg, goterm.StyleNone)

	rows := v.panelRows()
	scroll := v.panelScroll(len(rows))
	labelW := 16
	for i := scroll; i < len(rows); i++ {
		y := r.Y + panelHeaderRows + i - scroll
		if y >= r.Y+r.Height-1 {
			break
		}
		row := rows[i]
		fg, bg := th.Fg, th.Bg
		if v.focus == focusPanel && i == v.form.cursor {
			fg, bg = th.SelectedFg, th.SelectedBg
			fill(screen, Rect{X: r.X + 1, Y: y, Width: r.Width - 2, Height: 1}, ' ', fg, bg)
		}

		value := row.value
		if v.form.editing && v.form.row.kind == row.kind && v.form.row.id == row.id {
			value = string(v.form.buf) + "_"
		}
		if row.value == "" && !v.form.editing && row.kind == rowButtonTarget {
			value = "…"
		}

		x := r.X + 2
		if row.kind == rowTitle || row.kind == rowContent || row.kind == rowButtonText ||
			row.kind == rowButtonAction || row.kind == rowButtonTarget {
			drawText(screen, x, y, labelW, truncate(row.label, labelW), th.Muted, bg, goterm.StyleNone)
			x += labelW + 1
		} else {
			value = row.label
		}
		drawText(screen, x, y, r.X+r.Width-2-x, truncate(firstLine(value), r.X+r.Width-2-x), fg, bg, goterm.StyleNone)
	}
}

// drawSidebar lists the template's bot flows, two rows per flow.
func (v *BuilderView) drawSidebar(screen Screen, r Rect) {
	th := v.theme
	fill(screen, r, ' ', th.Fg, th.Bg)
	drawBox(screen, r, th.Border, th.Bg, goterm.StyleNone)
	drawText(screen, r.X+2, r.Y, r.Width-4, " Bot Flows ", th.Accent, th.Bg, goterm.StyleBold)

	inner := r.Width - 4
	y := r.Y + 1
	switch {
	case v.flowsErr != nil:
		drawText(screen, r.X+2, y, inner, truncate("Failed to load flows", inner), th.Error, th.Bg, goterm.StyleNone)
		return
	case !v.flowsLoaded:
		drawText(screen, r.X+2, y, inner, "Loading…", th.Muted, th.Bg, goterm.StyleNone)
		return
	case len(v.flows) == 0:
		drawText(screen, r.X+2, y, inner, "No bot flows", th.Muted, th.Bg, goterm.StyleNone)
		return
	}

	for _, f := range v.flows {
		if y+1 >= r.Y+r.Height-1 {
			break
		}
		name := f.BotFlowType
		if name == "" {
			name = "type " + strconv.FormatInt(f.BotFlowTypeID, 10)
		}
		head := "#" + strconv.FormatInt(f.ID, 10) + " " + name
		fg := th.Fg
		if f.IsInitial != 0 {
			head += " ▶"
			fg = th.OK
		}
		drawText(screen, r.X+2, y, inner, truncate(head, inner), fg, th.Bg, goterm.StyleBold)

		detail := fmt.Sprintf("%d dialogs", f.TotalBotDialogs)
		if f.IsActive == 0 {
			detail += " · inactive"
		}
		drawText(screen, r.X+3, y+1, inner-1, truncate(detail, inner-1), th.Muted, th.Bg, goterm.StyleNone)
		y += 2
	}
}

func (v *BuilderView) drawPalette(screen Screen) {
	th := v.theme
	r := v.paletteRect()
	fill(screen, r, ' ', th.Fg, th.Bg)
	drawBox(screen, r, th.Accent, th.Bg, goterm.StyleNone)
	drawText(screen, r.X+2, r.Y, r.Width-4, " Add node ", th.Accent, th.Bg, goterm.StyleBold)
	drawText(screen, r.X+2, r.Y+1, r.Width-4, "search: "+string(v.paletteQuery)+"_", th.Fg, th.Bg, goterm.StyleNone)

	for i, e := range v.palette.Entries() {
		y := r.Y + 3 + i
		fg, bg := th.Fg, th.Bg
		if i == v.palette.SelectedIndex() {
			fg, bg = th.SelectedFg, th.SelectedBg
			fill(screen, Rect{X: r.X + 1, Y: y, Width: r.Width - 2, Height: 1}, ' ', fg, bg)
		}
		line := fmt.Sprintf("%-11s %s", e.Title, e.Description)
		drawText(screen, r.X+2, y, r.Width-4, truncate(line, r.Width-4), fg, bg, goterm.StyleNone)
	}
}

func (v *BuilderView) drawMenu(screen Screen) {
	th := v.theme
	r := v.menu.rect()
	fill(screen, r, ' ', th.Fg, th.Bg)
	drawBox(screen, r, th.Border, th.Bg, goterm.StyleNone)
	for i, item := range editor.MenuItems() {
		fg := th.Fg
		if item == editor.MenuDelete {
			fg = th.Error
		}
		drawText(screen, r.X+2, r.Y+1+i, r.Width-4, item.String(), fg, th.Bg, goterm.StyleNone)
	}
}
