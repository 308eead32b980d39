package tui

import (
	"github.com/dshills/botflow/pkg/editor"
	"github.com/dshills/botflow/pkg/flow"
)

// Canvas distance panned per arrow key.
const (
	panStepX = 4 * cellWidth
	panStepY = 2 * cellHeight
)

// cardMenu is an open overflow menu for one card, anchored at a cell.
type cardMenu struct {
	nodeID string
	x, y   int
}

func (m *cardMenu) rect() Rect {
	return Rect{X: m.x, Y: m.y, Width: 14, Height: len(editor.MenuItems()) + 2}
}

// itemAt returns the menu entry drawn at a cell.
func (m *cardMenu) itemAt(x, y int) (editor.MenuItem, bool) {
	r := m.rect()
	row := y - r.Y - 1
	items := editor.MenuItems()
	if x <= r.X || x >= r.X+r.Width-1 || row < 0 || row >= len(items) {
		return 0, false
	}
	return items[row], true
}

// HandleKey implements View.
func (v *BuilderView) HandleKey(ev KeyEvent) error {
	switch v.focus {
	case focusPalette:
		v.paletteKey(ev)
		return nil
	case focusPanel:
		v.panelKey(ev)
		return nil
	}

	if v.menu != nil && ev.Is("Escape") {
		v.menu = nil
		return nil
	}

	switch {
	case ev.Ctrl && ev.Key == 's':
		v.Save()
	case ev.Key == 'b' || ev.Key == 'q':
		v.builder.Back()
	case ev.Key == 'a':
		v.openPalette()
	case ev.Key == 'f':
		v.ToggleFlows()
	case ev.Key == 'c':
		if id := v.state.SelectedID(); id != "" {
			v.connectFrom = id
			v.status.Info("Click the node to connect to")
		}
	case ev.Is("Delete") || ev.Key == 'x':
		if id := v.state.SelectedID(); id != "" {
			v.builder.Dispatch(editor.DeleteNode{ID: id})
		}
	case ev.Is("Tab") || ev.Key == 'e':
		if v.state.PanelOpen {
			v.focus = focusPanel
		}
	case ev.Is("Escape"):
		if v.connectFrom != "" {
			v.connectFrom = ""
			v.status.Clear()
		} else if v.state.PanelOpen {
			v.panel.Close()
		}
	case ev.Key == '+' || ev.Key == '=':
		v.viewport.ZoomIn()
	case ev.Key == '-':
		v.viewport.ZoomOut()
	case ev.Key == '0':
		v.viewport.Reset()
	case ev.Is("Left") || ev.Key == 'h':
		v.viewport.Pan(-panStepX, 0)
	case ev.Is("Right") || ev.Key == 'l':
		v.viewport.Pan(panStepX, 0)
	case ev.Is("Up") || ev.Key == 'k':
		v.viewport.Pan(0, -panStepY)
	case ev.Is("Down") || ev.Key == 'j':
		v.viewport.Pan(0, panStepY)
	}
	return nil
}

// HandleMouse implements View.
func (v *BuilderView) HandleMouse(ev MouseEvent) error {
	switch ev.Action {
	case MouseWheelUp:
		v.viewport.ZoomIn()
	case MouseWheelDown:
		v.viewport.ZoomOut()
	case MousePress:
		v.press(ev)
	case MouseMotion:
		v.motion(ev)
	case MouseRelease:
		v.release(ev)
	}
	return nil
}

func (v *BuilderView) press(ev MouseEvent) {
	if v.menu != nil {
		m := v.menu
		v.menu = nil
		if item, ok := m.itemAt(ev.X, ev.Y); ok {
			v.runMenu(m.nodeID, item)
		}
		return
	}

	switch {
	case ev.Y < topbarRows:
		v.clickTopbar(ev.X)
	case v.focus == focusPalette:
		v.pressPalette(ev)
	case v.state.PanelOpen && v.panelRect().Contains(ev.X, ev.Y):
		v.clickPanel(ev.Y)
	case v.canvasRect().Contains(ev.X, ev.Y):
		v.pressCanvas(ev)
	}
}

func (v *BuilderView) pressCanvas(ev MouseEvent) {
	v.canvas.Sync(v.state.Nodes)
	if v.focus == focusPanel {
		v.focus = focusCanvas
		v.form.stopEdit()
	}

	pos := v.toCanvas(ev.X, ev.Y)
	card, region := v.canvas.HitTest(pos)

	if v.connectFrom != "" && ev.Button == 0 {
		if card != nil {
			if _, ok := v.builder.Connect(v.connectFrom, card.Node().ID); ok {
				v.status.Info("Connected")
			} else {
				v.status.Info("Connection not added")
			}
		}
		v.connectFrom = ""
		return
	}

	if ev.Button == 2 {
		if card != nil {
			v.menu = &cardMenu{nodeID: card.Node().ID, x: ev.X, y: ev.Y}
		}
		return
	}

	if card == nil {
		if ev.Button == 0 {
			v.panning = true
			v.lastX, v.lastY = ev.X, ev.Y
		}
		return
	}

	pe := editor.PointerEvent{Position: pos, Button: pointerButton(ev.Button)}
	if v.canvas.PointerDown(pe) != nil {
		return
	}
	card.Click(region)
}

// runMenu applies a card menu entry. Entries that do not consume the
// click fall through to the card, which selects the node.
func (v *BuilderView) runMenu(nodeID string, item editor.MenuItem) {
	v.canvas.Sync(v.state.Nodes)
	card, ok := v.canvas.Card(nodeID)
	if !ok {
		return
	}
	if !card.Menu(item) {
		card.Click(editor.RegionBody)
	}
}

func (v *BuilderView) motion(ev MouseEvent) {
	if v.bus.Len() > 0 {
		v.bus.Move(editor.PointerEvent{Position: v.toCanvas(ev.X, ev.Y)})
	}
	if v.panning {
		f := float64(v.viewport.Zoom()) / 100
		v.viewport.Pan(
			-float64((ev.X-v.lastX)*cellWidth)/f,
			-float64((ev.Y-v.lastY)*cellHeight)/f,
		)
		v.lastX, v.lastY = ev.X, ev.Y
	}
}

func (v *BuilderView) release(ev MouseEvent) {
	if v.bus.Len() > 0 {
		v.bus.Up(editor.PointerEvent{Position: v.toCanvas(ev.X, ev.Y)})
	}
	v.panning = false

	if v.dragType == nil {
		return
	}
	v.dragType = nil
	if !v.canvasRect().Contains(ev.X, ev.Y) {
		v.builder.Dispatch(editor.CancelPaletteDrag{})
		v.status.Clear()
		return
	}
	// Drop subtracts the canvas origin, so the client point is the origin
	// plus the canvas position under the pointer.
	v.syncBounds()
	r := v.canvasRect()
	p := v.toCanvas(ev.X, ev.Y)
	de := editor.DropEvent{
		ClientX: float64(r.X*cellWidth) + p.X,
		ClientY: float64(r.Y*cellHeight) + p.Y,
	}
	if !v.canvas.HandleDragOver(de) {
		v.builder.Dispatch(editor.CancelPaletteDrag{})
		return
	}
	v.canvas.HandleDrop(de)
}

func pointerButton(b int) editor.MouseButton {
	switch b {
	case 1:
		return editor.ButtonMiddle
	case 2:
		return editor.ButtonSecondary
	}
	return editor.ButtonPrimary
}

type topbarItem struct {
	label  string
	x      int
	action func(v *BuilderView)
}

// topbarItems lays out the clickable topbar entries for a given width.
func topbarItems(width int) []topbarItem {
	items := []topbarItem{
		{label: "◀ Templates", x: 1, action: func(v *BuilderView) { v.builder.Back() }},
	}
	right := []topbarItem{
		{label: "[-]", action: func(v *BuilderView) { v.viewport.ZoomOut() }},
		{label: "[+]", action: func(v *BuilderView) { v.viewport.ZoomIn() }},
		{label: "[Add]", action: func(v *BuilderView) { v.openPalette() }},
		{label: "[Save]", action: func(v *BuilderView) { v.Save() }},
		{label: "[Flows]", action: func(v *BuilderView) { v.ToggleFlows() }},
	}
	// Right-aligned, with room for the zoom percentage between - and +.
	x := width - 1
	for i := len(right) - 1; i >= 0; i-- {
		x -= len([]rune(right[i].label))
		right[i].x = x
		x -= 2
		if i == 1 {
			x -= len("100%") + 1
		}
	}
	return append(items, right...)
}

func (v *BuilderView) clickTopbar(x int) {
	for _, it := range topbarItems(v.width) {
		if x >= it.x && x < it.x+len([]rune(it.label)) {
			it.action(v)
			return
		}
	}
}

func (v *BuilderView) openPalette() {
	v.palette.Show()
	v.paletteQuery = v.paletteQuery[:0]
	v.focus = focusPalette
	v.menu = nil
}

func (v *BuilderView) closePalette() {
	v.palette.Hide()
	v.focus = focusCanvas
}

func (v *BuilderView) paletteKey(ev KeyEvent) {
	switch {
	case ev.Is("Escape"):
		v.closePalette()
	case ev.Is("Down") || ev.Is("Tab"):
		v.palette.Next()
	case ev.Is("Up") || ev.Is("BackTab"):
		v.palette.Previous()
	case ev.Is("Enter"):
		if e, ok := v.palette.Selected(); ok {
			v.builder.Dispatch(editor.QuickAdd{Type: e.Type})
		}
		v.closePalette()
	case ev.Is("Backspace"):
		if len(v.paletteQuery) > 0 {
			v.paletteQuery = v.paletteQuery[:len(v.paletteQuery)-1]
			v.palette.Filter(string(v.paletteQuery))
		}
	case !ev.IsSpecial && !ev.Ctrl && ev.Key != 0:
		v.paletteQuery = append(v.paletteQuery, ev.Key)
		v.palette.Filter(string(v.paletteQuery))
	}
}

// paletteRect is where the palette overlay is drawn.
func (v *BuilderView) paletteRect() Rect {
	w := min(44, v.width)
	h := len(v.palette.Entries()) + 4
	return Rect{X: (v.width - w) / 2, Y: topbarRows + 2, Width: w, Height: h}
}

// pressPalette starts dragging the entry under the pointer. The palette
// closes so the drop lands on the canvas.
func (v *BuilderView) pressPalette(ev MouseEvent) {
	r := v.paletteRect()
	if !r.Contains(ev.X, ev.Y) {
		v.closePalette()
		return
	}
	entries := v.palette.Entries()
	row := ev.Y - r.Y - 3
	if row < 0 || row >= len(entries) {
		return
	}
	t := entries[row].Type
	v.dragType = &t
	v.builder.Dispatch(editor.BeginPaletteDrag{Type: t})
	v.closePalette()
	v.status.Info("Release over the canvas to add " + flowTitle(t))
}

func flowTitle(t flow.NodeType) string {
	title, _ := t.Defaults()
	return title
}
