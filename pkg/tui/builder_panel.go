package tui

import (
	"slices"
	"strconv"

	"github.com/dshills/botflow/pkg/editor"
	"github.com/dshills/botflow/pkg/flow"
)

type rowKind int

const (
	rowTitle rowKind = iota
	rowContent
	rowButtonText
	rowButtonAction
	rowButtonTarget
	rowAddButton
	rowQuickAction
	rowConnection
	rowClose
)

// formRow is one line of the properties panel.
type formRow struct {
	kind  rowKind
	id    string // button id, quick action name or connection id
	label string
	value string
}

// panelForm is the cursor and edit buffer of the properties panel.
type panelForm struct {
	cursor  int
	editing bool
	row     formRow
	buf     []rune
}

func (f *panelForm) stopEdit() {
	f.editing = false
	f.buf = nil
}

// panelRows lists the panel lines for the node being edited.
func (v *BuilderView) panelRows() []formRow {
	p := v.panel
	rows := []formRow{
		{kind: rowTitle, label: "Title", value: p.Title()},
		{kind: rowContent, label: "Content", value: p.Content()},
	}
	for i, b := range p.Buttons() {
		target, _ := p.TargetField(b.ID)
		rows = append(rows,
			formRow{kind: rowButtonText, id: b.ID, label: buttonLabel(i), value: b.Text},
			formRow{kind: rowButtonAction, id: b.ID, label: "  Action", value: b.Action.Label()},
			formRow{kind: rowButtonTarget, id: b.ID, label: "  " + target, value: b.Target},
		)
	}
	rows = append(rows, formRow{kind: rowAddButton, label: "+ Add button"})
	for _, name := range editor.QuickActions {
		mark := "[ ] "
		if p.QuickActionEnabled(name) {
			mark = "[x] "
		}
		rows = append(rows, formRow{kind: rowQuickAction, id: name, label: mark + name})
	}
	for _, c := range v.state.Connections {
		if c.SourceID != p.NodeID() {
			continue
		}
		rows = append(rows, formRow{kind: rowConnection, id: c.ID, label: "→ " + v.nodeTitle(c.TargetID)})
	}
	return append(rows, formRow{kind: rowClose, label: "Close panel"})
}

func buttonLabel(i int) string {
	return "Button " + strconv.Itoa(i+1)
}

func (v *BuilderView) nodeTitle(id string) string {
	for _, n := range v.state.Nodes {
		if n.ID == id {
			return n.Data.Title
		}
	}
	return id
}

func (v *BuilderView) panelKey(ev KeyEvent) {
	if v.form.editing {
		v.editKey(ev)
		return
	}

	rows := v.panelRows()
	v.form.cursor = min(v.form.cursor, len(rows)-1)

	switch {
	case ev.Is("Escape") || ev.Is("Tab"):
		v.focus = focusCanvas
	case ev.Is("Up") || ev.Key == 'k':
		v.form.cursor = max(v.form.cursor-1, 0)
	case ev.Is("Down") || ev.Key == 'j':
		v.form.cursor = min(v.form.cursor+1, len(rows)-1)
	case ev.Is("Enter") || ev.Key == ' ':
		v.activate(rows[v.form.cursor])
	case ev.Is("Delete") || ev.Key == 'd':
		v.deleteRow(rows[v.form.cursor])
	case ev.Ctrl && ev.Key == 's':
		v.Save()
	}
}

// clickPanel activates the row under the pointer.
func (v *BuilderView) clickPanel(y int) {
	v.focus = focusPanel
	v.form.stopEdit()
	rows := v.panelRows()
	i := y - v.panelRect().Y - panelHeaderRows + v.panelScroll(len(rows))
	if i < 0 || i >= len(rows) {
		return
	}
	v.form.cursor = i
	v.activate(rows[i])
}

func (v *BuilderView) activate(r formRow) {
	switch r.kind {
	case rowTitle, rowContent, rowButtonText, rowButtonTarget:
		v.form.editing = true
		v.form.row = r
		v.form.buf = []rune(r.value)
	case rowButtonAction:
		b, ok := v.panelButton(r.id)
		if !ok {
			return
		}
		next := nextAction(b.Action)
		v.panel.UpdateButton(r.id, flow.ButtonUpdate{Action: &next})
	case rowAddButton:
		v.panel.AddButton()
	case rowQuickAction:
		if err := v.panel.ToggleQuickAction(r.id); err != nil {
			v.status.Error(err)
		}
	case rowConnection:
		v.builder.Dispatch(editor.Disconnect{ID: r.id})
	case rowClose:
		v.panel.Close()
	}
}

func (v *BuilderView) deleteRow(r formRow) {
	switch r.kind {
	case rowButtonText, rowButtonAction, rowButtonTarget:
		v.panel.DeleteButton(r.id)
	case rowConnection:
		v.builder.Dispatch(editor.Disconnect{ID: r.id})
	}
}

// editKey edits the focused text field. Every keystroke is dispatched at
// once.
func (v *BuilderView) editKey(ev KeyEvent) {
	switch {
	case ev.Is("Enter") || ev.Is("Escape"):
		v.form.stopEdit()
		return
	case ev.Is("Backspace"):
		if len(v.form.buf) == 0 {
			return
		}
		v.form.buf = v.form.buf[:len(v.form.buf)-1]
	case ev.Ctrl && ev.Key == 'n' && v.form.row.kind == rowContent:
		v.form.buf = append(v.form.buf, '\n')
	case !ev.IsSpecial && !ev.Ctrl && ev.Key != 0:
		v.form.buf = append(v.form.buf, ev.Key)
	default:
		return
	}
	v.commitEdit()
}

func (v *BuilderView) commitEdit() {
	s := string(v.form.buf)
	r := v.form.row
	switch r.kind {
	case rowTitle:
		v.panel.SetTitle(s)
	case rowContent:
		v.panel.SetContent(s)
	case rowButtonText:
		v.panel.UpdateButton(r.id, flow.ButtonUpdate{Text: &s})
	case rowButtonTarget:
		v.panel.UpdateButton(r.id, flow.ButtonUpdate{Target: &s})
	}
}

func (v *BuilderView) panelButton(id string) (flow.Button, bool) {
	i := slices.IndexFunc(v.panel.Buttons(), func(b flow.Button) bool { return b.ID == id })
	if i < 0 {
		return flow.Button{}, false
	}
	return v.panel.Buttons()[i], true
}

func nextAction(a flow.Action) flow.Action {
	all := flow.Actions()
	i := slices.Index(all, a)
	return all[(i+1)%len(all)]
}

// Rows above the first form row: node type line and a separator.
const panelHeaderRows = 3

// panelScroll is the index of the first visible row.
func (v *BuilderView) panelScroll(n int) int {
	visible := v.panelRect().Height - panelHeaderRows - 1
	if visible <= 0 || v.form.cursor < visible {
		return 0
	}
	return min(v.form.cursor-visible+1, max(n-visible, 0))
}
