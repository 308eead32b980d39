package editor

import (
	"fmt"
	"slices"

	"github.com/dshills/botflow/pkg/flow"
)

// DefaultButtonText is the label of a freshly added response button.
const DefaultButtonText = "New Button"

// QuickActions are the fixed shortcuts a node can offer besides its
// buttons.
var QuickActions = []string{"Go Back", "Looking for something else", "Menu"}

// panelKey identifies the node data the panel mirror was built from.
type panelKey struct {
	id      string
	title   string
	content string
	buttons []flow.Button
}

func keyOf(n flow.Node) panelKey {
	return panelKey{id: n.ID, title: n.Data.Title, content: n.Data.Content, buttons: n.Data.Buttons}
}

func (k panelKey) equal(o panelKey) bool {
	return k.id == o.id && k.title == o.title && k.content == o.content &&
		slices.Equal(k.buttons, o.buttons)
}

// Panel is the properties panel for the selected node. It keeps a local
// mirror of the editable fields and dispatches every change immediately;
// nothing is held back as a draft.
type Panel struct {
	dispatch Dispatcher
	ids      flow.IDGenerator

	nodeID   string
	nodeType flow.NodeType
	key      panelKey

	title        string
	content      string
	buttons      []flow.Button
	quickActions []string
}

// NewPanel creates a panel that dispatches to d and names new buttons
// with ids.
func NewPanel(d Dispatcher, ids flow.IDGenerator) *Panel {
	if ids == nil {
		ids = flow.NewTimestampIDs()
	}
	return &Panel{dispatch: d, ids: ids}
}

// Sync points the panel at n. The mirror is rebuilt only when the node id
// or its title, content or buttons differ from what the mirror was built
// from.
func (p *Panel) Sync(n flow.Node) {
	k := keyOf(n)
	if p.nodeID != "" && p.key.equal(k) {
		return
	}
	p.key = k
	p.nodeID = n.ID
	p.nodeType = n.Type
	p.title = n.Data.Title
	p.content = n.Data.Content
	p.buttons = slices.Clone(n.Data.Buttons)
	if p.buttons == nil {
		p.buttons = []flow.Button{}
	}
	p.quickActions = slices.Clone(n.Data.QuickActions)
}

// NodeID returns the id of the node being edited.
func (p *Panel) NodeID() string { return p.nodeID }

// Type returns the node type. The panel cannot change it.
func (p *Panel) Type() flow.NodeType { return p.nodeType }

// Title returns the mirrored title.
func (p *Panel) Title() string { return p.title }

// Content returns the mirrored content.
func (p *Panel) Content() string { return p.content }

// Buttons returns a copy of the mirrored buttons.
func (p *Panel) Buttons() []flow.Button { return slices.Clone(p.buttons) }

// QuickActionEnabled reports whether a quick action is switched on.
func (p *Panel) QuickActionEnabled(name string) bool {
	return slices.Contains(p.quickActions, name)
}

// SetTitle changes the title.
func (p *Panel) SetTitle(v string) {
	p.title = v
	p.emit(flow.SetTitle(v))
}

// SetContent changes the message content.
func (p *Panel) SetContent(v string) {
	p.content = v
	p.emit(flow.SetContent(v))
}

// AddButton appends a "New Button" that jumps to a node, with an empty
// target.
func (p *Panel) AddButton() flow.Button {
	b := flow.Button{
		ID:     p.ids.NewID(),
		Text:   DefaultButtonText,
		Action: flow.ActionGoto,
		Target: "",
	}
	p.buttons = append(p.buttons, b)
	p.emit(flow.SetButtons(p.buttons))
	return b
}

// UpdateButton merges u into the button with the given id. Unknown ids
// are ignored.
func (p *Panel) UpdateButton(id string, u flow.ButtonUpdate) {
	i := slices.IndexFunc(p.buttons, func(b flow.Button) bool { return b.ID == id })
	if i < 0 {
		return
	}
	p.buttons[i] = p.buttons[i].Apply(u)
	p.emit(flow.SetButtons(p.buttons))
}

// DeleteButton removes the button with the given id.
func (p *Panel) DeleteButton(id string) {
	p.buttons = slices.DeleteFunc(p.buttons, func(b flow.Button) bool { return b.ID == id })
	p.emit(flow.SetButtons(p.buttons))
}

// ToggleQuickAction switches a quick action on or off.
func (p *Panel) ToggleQuickAction(name string) error {
	if !slices.Contains(QuickActions, name) {
		return fmt.Errorf("unknown quick action: %q", name)
	}
	if i := slices.Index(p.quickActions, name); i >= 0 {
		p.quickActions = slices.Delete(p.quickActions, i, i+1)
	} else {
		p.quickActions = append(p.quickActions, name)
	}
	p.emit(flow.SetQuickActions(p.quickActions))
	return nil
}

// TargetField returns the label for a button's target input, which
// depends on the button's action.
func (p *Panel) TargetField(buttonID string) (string, bool) {
	for _, b := range p.buttons {
		if b.ID == buttonID {
			return b.Action.TargetPlaceholder(), true
		}
	}
	return "", false
}

// Close hides the panel.
func (p *Panel) Close() {
	p.dispatch.Dispatch(ClosePanel{})
}

func (p *Panel) emit(u flow.NodeUpdate) {
	if p.nodeID == "" {
		return
	}
	p.dispatch.Dispatch(UpdateNode{ID: p.nodeID, Update: u})
}
