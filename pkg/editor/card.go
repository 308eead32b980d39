package editor

import "github.com/dshills/botflow/pkg/flow"

// Region is the part of a node card under the pointer.
type Region int

const (
	RegionNone Region = iota
	RegionHeader
	RegionBody
)

// DragState is the state of a card's drag gesture.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// MenuItem is an entry in a card's overflow menu.
type MenuItem int

const (
	MenuDuplicate MenuItem = iota
	MenuSettings
	MenuDelete
)

// MenuItems lists the menu entries in display order.
func MenuItems() []MenuItem {
	return []MenuItem{MenuDuplicate, MenuSettings, MenuDelete}
}

func (m MenuItem) String() string {
	switch m {
	case MenuDuplicate:
		return "Duplicate"
	case MenuSettings:
		return "Settings"
	case MenuDelete:
		return "Delete"
	}
	return "?"
}

// NodeCard is the interactive card for one node. Dragging the header
// moves the node: the offset between pointer and node is captured on
// press, and every pointer move reports pointer-minus-offset as the new
// position.
type NodeCard struct {
	node     flow.Node
	bus      *PointerBus
	dispatch Dispatcher

	state   DragState
	offset  flow.Position
	gesture *Subscription
}

// NewNodeCard mounts a card for n.
func NewNodeCard(n flow.Node, bus *PointerBus, d Dispatcher) *NodeCard {
	return &NodeCard{node: n, bus: bus, dispatch: d}
}

// Node returns the node as last rendered.
func (c *NodeCard) Node() flow.Node {
	return c.node
}

// SetNode refreshes the card with the latest node data.
func (c *NodeCard) SetNode(n flow.Node) {
	c.node = n
}

// State returns the drag state.
func (c *NodeCard) State() DragState {
	return c.state
}

// Bounds returns the card rectangle in canvas units.
func (c *NodeCard) Bounds() Rect {
	return cardRect(c.node)
}

// RegionAt classifies a canvas point relative to the card.
func (c *NodeCard) RegionAt(p flow.Position) Region {
	switch {
	case headerRect(c.node).Contains(p):
		return RegionHeader
	case cardRect(c.node).Contains(p):
		return RegionBody
	default:
		return RegionNone
	}
}

// PointerDown starts a drag when the primary button is pressed on the
// header. It reports whether a drag started.
func (c *NodeCard) PointerDown(ev PointerEvent, region Region) bool {
	if ev.Button != ButtonPrimary || region != RegionHeader || c.state == Dragging {
		return false
	}
	c.offset = ev.Position.Sub(c.node.Position)
	c.gesture = c.bus.Subscribe(c.pointerMove, c.pointerUp)
	c.state = Dragging
	return true
}

func (c *NodeCard) pointerMove(ev PointerEvent) {
	pos := ev.Position.Sub(c.offset)
	c.node.Position = pos
	c.dispatch.Dispatch(UpdateNode{ID: c.node.ID, Update: flow.MoveTo(pos)})
}

func (c *NodeCard) pointerUp(PointerEvent) {
	c.endGesture()
}

func (c *NodeCard) endGesture() {
	c.gesture.Dispose()
	c.gesture = nil
	c.state = Idle
}

// Click handles a click on the card. Clicking the body selects the node.
func (c *NodeCard) Click(region Region) {
	if region == RegionBody {
		c.dispatch.Dispatch(SelectNode{ID: c.node.ID})
	}
}

// Menu runs a menu entry. It reports whether the click was consumed, in
// which case the caller must not also treat it as a card click.
// Duplicate and Settings have no effect yet.
func (c *NodeCard) Menu(item MenuItem) (stopPropagation bool) {
	switch item {
	case MenuDelete:
		c.dispatch.Dispatch(DeleteNode{ID: c.node.ID})
		return true
	default:
		return false
	}
}

// Unmount releases the card. A drag in progress is cancelled and its
// pointer listeners detached.
func (c *NodeCard) Unmount() {
	if c.state == Dragging {
		c.endGesture()
	}
}
