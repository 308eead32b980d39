package editor

import (
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/dshills/botflow/internal/logging"
	"github.com/dshills/botflow/pkg/flow"
)

// Quick-add places nodes around this point, jittered by up to
// quickAddJitter in each direction.
var quickAddCentre = flow.Position{X: 400, Y: 300}

const quickAddJitter = 100

// dropOffset centres a dropped card under the pointer.
var dropOffset = flow.Position{X: 100, Y: 50}

// State is a read-only snapshot of the editor.
type State struct {
	Nodes       []flow.Node
	Connections []flow.Connection
	// Selected mirrors the selected node, including edits made since it
	// was selected. Nil when nothing is selected.
	Selected  *flow.Node
	PanelOpen bool
}

// SelectedID returns the id of the selected node or "".
func (s State) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.ID
}

// Graph returns the nodes and connections of the snapshot.
func (s State) Graph() flow.Graph {
	return flow.Graph{Nodes: s.Nodes, Connections: s.Connections}
}

// Builder is the flow builder orchestrator. It owns the node list, the
// connection list and the selection, and applies every intent emitted by
// the canvas, node cards and properties panel.
//
// Builder is not safe for concurrent use; it is driven from the UI loop.
type Builder struct {
	nodes       []flow.Node
	connections []flow.Connection
	selected    *flow.Node
	panelOpen   bool

	dragType *flow.NodeType
	bounds   *Rect

	ids       flow.IDGenerator
	connIDs   func() string
	random    func() float64
	logger    *slog.Logger
	onBack    func()
	listeners map[int]func(State)
	nextSub   int
}

// Option configures a Builder.
type Option func(*Builder)

// WithGraph loads an initial set of nodes and connections, e.g. when
// editing an existing template.
func WithGraph(g flow.Graph) Option {
	return func(b *Builder) {
		b.load(g)
	}
}

// WithIDs sets the node id generator.
func WithIDs(ids flow.IDGenerator) Option {
	return func(b *Builder) { b.ids = ids }
}

// WithConnectionIDs sets the connection id generator.
func WithConnectionIDs(f func() string) Option {
	return func(b *Builder) { b.connIDs = f }
}

// WithRandom sets the source of quick-add jitter. f must return values
// in [0, 1).
func WithRandom(f func() float64) Option {
	return func(b *Builder) { b.random = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithBackToTemplates sets the callback run by Back.
func WithBackToTemplates(f func()) Option {
	return func(b *Builder) { b.onBack = f }
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		nodes:       []flow.Node{},
		connections: []flow.Connection{},
		ids:         flow.NewTimestampIDs(),
		connIDs:     flow.NewConnectionID,
		random:      rand.Float64,
		logger:      logging.NewNop(),
		listeners:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dispatch applies an intent. Subscribers are notified when the graph,
// the selection or the panel changes; the palette drag payload and the
// canvas bounds are not part of State and never notify.
func (b *Builder) Dispatch(i Intent) {
	switch in := i.(type) {
	case AddNode:
		b.AddNode(in.Type, in.Position)
	case UpdateNode:
		b.UpdateNode(in.ID, in.Update)
	case DeleteNode:
		b.DeleteNode(in.ID)
	case SelectNode:
		b.SelectNode(in.ID)
	case ClosePanel:
		b.ClosePanel()
	case Connect:
		b.Connect(in.SourceID, in.TargetID)
	case Disconnect:
		b.Disconnect(in.ID)
	case QuickAdd:
		b.QuickAdd(in.Type)
	case BeginPaletteDrag:
		b.BeginPaletteDrag(in.Type)
	case CancelPaletteDrag:
		b.CancelPaletteDrag()
	case Drop:
		b.Drop(in.Event)
	case SetCanvasBounds:
		b.SetCanvasBounds(in.Bounds)
	case Load:
		b.Load(in.Graph)
	default:
		b.logger.Warn("ignoring unknown intent", "intent", i)
	}
}

// Subscribe registers f to run after every state change. The returned
// function removes the subscription.
func (b *Builder) Subscribe(f func(State)) (unsubscribe func()) {
	id := b.nextSub
	b.nextSub++
	b.listeners[id] = f
	return func() { delete(b.listeners, id) }
}

func (b *Builder) changed() {
	if len(b.listeners) == 0 {
		return
	}
	s := b.State()
	for _, f := range b.listeners {
		f(s)
	}
}

// State returns a snapshot of the editor.
func (b *Builder) State() State {
	g := b.Graph()
	s := State{
		Nodes:       g.Nodes,
		Connections: g.Connections,
		PanelOpen:   b.panelOpen,
	}
	if b.selected != nil {
		sel := b.selected.Clone()
		s.Selected = &sel
	}
	return s
}

// Graph returns a copy of the current nodes and connections.
func (b *Builder) Graph() flow.Graph {
	return flow.Graph{Nodes: b.nodes, Connections: b.connections}.Clone()
}

// AddNode creates a node with the type's default title and content,
// appends it, selects it and opens the properties panel.
func (b *Builder) AddNode(t flow.NodeType, pos flow.Position) flow.Node {
	n := flow.NewNode(b.ids.NewID(), t, pos)
	b.nodes = append(b.nodes, n)

	sel := n.Clone()
	b.selected = &sel
	b.panelOpen = true

	b.logger.Debug("node added", "node", n.ID, "type", t, "x", pos.X, "y", pos.Y)
	b.changed()
	return n
}

// UpdateNode merges u into the node with the given id. When that node is
// selected the selection mirror receives the same merge. Unknown ids are
// ignored.
func (b *Builder) UpdateNode(id string, u flow.NodeUpdate) {
	i := b.indexOf(id)
	if i < 0 {
		return
	}
	b.nodes[i] = b.nodes[i].Apply(u)

	if b.selected != nil && b.selected.ID == id {
		sel := b.selected.Apply(u)
		b.selected = &sel
	}
	b.changed()
}

// DeleteNode removes the node and every connection that references it as
// source or target. If the node was selected the selection is cleared and
// the panel closed.
func (b *Builder) DeleteNode(id string) {
	b.nodes = slices.DeleteFunc(b.nodes, func(n flow.Node) bool { return n.ID == id })
	b.connections = slices.DeleteFunc(b.connections, func(c flow.Connection) bool { return c.Touches(id) })

	if b.selected != nil && b.selected.ID == id {
		b.selected = nil
		b.panelOpen = false
	}

	b.logger.Debug("node deleted", "node", id)
	b.changed()
}

// SelectNode selects the node and opens the properties panel. Unknown ids
// are ignored.
func (b *Builder) SelectNode(id string) {
	i := b.indexOf(id)
	if i < 0 {
		return
	}
	sel := b.nodes[i].Clone()
	b.selected = &sel
	b.panelOpen = true
	b.changed()
}

// ClosePanel hides the properties panel and keeps the selection.
func (b *Builder) ClosePanel() {
	b.panelOpen = false
	b.changed()
}

// Connect adds a connection between two nodes. Self-loops and exact
// duplicates are ignored. The endpoints are not required to exist.
func (b *Builder) Connect(sourceID, targetID string) (flow.Connection, bool) {
	if sourceID == "" || targetID == "" || sourceID == targetID {
		return flow.Connection{}, false
	}
	for _, c := range b.connections {
		if c.SourceID == sourceID && c.TargetID == targetID {
			return c, false
		}
	}
	c := flow.Connection{ID: b.connIDs(), SourceID: sourceID, TargetID: targetID}
	b.connections = append(b.connections, c)

	b.logger.Debug("connection added", "connection", c.ID, "source", sourceID, "target", targetID)
	b.changed()
	return c, true
}

// Disconnect removes a connection by id.
func (b *Builder) Disconnect(id string) {
	before := len(b.connections)
	b.connections = slices.DeleteFunc(b.connections, func(c flow.Connection) bool { return c.ID == id })
	if len(b.connections) != before {
		b.changed()
	}
}

// QuickAdd adds a node near the canvas centre with a random offset of up
// to 100 units on each axis so repeated adds do not stack exactly.
func (b *Builder) QuickAdd(t flow.NodeType) flow.Node {
	pos := flow.Position{
		X: quickAddCentre.X + b.random()*2*quickAddJitter - quickAddJitter,
		Y: quickAddCentre.Y + b.random()*2*quickAddJitter - quickAddJitter,
	}
	return b.AddNode(t, pos)
}

// BeginPaletteDrag records the node type being dragged from the palette.
func (b *Builder) BeginPaletteDrag(t flow.NodeType) {
	b.dragType = &t
}

// CancelPaletteDrag drops the drag payload without adding a node.
func (b *Builder) CancelPaletteDrag() {
	b.dragType = nil
}

// Dragging reports whether a palette drag is pending.
func (b *Builder) Dragging() bool {
	return b.dragType != nil
}

// SetCanvasBounds records the canvas's on-screen rectangle, used to turn
// drop coordinates into canvas positions.
func (b *Builder) SetCanvasBounds(r Rect) {
	b.bounds = &r
}

// Drop adds the dragged node type so that the card is centred under the
// pointer. Nothing happens without a drag payload or canvas bounds.
func (b *Builder) Drop(ev DropEvent) (flow.Node, bool) {
	if b.dragType == nil || b.bounds == nil {
		return flow.Node{}, false
	}
	pos := flow.Position{X: ev.ClientX, Y: ev.ClientY}.Sub(b.bounds.Origin()).Sub(dropOffset)
	t := *b.dragType
	b.dragType = nil
	return b.AddNode(t, pos), true
}

// Load replaces the graph and clears the selection.
func (b *Builder) Load(g flow.Graph) {
	b.load(g)
	b.changed()
}

func (b *Builder) load(g flow.Graph) {
	g = g.Clone()
	b.nodes = g.Nodes
	b.connections = g.Connections
	b.selected = nil
	b.panelOpen = false
}

// Back runs the back-to-templates callback, if any.
func (b *Builder) Back() {
	if b.onBack != nil {
		b.onBack()
	}
}

func (b *Builder) indexOf(id string) int {
	return slices.IndexFunc(b.nodes, func(n flow.Node) bool { return n.ID == id })
}
