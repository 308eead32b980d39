package editor

import (
	"fmt"
	"slices"

	"github.com/dshills/botflow/pkg/flow"
)

// Curve is the drawn form of one connection: a quadratic Bézier from the
// source node's bottom centre to the target node's top centre, with an
// arrow marker at End.
type Curve struct {
	ConnectionID string
	Start        flow.Position
	Control      flow.Position
	End          flow.Position
}

// newCurve builds the curve between two nodes. The control point is the
// midpoint of the two anchors.
func newCurve(id string, src, dst flow.Node) Curve {
	start := outputAnchor(src)
	end := inputAnchor(dst)
	return Curve{
		ConnectionID: id,
		Start:        start,
		Control:      flow.Position{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2},
		End:          end,
	}
}

// Point evaluates the curve at t in [0, 1].
func (c Curve) Point(t float64) flow.Position {
	u := 1 - t
	return flow.Position{
		X: u*u*c.Start.X + 2*u*t*c.Control.X + t*t*c.End.X,
		Y: u*u*c.Start.Y + 2*u*t*c.Control.Y + t*t*c.End.Y,
	}
}

// Path renders the curve as an SVG path.
func (c Curve) Path() string {
	return fmt.Sprintf("M %g %g Q %g %g %g %g",
		c.Start.X, c.Start.Y, c.Control.X, c.Control.Y, c.End.X, c.End.Y)
}

// Placement is a card positioned on the canvas.
type Placement struct {
	Node     flow.Node
	Bounds   Rect
	Selected bool
	Dragging bool
}

// Layout is everything the canvas draws for one frame.
type Layout struct {
	Cards  []Placement
	Curves []Curve
	// Skipped holds the ids of connections that were not drawn because an
	// endpoint did not resolve.
	Skipped []string
}

// Canvas is the drawing surface. It keeps one NodeCard per node so drag
// state survives re-renders, and forwards drop events to the dispatcher
// unchanged.
type Canvas struct {
	bus      *PointerBus
	dispatch Dispatcher
	cards    map[string]*NodeCard
	order    []string
}

// NewCanvas creates an empty canvas.
func NewCanvas(bus *PointerBus, d Dispatcher) *Canvas {
	return &Canvas{
		bus:      bus,
		dispatch: d,
		cards:    make(map[string]*NodeCard),
	}
}

// Sync mounts cards for new nodes, refreshes existing ones and unmounts
// cards whose node is gone.
func (c *Canvas) Sync(nodes []flow.Node) {
	live := make(map[string]bool, len(nodes))
	c.order = c.order[:0]
	for _, n := range nodes {
		live[n.ID] = true
		c.order = append(c.order, n.ID)
		if card, ok := c.cards[n.ID]; ok {
			card.SetNode(n)
			continue
		}
		c.cards[n.ID] = NewNodeCard(n, c.bus, c.dispatch)
	}
	for id, card := range c.cards {
		if !live[id] {
			card.Unmount()
			delete(c.cards, id)
		}
	}
}

// Card returns the mounted card for a node.
func (c *Canvas) Card(id string) (*NodeCard, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// Layout computes card placements and connection curves. Connections
// with a missing endpoint are skipped without error.
func (c *Canvas) Layout(s State) Layout {
	c.Sync(s.Nodes)

	index := make(map[string]flow.Node, len(s.Nodes))
	out := Layout{Cards: make([]Placement, 0, len(s.Nodes))}
	for _, n := range s.Nodes {
		index[n.ID] = n
		p := Placement{Node: n, Bounds: cardRect(n), Selected: n.ID == s.SelectedID()}
		if card, ok := c.cards[n.ID]; ok {
			p.Dragging = card.State() == Dragging
		}
		out.Cards = append(out.Cards, p)
	}

	for _, conn := range s.Connections {
		src, okSrc := index[conn.SourceID]
		dst, okDst := index[conn.TargetID]
		if !okSrc || !okDst {
			out.Skipped = append(out.Skipped, conn.ID)
			continue
		}
		out.Curves = append(out.Curves, newCurve(conn.ID, src, dst))
	}
	return out
}

// HitTest returns the top-most card under p and the region hit. Later
// nodes are drawn above earlier ones.
func (c *Canvas) HitTest(p flow.Position) (*NodeCard, Region) {
	for _, id := range slices.Backward(c.order) {
		card := c.cards[id]
		if r := card.RegionAt(p); r != RegionNone {
			return card, r
		}
	}
	return nil, RegionNone
}

// PointerDown routes a press to the card under the pointer. It reports
// the card that started dragging, if any.
func (c *Canvas) PointerDown(ev PointerEvent) *NodeCard {
	card, region := c.HitTest(ev.Position)
	if card == nil {
		return nil
	}
	if card.PointerDown(ev, region) {
		return card
	}
	return nil
}

// HandleDrop forwards a drop to the orchestrator.
func (c *Canvas) HandleDrop(ev DropEvent) {
	c.dispatch.Dispatch(Drop{Event: ev})
}

// HandleDragOver accepts a palette drag over the canvas. It always
// reports true so the drop is allowed.
func (c *Canvas) HandleDragOver(DropEvent) bool {
	return true
}
