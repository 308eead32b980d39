package editor

import "github.com/dshills/botflow/pkg/flow"

// Card dimensions in canvas units. Connection anchors sit on the horizontal
// centre of the card's top and bottom edges.
const (
	CardWidth    = 300
	CardHeight   = 100
	HeaderHeight = 40
)

// Rect is an axis-aligned rectangle in canvas or screen units.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Origin returns the top-left corner.
func (r Rect) Origin() flow.Position {
	return flow.Position{X: r.X, Y: r.Y}
}

// Contains checks if p lies inside the rectangle.
func (r Rect) Contains(p flow.Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersects checks if two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// cardRect is the area a node occupies on the canvas.
func cardRect(n flow.Node) Rect {
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: CardWidth, Height: CardHeight}
}

// headerRect is the draggable band at the top of a card.
func headerRect(n flow.Node) Rect {
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: CardWidth, Height: HeaderHeight}
}

// outputAnchor is where outgoing connections leave a node.
func outputAnchor(n flow.Node) flow.Position {
	return n.Position.Add(flow.Position{X: CardWidth / 2, Y: CardHeight})
}

// inputAnchor is where incoming connections enter a node.
func inputAnchor(n flow.Node) flow.Position {
	return n.Position.Add(flow.Position{X: CardWidth / 2, Y: 0})
}
