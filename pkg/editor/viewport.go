package editor

import "github.com/dshills/botflow/pkg/flow"

// Zoom limits, in percent.
const (
	MinZoom  = 25
	MaxZoom  = 200
	ZoomStep = 25
)

// Viewport maps canvas coordinates to screen coordinates: a pan offset in
// canvas units followed by a zoom factor.
type Viewport struct {
	OffsetX float64
	OffsetY float64
	zoom    int
}

// NewViewport returns a viewport at 100% with no pan.
func NewViewport() *Viewport {
	return &Viewport{zoom: 100}
}

// Zoom returns the zoom level in percent.
func (v *Viewport) Zoom() int {
	if v.zoom == 0 {
		return 100
	}
	return v.zoom
}

// ZoomIn raises the zoom by one step, up to MaxZoom.
func (v *Viewport) ZoomIn() {
	v.zoom = min(v.Zoom()+ZoomStep, MaxZoom)
}

// ZoomOut lowers the zoom by one step, down to MinZoom.
func (v *Viewport) ZoomOut() {
	v.zoom = max(v.Zoom()-ZoomStep, MinZoom)
}

// Reset returns to 100% with no pan.
func (v *Viewport) Reset() {
	v.zoom = 100
	v.OffsetX, v.OffsetY = 0, 0
}

// Pan moves the viewport by the given canvas delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

func (v *Viewport) factor() float64 {
	return float64(v.Zoom()) / 100
}

// ToScreen converts a canvas position to screen units.
func (v *Viewport) ToScreen(p flow.Position) flow.Position {
	f := v.factor()
	return flow.Position{X: (p.X - v.OffsetX) * f, Y: (p.Y - v.OffsetY) * f}
}

// ToCanvas converts a screen position back to canvas units.
func (v *Viewport) ToCanvas(p flow.Position) flow.Position {
	f := v.factor()
	return flow.Position{X: p.X/f + v.OffsetX, Y: p.Y/f + v.OffsetY}
}
