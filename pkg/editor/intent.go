package editor

import "github.com/dshills/botflow/pkg/flow"

// Intent is a request to change the editor state. Child components never
// touch the node or connection lists; they hand intents to a Dispatcher
// and Builder applies them in one place.
type Intent interface {
	intent()
}

// Dispatcher accepts intents. Builder is the only implementation outside
// tests.
type Dispatcher interface {
	Dispatch(Intent)
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(Intent)

// Dispatch implements Dispatcher.
func (f DispatchFunc) Dispatch(i Intent) { f(i) }

// AddNode creates a node of Type at Position.
type AddNode struct {
	Type     flow.NodeType
	Position flow.Position
}

// UpdateNode merges Update into the node with ID.
type UpdateNode struct {
	ID     string
	Update flow.NodeUpdate
}

// DeleteNode removes the node with ID and its connections.
type DeleteNode struct {
	ID string
}

// SelectNode selects the node with ID and opens the properties panel.
type SelectNode struct {
	ID string
}

// ClosePanel hides the properties panel.
type ClosePanel struct{}

// Connect adds a connection from SourceID to TargetID.
type Connect struct {
	SourceID string
	TargetID string
}

// Disconnect removes the connection with ID.
type Disconnect struct {
	ID string
}

// QuickAdd adds a node of Type near the canvas centre.
type QuickAdd struct {
	Type flow.NodeType
}

// BeginPaletteDrag records the node type being dragged from the palette.
type BeginPaletteDrag struct {
	Type flow.NodeType
}

// Drop ends a palette drag over the canvas.
type Drop struct {
	Event DropEvent
}

// SetCanvasBounds records where the canvas sits on screen.
type SetCanvasBounds struct {
	Bounds Rect
}

// CancelPaletteDrag abandons a palette drag that ended off the canvas.
type CancelPaletteDrag struct{}

// Load replaces the whole graph.
type Load struct {
	Graph flow.Graph
}

func (AddNode) intent()           {}
func (UpdateNode) intent()        {}
func (DeleteNode) intent()        {}
func (SelectNode) intent()        {}
func (ClosePanel) intent()        {}
func (Connect) intent()           {}
func (Disconnect) intent()        {}
func (QuickAdd) intent()          {}
func (BeginPaletteDrag) intent()  {}
func (CancelPaletteDrag) intent() {}
func (Drop) intent()              {}
func (SetCanvasBounds) intent()   {}
func (Load) intent()              {}

// DropEvent is a pointer release over the canvas carrying a palette drag.
// ClientX and ClientY are screen coordinates.
type DropEvent struct {
	ClientX float64
	ClientY float64
}
