package editor

import (
	"testing"

	"github.com/dshills/botflow/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasCurveBetweenStackedNodes(t *testing.T) {
	b := newTestBuilder()
	n1 := b.AddNode(flow.NodeHello, pos(100, 100))
	n2 := b.AddNode(flow.NodeWhatsApp, pos(100, 300))
	b.Connect(n1.ID, n2.ID)

	c := NewCanvas(NewPointerBus(), b)
	layout := c.Layout(b.State())

	require.Len(t, layout.Curves, 1)
	assert.Empty(t, layout.Skipped)
	curve := layout.Curves[0]
	assert.Equal(t, pos(250, 200), curve.Start)
	assert.Equal(t, pos(250, 300), curve.End)
	assert.Equal(t, pos(250, 250), curve.Control)
	assert.Equal(t, "M 250 200 Q 250 250 250 300", curve.Path())
}

func TestCanvasControlPointIsMidpoint(t *testing.T) {
	src := flow.NewNode("a", flow.NodeHello, pos(0, 0))
	dst := flow.NewNode("b", flow.NodeChatbot, pos(400, 300))

	curve := newCurve("c", src, dst)

	assert.Equal(t, pos(150, 100), curve.Start)
	assert.Equal(t, pos(550, 300), curve.End)
	assert.Equal(t, pos(350, 200), curve.Control)
	assert.Equal(t, curve.Start, curve.Point(0))
	assert.Equal(t, curve.End, curve.Point(1))
}

func TestCanvasSkipsDanglingConnections(t *testing.T) {
	s := State{
		Nodes: []flow.Node{flow.NewNode("a", flow.NodeHello, pos(0, 0))},
		Connections: []flow.Connection{
			{ID: "to-missing", SourceID: "a", TargetID: "ghost"},
			{ID: "from-missing", SourceID: "ghost", TargetID: "a"},
		},
	}

	layout := NewCanvas(NewPointerBus(), &recorder{}).Layout(s)

	assert.Empty(t, layout.Curves)
	assert.Equal(t, []string{"to-missing", "from-missing"}, layout.Skipped)
	assert.Len(t, layout.Cards, 1)
}

func TestCanvasMarksSelectedCard(t *testing.T) {
	b := newTestBuilder()
	b.AddNode(flow.NodeHello, pos(0, 0))
	second := b.AddNode(flow.NodeChatbot, pos(0, 200))

	layout := NewCanvas(NewPointerBus(), b).Layout(b.State())

	require.Len(t, layout.Cards, 2)
	assert.False(t, layout.Cards[0].Selected)
	assert.True(t, layout.Cards[1].Selected)
	assert.Equal(t, second.ID, layout.Cards[1].Node.ID)
	assert.Equal(t, Rect{X: 0, Y: 200, Width: CardWidth, Height: CardHeight}, layout.Cards[1].Bounds)
}

func TestCanvasHitTestPrefersTopMost(t *testing.T) {
	c := NewCanvas(NewPointerBus(), &recorder{})
	c.Sync([]flow.Node{
		flow.NewNode("below", flow.NodeHello, pos(0, 0)),
		flow.NewNode("above", flow.NodeChatbot, pos(50, 20)),
	})

	card, region := c.HitTest(pos(60, 30))
	require.NotNil(t, card)
	assert.Equal(t, "above", card.Node().ID)
	assert.Equal(t, RegionHeader, region)

	card, region = c.HitTest(pos(10, 10))
	require.NotNil(t, card)
	assert.Equal(t, "below", card.Node().ID)
	assert.Equal(t, RegionHeader, region)

	card, region = c.HitTest(pos(10, 90))
	require.NotNil(t, card)
	assert.Equal(t, "below", card.Node().ID)
	assert.Equal(t, RegionBody, region)

	card, region = c.HitTest(pos(1000, 1000))
	assert.Nil(t, card)
	assert.Equal(t, RegionNone, region)
}

func TestCanvasSyncUnmountsRemovedCards(t *testing.T) {
	bus := NewPointerBus()
	c := NewCanvas(bus, &recorder{})
	c.Sync([]flow.Node{flow.NewNode("a", flow.NodeHello, pos(0, 0))})

	card := c.PointerDown(PointerEvent{Position: pos(10, 10), Button: ButtonPrimary})
	require.NotNil(t, card)
	assert.Equal(t, 1, bus.Len())

	c.Sync(nil)

	assert.Equal(t, 0, bus.Len(), "unmounting a dragging card detaches its listeners")
	_, ok := c.Card("a")
	assert.False(t, ok)
}

func TestCanvasForwardsDrop(t *testing.T) {
	r := &recorder{}
	c := NewCanvas(NewPointerBus(), r)
	ev := DropEvent{ClientX: 5, ClientY: 6}

	assert.True(t, c.HandleDragOver(ev))
	c.HandleDrop(ev)

	assert.Equal(t, Drop{Event: ev}, r.last())
}
