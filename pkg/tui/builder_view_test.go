package tui

import (
	"context"
	"testing"

	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/editor"
	"github.com/dshills/botflow/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// welcomeGraph has a hello card at (100,100) and a WhatsApp card at
// (100,300). On a 120x40 screen at 100% the hello header covers rows 6-7
// and its body rows 8-10, columns 10-39; the WhatsApp card starts at
// row 16.
func welcomeGraph() flow.Graph {
	return flow.Graph{
		Nodes: []flow.Node{
			flow.NewNode("hello", flow.NodeHello, flow.Position{X: 100, Y: 100}),
			flow.NewNode("wa", flow.NodeWhatsApp, flow.Position{X: 100, Y: 300}),
		},
		Connections: []flow.Connection{{ID: "c1", SourceID: "hello", TargetID: "wa"}},
	}
}

type builderFixture struct {
	view   *BuilderView
	screen *MockScreen
	queue  taskQueue
	drafts *fakeDrafts
	backs  int
}

func newBuilderFixture(t *testing.T, g flow.Graph) *builderFixture {
	t.Helper()
	f := &builderFixture{
		screen: NewMockScreen(120, 40),
		queue:  newTaskQueue(),
		drafts: newFakeDrafts(),
	}
	ids := 0
	f.view = NewBuilderView(context.Background(), f.queue.post, func() { f.backs++ },
		WithDrafts(f.drafts),
		WithEditorOptions(
			editor.WithRandom(func() float64 { return 0.5 }),
			editor.WithIDs(idFunc(func() string { ids++; return "n" + string(rune('0'+ids)) })),
		),
	)
	f.view.Open("1", "Welcome flow", g)
	require.NoError(t, f.view.Init())
	f.render(t)
	return f
}

type idFunc func() string

func (f idFunc) NewID() string { return f() }

func (f *builderFixture) render(t *testing.T) {
	t.Helper()
	f.screen.Clear()
	require.NoError(t, f.view.Render(f.screen))
}

func (f *builderFixture) node(t *testing.T, id string) flow.Node {
	t.Helper()
	n, ok := f.view.Builder().Graph().Node(id)
	require.True(t, ok, "node %s", id)
	return n
}

func (f *builderFixture) mouse(t *testing.T, evs ...MouseEvent) {
	t.Helper()
	for _, ev := range evs {
		require.NoError(t, f.view.HandleMouse(ev))
	}
}

func (f *builderFixture) keys(t *testing.T, evs ...KeyEvent) {
	t.Helper()
	for _, ev := range evs {
		require.NoError(t, f.view.HandleKey(ev))
	}
}

func (f *builderFixture) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		f.keys(t, keyRune(r))
	}
}

func TestBuilderView_RendersCardsAndCurves(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	assert.Contains(t, f.screen.Line(0), "◀ Templates")
	assert.Contains(t, f.screen.Line(0), "Welcome flow")
	assert.Contains(t, f.screen.Line(0), "100%")

	assert.Contains(t, f.screen.Line(6), "Hello")
	assert.Equal(t, '┌', f.screen.Rune(10, 6))
	assert.Contains(t, f.screen.Line(16), "WhatsApp")

	// The curve ends at (250,300): column 25, row 16, arrow just above.
	assert.Equal(t, '▼', f.screen.Rune(25, 15))
	assert.Equal(t, '·', f.screen.Rune(25, 12))
}

func TestBuilderView_DanglingConnectionIsNotDrawn(t *testing.T) {
	g := welcomeGraph()
	g.Connections = []flow.Connection{{ID: "c1", SourceID: "hello", TargetID: "gone"}}
	f := newBuilderFixture(t, g)

	assert.NotContains(t, f.screen.Text(), "▼")
}

func TestBuilderView_DragHeaderMovesNode(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	// Press at (155,110) in canvas units: 55 right of and 10 below the
	// node origin.
	f.mouse(t, press(15, 6))
	assert.Equal(t, 1, f.view.bus.Len())

	f.mouse(t, motion(25, 8))
	assert.Equal(t, flow.Position{X: 200, Y: 140}, f.node(t, "hello").Position)

	f.mouse(t, release(25, 8))
	assert.Equal(t, 0, f.view.bus.Len())

	f.mouse(t, motion(40, 12))
	assert.Equal(t, flow.Position{X: 200, Y: 140}, f.node(t, "hello").Position, "moves after release are ignored")
}

func TestBuilderView_CleanupEndsDrag(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	f.mouse(t, press(15, 6))
	require.Equal(t, 1, f.view.bus.Len())

	require.NoError(t, f.view.Cleanup())
	assert.Equal(t, 0, f.view.bus.Len())
}

func TestBuilderView_ClickBodySelects(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	f.mouse(t, press(15, 8), release(15, 8))

	s := f.view.Builder().State()
	assert.Equal(t, "hello", s.SelectedID())
	assert.True(t, s.PanelOpen)
	assert.Equal(t, 0, f.view.bus.Len())

	f.render(t)
	assert.Contains(t, f.screen.Text(), "Properties")
	assert.Contains(t, f.screen.Text(), "Type: hello")
}

func TestBuilderView_EmptyCanvasDragPans(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	f.mouse(t, press(60, 30), motion(50, 28), release(50, 28))

	assert.Equal(t, 100.0, f.view.Viewport().OffsetX)
	assert.Equal(t, 40.0, f.view.Viewport().OffsetY)
}

func TestBuilderView_CardMenu(t *testing.T) {
	t.Run("delete removes node and its connections", func(t *testing.T) {
		f := newBuilderFixture(t, welcomeGraph())

		f.mouse(t, rightPress(15, 8))
		require.NotNil(t, f.view.menu)
		f.render(t)
		assert.Contains(t, f.screen.Line(11), "Delete")

		f.mouse(t, press(17, 11))
		g := f.view.Builder().Graph()
		_, ok := g.Node("hello")
		assert.False(t, ok)
		assert.Empty(t, g.Connections)
		assert.Empty(t, f.view.Builder().State().SelectedID())
	})

	t.Run("duplicate falls through to selection", func(t *testing.T) {
		f := newBuilderFixture(t, welcomeGraph())

		f.mouse(t, rightPress(15, 8), press(17, 9))
		assert.Len(t, f.view.Builder().Graph().Nodes, 2)
		assert.Equal(t, "hello", f.view.Builder().State().SelectedID())
	})

	t.Run("click outside closes", func(t *testing.T) {
		f := newBuilderFixture(t, welcomeGraph())

		f.mouse(t, rightPress(15, 8), press(100, 35))
		assert.Nil(t, f.view.menu)
		assert.Len(t, f.view.Builder().Graph().Nodes, 2)
	})
}

func TestBuilderView_Zoom(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	for range 10 {
		f.keys(t, keyRune('+'))
	}
	assert.Equal(t, editor.MaxZoom, f.view.Viewport().Zoom())

	for range 10 {
		f.mouse(t, MouseEvent{Action: MouseWheelDown})
	}
	assert.Equal(t, editor.MinZoom, f.view.Viewport().Zoom())

	f.render(t)
	assert.Contains(t, f.screen.Line(0), " 25%")

	f.keys(t, keyRune('0'))
	assert.Equal(t, 100, f.view.Viewport().Zoom())
}

func TestBuilderView_TopbarClicks(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	items := topbarItems(120)

	f.mouse(t, press(items[2].x, 0))
	assert.Equal(t, 125, f.view.Viewport().Zoom())

	f.mouse(t, press(items[1].x+1, 0))
	assert.Equal(t, 100, f.view.Viewport().Zoom())

	f.mouse(t, press(items[0].x, 0))
	assert.Equal(t, 1, f.backs)
}

func TestBuilderView_PaletteQuickAdd(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	f.keys(t, keyRune('a'))
	f.typeText(t, "video")
	f.render(t)
	assert.Contains(t, f.screen.Text(), "Video Call")

	f.keys(t, keySpecial("Enter"))

	s := f.view.Builder().State()
	require.Len(t, s.Nodes, 3)
	added := s.Nodes[2]
	assert.Equal(t, flow.NodeVideoCall, added.Type)
	assert.Equal(t, flow.Position{X: 400, Y: 300}, added.Position)
	assert.Equal(t, added.ID, s.SelectedID())
	assert.True(t, s.PanelOpen)
}

func TestBuilderView_PaletteDragDrop(t *testing.T) {
	f := newBuilderFixture(t, flow.Graph{})

	f.keys(t, keyRune('a'))
	r := f.view.paletteRect()
	f.mouse(t, press(r.X+2, r.Y+3))
	assert.Equal(t, focusCanvas, f.view.focus)

	// Cell (30,16) is canvas point (305,310); the card is centred on it.
	f.mouse(t, release(30, 16))

	s := f.view.Builder().State()
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, flow.NodeHello, s.Nodes[0].Type)
	assert.Equal(t, flow.Position{X: 205, Y: 260}, s.Nodes[0].Position)
}

func TestBuilderView_PaletteDragReleasedOffCanvas(t *testing.T) {
	f := newBuilderFixture(t, flow.Graph{})

	f.keys(t, keyRune('a'))
	r := f.view.paletteRect()
	f.mouse(t, press(r.X+2, r.Y+3))
	require.True(t, f.view.Builder().Dragging())

	f.mouse(t, release(5, 0))
	assert.False(t, f.view.Builder().Dragging())
	text, _ := f.view.Status().Text()
	assert.Empty(t, text)

	// A later drop has no payload to add.
	f.view.Builder().Dispatch(editor.Drop{Event: editor.DropEvent{ClientX: 300, ClientY: 300}})
	assert.Empty(t, f.view.Builder().State().Nodes)
}

func TestBuilderView_BotFlowsSidebar(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	assert.NotContains(t, f.screen.Text(), "Bot Flows", "the sidebar starts collapsed")

	f.keys(t, keyRune('f'))
	f.render(t)
	assert.Contains(t, f.screen.Line(1), "Bot Flows")
	assert.Contains(t, f.screen.Text(), "Loading…")

	f.view.SetFlows([]api.BotFlow{
		{ID: 11, BotFlowType: "greeting", IsInitial: 1, IsActive: 1, TotalBotDialogs: 3},
		{ID: 12, BotFlowType: "handoff"},
	}, nil)
	f.render(t)
	text := f.screen.Text()
	assert.Contains(t, text, "#11 greeting ▶")
	assert.Contains(t, text, "3 dialogs")
	assert.Contains(t, text, "#12 handoff")
	assert.Contains(t, text, "0 dialogs · inactive")

	// The canvas shifts right of the sidebar.
	x, _ := f.view.toCell(flow.Position{X: 100, Y: 100})
	assert.Equal(t, sidebarWidth+10, x)
	assert.Equal(t, '┌', f.screen.Rune(x, 6))

	items := topbarItems(120)
	f.mouse(t, press(items[len(items)-1].x, 0))
	f.render(t)
	assert.NotContains(t, f.screen.Text(), "Bot Flows")
	x, _ = f.view.toCell(flow.Position{X: 100, Y: 100})
	assert.Equal(t, 10, x)
}

func TestBuilderView_BotFlowsSidebarStates(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	f.view.ToggleFlows()

	f.view.SetFlows(nil, nil)
	f.render(t)
	assert.Contains(t, f.screen.Text(), "No bot flows")

	f.view.SetFlows(nil, &api.ResponseError{Code: 500, Message: "boom"})
	f.render(t)
	assert.Contains(t, f.screen.Text(), "Failed to load flows")

	f.view.Open("2", "Other", flow.Graph{})
	f.render(t)
	assert.Contains(t, f.screen.Text(), "Loading…", "opening another template forgets the old flows")
}

func TestBuilderView_Connect(t *testing.T) {
	g := welcomeGraph()
	g.Connections = nil
	f := newBuilderFixture(t, g)

	f.mouse(t, press(15, 8), release(15, 8))
	f.keys(t, keyRune('c'))
	f.mouse(t, press(15, 18), release(15, 18))

	conns := f.view.Builder().Graph().Connections
	require.Len(t, conns, 1)
	assert.Equal(t, "hello", conns[0].SourceID)
	assert.Equal(t, "wa", conns[0].TargetID)

	// Connecting the same pair again is ignored.
	f.keys(t, keyRune('c'))
	f.mouse(t, press(15, 18), release(15, 18))
	assert.Len(t, f.view.Builder().Graph().Connections, 1)
}

func TestBuilderView_DeleteSelectedKey(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	f.mouse(t, press(15, 18), release(15, 18))
	f.keys(t, keySpecial("Delete"))

	g := f.view.Builder().Graph()
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Connections)
}

func TestBuilderView_PanelEditsDispatchImmediately(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	f.mouse(t, press(15, 8), release(15, 8))

	f.keys(t, keySpecial("Tab"), keySpecial("Enter"), keyRune('!'))
	assert.Equal(t, "Hello!", f.node(t, "hello").Data.Title)

	f.keys(t, keySpecial("Backspace"), keySpecial("Backspace"))
	assert.Equal(t, "Hell", f.node(t, "hello").Data.Title)
	assert.Equal(t, "Hell", f.view.Builder().State().Selected.Data.Title)

	f.keys(t, keySpecial("Enter"))
	assert.False(t, f.view.form.editing)
}

func TestBuilderView_PanelButtons(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	f.mouse(t, press(15, 8), release(15, 8))
	f.keys(t, keySpecial("Tab"))

	// Title, Content, + Add button
	f.keys(t, keySpecial("Down"), keySpecial("Down"), keySpecial("Enter"))
	buttons := f.node(t, "hello").Data.Buttons
	require.Len(t, buttons, 1)
	assert.Equal(t, editor.DefaultButtonText, buttons[0].Text)
	assert.Equal(t, flow.ActionGoto, buttons[0].Action)
	assert.Empty(t, buttons[0].Target)

	// The cursor now sits on the new button's text; the next row is its
	// action.
	f.keys(t, keySpecial("Down"), keySpecial("Enter"))
	assert.Equal(t, flow.ActionURL, f.node(t, "hello").Data.Buttons[0].Action)

	f.render(t)
	assert.Contains(t, f.screen.Text(), "URL address")

	f.keys(t, keySpecial("Down"), keySpecial("Enter"))
	f.typeText(t, "https://x.io")
	f.keys(t, keySpecial("Enter"))
	assert.Equal(t, "https://x.io", f.node(t, "hello").Data.Buttons[0].Target)

	f.keys(t, keyRune('d'))
	assert.Empty(t, f.node(t, "hello").Data.Buttons)
}

func TestBuilderView_PanelQuickActionsAndDisconnect(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	f.mouse(t, press(15, 8), release(15, 8))
	f.keys(t, keySpecial("Tab"))

	// Title, Content, Add, then the quick actions.
	f.keys(t, keySpecial("Down"), keySpecial("Down"), keySpecial("Down"), keyRune(' '))
	assert.Equal(t, []string{"Go Back"}, f.node(t, "hello").Data.QuickActions)

	// Three quick actions, then the outgoing connection.
	f.keys(t, keySpecial("Down"), keySpecial("Down"), keySpecial("Down"), keyRune('d'))
	assert.Empty(t, f.view.Builder().Graph().Connections)
}

func TestBuilderView_PanelCloseRow(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	f.mouse(t, press(15, 8), release(15, 8))
	f.keys(t, keySpecial("Tab"))

	rows := f.view.panelRows()
	for range rows {
		f.keys(t, keySpecial("Down"))
	}
	f.keys(t, keySpecial("Enter"))

	s := f.view.Builder().State()
	assert.False(t, s.PanelOpen)
	assert.Equal(t, "hello", s.SelectedID())
	assert.Equal(t, focusCanvas, f.view.focus)
}

func TestBuilderView_SaveDraft(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())

	f.keys(t, KeyEvent{Key: 's', Ctrl: true})
	f.queue.drain(t, 1)

	d, ok := f.drafts.saved("1")
	require.True(t, ok)
	assert.Len(t, d.Graph.Nodes, 2)
	text, isErr := f.view.Status().Text()
	assert.False(t, isErr)
	assert.Contains(t, text, "Draft saved")
}

func TestBuilderView_BackKey(t *testing.T) {
	f := newBuilderFixture(t, welcomeGraph())
	f.keys(t, keyRune('b'))
	assert.Equal(t, 1, f.backs)
}
