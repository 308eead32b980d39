package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/botflow/internal/logging"
	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/editor"
	"github.com/dshills/botflow/pkg/flow"
	"github.com/dshills/botflow/pkg/storage"
)

// Canvas units covered by one terminal cell at 100% zoom. A 300x100 card
// is 30 cells wide and 5 rows tall.
const (
	cellWidth  = 10
	cellHeight = 20
)

const (
	panelWidth   = 44
	sidebarWidth = 28
	topbarRows   = 1
)

const builderHelp = "a add  c connect  del delete  tab panel  f flows  +/- zoom  arrows pan  ctrl+s save  b back"

// DraftStore keeps locally saved graphs.
type DraftStore interface {
	Save(ctx context.Context, templateID string, g flow.Graph) (storage.Draft, error)
	Load(ctx context.Context, templateID string) (storage.Draft, error)
}

type focus int

const (
	focusCanvas focus = iota
	focusPanel
	focusPalette
)

// BuilderView is the flow editor screen: topbar, canvas, properties panel
// and the add-node palette, all driven by one editor.Builder.
type BuilderView struct {
	ctx    context.Context
	post   Post
	drafts DraftStore
	logger *slog.Logger
	theme  Theme

	builder  *editor.Builder
	bus      *editor.PointerBus
	canvas   *editor.Canvas
	panel    *editor.Panel
	palette  *editor.Palette
	viewport *editor.Viewport
	state    editor.State
	unsub    func()

	templateID   string
	templateName string
	width        int
	height       int

	focus       focus
	form        panelForm
	connectFrom string

	panning  bool
	lastX    int
	lastY    int
	menu     *cardMenu
	dragType *flow.NodeType

	paletteQuery []rune

	// Bot flows of the open template, shown in the sidebar.
	flows       []api.BotFlow
	flowsErr    error
	flowsLoaded bool
	sidebarOpen bool

	status     Status
	editorOpts []editor.Option
}

// BuilderOption configures a BuilderView.
type BuilderOption func(*BuilderView)

// WithDrafts enables saving drafts.
func WithDrafts(d DraftStore) BuilderOption {
	return func(v *BuilderView) { v.drafts = d }
}

// WithBuilderLogger sets the logger passed down to the editor.
func WithBuilderLogger(l *slog.Logger) BuilderOption {
	return func(v *BuilderView) { v.logger = l }
}

// WithEditorOptions forwards options to the underlying editor.Builder.
func WithEditorOptions(opts ...editor.Option) BuilderOption {
	return func(v *BuilderView) { v.editorOpts = append(v.editorOpts, opts...) }
}

// NewBuilderView creates the editor screen. onBack runs when the user
// leaves for the template list.
func NewBuilderView(ctx context.Context, post Post, onBack func(), opts ...BuilderOption) *BuilderView {
	v := &BuilderView{
		ctx:      ctx,
		post:     post,
		logger:   logging.NewNop(),
		theme:    DefaultTheme(),
		bus:      editor.NewPointerBus(),
		palette:  editor.NewPalette(),
		viewport: editor.NewViewport(),
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(v)
	}

	eopts := append([]editor.Option{
		editor.WithLogger(v.logger),
		editor.WithBackToTemplates(onBack),
	}, v.editorOpts...)
	v.builder = editor.NewBuilder(eopts...)
	v.canvas = editor.NewCanvas(v.bus, v.builder)
	v.panel = editor.NewPanel(v.builder, nil)
	v.state = v.builder.State()
	return v
}

// Open loads a template's graph into the editor.
func (v *BuilderView) Open(templateID, name string, g flow.Graph) {
	v.templateID = templateID
	v.templateName = name
	v.viewport.Reset()
	v.focus = focusCanvas
	v.connectFrom = ""
	v.menu = nil
	v.flows, v.flowsErr, v.flowsLoaded = nil, nil, false
	v.status.Clear()
	v.builder.Dispatch(editor.Load{Graph: g})
	v.state = v.builder.State()
}

// Name implements View.
func (v *BuilderView) Name() string { return "builder" }

// Init subscribes to editor changes.
func (v *BuilderView) Init() error {
	v.unsub = v.builder.Subscribe(v.onChange)
	v.onChange(v.builder.State())
	return nil
}

// Cleanup unmounts every card, which ends any drag in progress.
func (v *BuilderView) Cleanup() error {
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
	v.canvas.Sync(nil)
	v.panning = false
	if v.dragType != nil {
		v.dragType = nil
		v.builder.Dispatch(editor.CancelPaletteDrag{})
	}
	return nil
}

func (v *BuilderView) onChange(s editor.State) {
	v.state = s
	if s.PanelOpen && s.Selected != nil {
		v.panel.Sync(*s.Selected)
	} else if v.focus == focusPanel {
		v.focus = focusCanvas
		v.form.stopEdit()
	}
}

// SetFlows fills the Bot Flows sidebar. A non-nil err is shown in place
// of the list.
func (v *BuilderView) SetFlows(flows []api.BotFlow, err error) {
	v.flows, v.flowsErr, v.flowsLoaded = flows, err, true
}

// ToggleFlows shows or hides the Bot Flows sidebar.
func (v *BuilderView) ToggleFlows() {
	v.sidebarOpen = !v.sidebarOpen
}

// Builder exposes the editor for callers that drive it directly.
func (v *BuilderView) Builder() *editor.Builder { return v.builder }

// Viewport returns the canvas viewport.
func (v *BuilderView) Viewport() *editor.Viewport { return v.viewport }

// Status returns the view's status line.
func (v *BuilderView) Status() *Status { return &v.status }

// Save writes the current graph as a draft for the open template.
func (v *BuilderView) Save() {
	if v.drafts == nil {
		v.status.Info("drafts are not configured")
		return
	}
	id, g := v.templateID, v.builder.Graph()
	go func() {
		d, err := v.drafts.Save(v.ctx, id, g)
		v.post(func() {
			if err != nil {
				logFailure(v.logger, "saving draft failed", err)
				v.status.Error(err)
				return
			}
			v.status.Info(fmt.Sprintf("Draft saved at %s", d.SavedAt.Local().Format("15:04:05")))
		})
	}()
}

// canvasRect is the terminal area the canvas occupies, between the
// sidebar and the properties panel.
func (v *BuilderView) canvasRect() Rect {
	x, w := 0, v.width
	if v.state.PanelOpen && w > panelWidth+20 {
		w -= panelWidth
	}
	if v.sidebarOpen && w > sidebarWidth+20 {
		x = sidebarWidth
		w -= sidebarWidth
	}
	return Rect{X: x, Y: topbarRows, Width: w, Height: max(v.height-topbarRows-1, 0)}
}

func (v *BuilderView) panelRect() Rect {
	c := v.canvasRect()
	return Rect{X: c.X + c.Width, Y: c.Y, Width: v.width - c.X - c.Width, Height: c.Height}
}

func (v *BuilderView) sidebarRect() Rect {
	c := v.canvasRect()
	return Rect{X: 0, Y: c.Y, Width: c.X, Height: c.Height}
}

// toCanvas converts a terminal cell to a canvas position, using the centre
// of the cell.
func (v *BuilderView) toCanvas(x, y int) flow.Position {
	r := v.canvasRect()
	local := flow.Position{
		X: float64((x-r.X)*cellWidth + cellWidth/2),
		Y: float64((y-r.Y)*cellHeight + cellHeight/2),
	}
	return v.viewport.ToCanvas(local)
}

// toCell converts a canvas position to a terminal cell.
func (v *BuilderView) toCell(p flow.Position) (int, int) {
	r := v.canvasRect()
	s := v.viewport.ToScreen(p)
	return r.X + floorDiv(s.X, cellWidth), r.Y + floorDiv(s.Y, cellHeight)
}

func floorDiv(v float64, d int) int {
	q := v / float64(d)
	if q < 0 && q != float64(int(q)) {
		return int(q) - 1
	}
	return int(q)
}

func (v *BuilderView) syncBounds() {
	r := v.canvasRect()
	v.builder.Dispatch(editor.SetCanvasBounds{Bounds: editor.Rect{
		X:      float64(r.X * cellWidth),
		Y:      float64(r.Y * cellHeight),
		Width:  float64(r.Width * cellWidth),
		Height: float64(r.Height * cellHeight),
	}})
}
